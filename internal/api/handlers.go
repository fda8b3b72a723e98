package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/mosaic/internal/apperr"
	"github.com/starford/mosaic/internal/gallery"
	"github.com/starford/mosaic/internal/parser"
	"github.com/starford/mosaic/internal/session"
)

// Handler holds API route handlers.
type Handler struct {
	sessions *session.Manager
}

// NewHandler creates a new Handler.
func NewHandler(sessions *session.Manager) *Handler {
	return &Handler{sessions: sessions}
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, "get session", err)
		return nil, false
	}
	return s, true
}

// CreateSession handles POST /api/sessions.
//
//	@Summary		Mount a new gallery view with its initial batch
//	@Tags			sessions
//	@Produce		json
//	@Success		201	{object}	SessionResponse
//	@Failure		429	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions [post]
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Create()
	if err != nil {
		writeError(w, "create session", err)
		return
	}
	snap, err := s.Snapshot()
	if err != nil {
		writeError(w, "create session", err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

// DeleteSession handles DELETE /api/sessions/{sessionID}.
//
//	@Summary		Unmount a gallery view
//	@Tags			sessions
//	@Param			sessionID	path	string	true	"Session ID"
//	@Success		204	"Session closed"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{sessionID} [delete]
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(chi.URLParam(r, "sessionID")); err != nil {
		writeError(w, "delete session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListImages handles GET /api/sessions/{sessionID}/images.
//
//	@Summary		List visible images under the current filter
//	@Tags			images
//	@Produce		json
//	@Param			sessionID	path		string	true	"Session ID"
//	@Success		200			{object}	SessionResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{sessionID}/images [get]
func (h *Handler) ListImages(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	snap, err := s.Snapshot()
	if err != nil {
		writeError(w, "list images", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Scroll handles POST /api/sessions/{sessionID}/scroll.
//
//	@Summary		Report a scroll signal; loads a page near the bottom
//	@Tags			images
//	@Accept			json
//	@Produce		json
//	@Param			sessionID	path		string			true	"Session ID"
//	@Param			body		body		ScrollRequest	true	"Viewport geometry"
//	@Success		200			{object}	LoadResponse
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{sessionID}/scroll [post]
func (h *Handler) Scroll(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req ScrollRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	loaded, err := s.Scroll(gallery.Viewport{
		InnerHeight:   req.InnerHeight,
		ScrollY:       req.ScrollY,
		ContentHeight: req.ContentHeight,
	})
	if err != nil {
		writeError(w, "scroll", err)
		return
	}
	h.writeLoad(w, s, loaded)
}

// LoadMore handles POST /api/sessions/{sessionID}/more.
//
//	@Summary		Append one page of images
//	@Tags			images
//	@Produce		json
//	@Param			sessionID	path		string	true	"Session ID"
//	@Success		200			{object}	LoadResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{sessionID}/more [post]
func (h *Handler) LoadMore(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	loaded, err := s.LoadMore()
	if err != nil {
		writeError(w, "load more", err)
		return
	}
	h.writeLoad(w, s, loaded)
}

func (h *Handler) writeLoad(w http.ResponseWriter, s *session.Session, loaded int) {
	snap, err := s.Snapshot()
	if err != nil {
		writeError(w, "snapshot", err)
		return
	}
	writeJSON(w, http.StatusOK, LoadResponse{Loaded: loaded, Total: snap.Total})
}

// SelectTag handles PUT /api/sessions/{sessionID}/filter.
//
//	@Summary		Filter by tag and scroll the tab to the top
//	@Tags			filter
//	@Accept			json
//	@Produce		json
//	@Param			sessionID	path		string			true	"Session ID"
//	@Param			body		body		FilterRequest	true	"Tag to filter by"
//	@Success		200			{object}	SessionResponse
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{sessionID}/filter [put]
func (h *Handler) SelectTag(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req FilterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	req.Tag = parser.NormalizeTag(req.Tag)
	if err := req.Validate(); err != nil {
		writeError(w, "select tag", apperr.ErrInvalidTag)
		return
	}
	if err := s.SelectTag(req.Tag); err != nil {
		writeError(w, "select tag", err)
		return
	}
	h.writeSnapshot(w, s)
}

// ClearFilter handles DELETE /api/sessions/{sessionID}/filter.
//
//	@Summary		Remove the tag filter
//	@Tags			filter
//	@Produce		json
//	@Param			sessionID	path		string	true	"Session ID"
//	@Success		200			{object}	SessionResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{sessionID}/filter [delete]
func (h *Handler) ClearFilter(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.ClearFilter(); err != nil {
		writeError(w, "clear filter", err)
		return
	}
	h.writeSnapshot(w, s)
}

func (h *Handler) writeSnapshot(w http.ResponseWriter, s *session.Session) {
	snap, err := s.Snapshot()
	if err != nil {
		writeError(w, "snapshot", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// AddTag handles POST /api/sessions/{sessionID}/images/{imageID}/tags.
// Blank tags and unknown images are accepted as no-ops.
//
//	@Summary		Add a user-typed tag to an image
//	@Tags			images
//	@Accept			json
//	@Produce		json
//	@Param			sessionID	path		string			true	"Session ID"
//	@Param			imageID		path		string			true	"Image ID"
//	@Param			body		body		AddTagRequest	true	"Prompt answer"
//	@Success		200			{object}	models.Image
//	@Success		204			"Nothing to add"
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{sessionID}/images/{imageID}/tags [post]
func (h *Handler) AddTag(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req AddTagRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	imageID := chi.URLParam(r, "imageID")
	if _, err := s.AddTag(imageID, req.Tag); err != nil {
		writeError(w, "add tag", err)
		return
	}
	img, found, err := s.Image(imageID)
	if err != nil {
		writeError(w, "add tag", err)
		return
	}
	if !found {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, img)
}

// ListTags handles GET /api/sessions/{sessionID}/tags.
//
//	@Summary		Tag facet counts for a session
//	@Tags			filter
//	@Produce		json
//	@Param			sessionID	path		string	true	"Session ID"
//	@Success		200			{object}	TagListResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{sessionID}/tags [get]
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	counts, err := s.TagCounts()
	if err != nil {
		writeError(w, "list tags", err)
		return
	}
	writeJSON(w, http.StatusOK, TagListResponse{Tags: counts})
}

// TagImages handles GET /api/sessions/{sessionID}/tags/{tag}.
//
//	@Summary		Ids of the images carrying a tag, in load order
//	@Tags			filter
//	@Produce		json
//	@Param			sessionID	path		string	true	"Session ID"
//	@Param			tag			path		string	true	"Tag"
//	@Success		200			{object}	TagImagesResponse
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{sessionID}/tags/{tag} [get]
func (h *Handler) TagImages(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	tag := parser.NormalizeTag(chi.URLParam(r, "tag"))
	if tag == "" {
		writeError(w, "tag images", apperr.ErrInvalidTag)
		return
	}
	ids, err := s.TaggedImages(tag)
	if err != nil {
		writeError(w, "tag images", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, TagImagesResponse{Tag: tag, ImageIDs: ids})
}

// RenderView handles GET /api/sessions/{sessionID}/view.
//
//	@Summary		Rendered gallery fragment (filter indicator + masonry grid)
//	@Tags			view
//	@Produce		html
//	@Param			sessionID	path	string	true	"Session ID"
//	@Success		200			"HTML fragment"
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{sessionID}/view [get]
func (h *Handler) RenderView(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.Render(w); err != nil {
		writeError(w, "render view", err)
	}
}

// Events handles GET /api/sessions/{sessionID}/events.
//
//	@Summary		Server-Sent Events stream for one session
//	@Tags			view
//	@Produce		text/event-stream
//	@Param			sessionID	path	string	true	"Session ID"
//	@Success		200
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{sessionID}/events [get]
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Events().ServeHTTP(w, r)
}
