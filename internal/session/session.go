// Package session maps browser tabs to mounted gallery views. Creating a
// session mounts a view; closing it (or idling past the TTL) unmounts it.
package session

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/mosaic/internal/apperr"
	"github.com/starford/mosaic/internal/gallery"
	"github.com/starford/mosaic/internal/index"
	"github.com/starford/mosaic/internal/models"
	"github.com/starford/mosaic/internal/sse"
)

// Snapshot is the visible state of a session.
type Snapshot struct {
	ID          string         `json:"id"`
	Images      []models.Image `json:"images"`
	Total       int            `json:"total"`
	SelectedTag string         `json:"selected_tag,omitempty"`
	Mode        string         `json:"mode"`
}

// Session is one mounted gallery view. All of its events are serialized by
// mu, which stands in for the browser's event loop.
type Session struct {
	ID string

	mu       sync.Mutex
	view     *gallery.View
	surface  *surface
	broker   *sse.Broker
	index    index.TagIndex
	logger   *slog.Logger
	lastSeen time.Time
	closed   bool
}

func (s *Session) onChange(c gallery.Change) {
	switch c.Kind {
	case gallery.ChangeAppended:
		if err := s.index.RecordImages(s.ID, c.Images); err != nil {
			s.logger.Warn("session: index images failed", slog.String("session", s.ID), slog.String("error", err.Error()))
		}
		s.broker.PublishChange(string(c.Kind), map[string]any{"images": c.Images, "count": len(c.Images)})
	case gallery.ChangeTagged:
		if err := s.index.AddTag(s.ID, c.ImageID, c.Tag); err != nil {
			s.logger.Warn("session: index tag failed", slog.String("session", s.ID), slog.String("error", err.Error()))
		}
		s.broker.PublishChange(string(c.Kind), map[string]string{"image_id": c.ImageID, "tag": c.Tag})
	case gallery.ChangeFiltered:
		s.broker.PublishChange(string(c.Kind), map[string]string{"tag": c.Tag})
	}
}

func (s *Session) mount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Mount(s.surface)
}

// unmount detaches the view, closes the event stream and drops index rows.
func (s *Session) unmount() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.view.Unmount()
	s.mu.Unlock()

	s.broker.Close()
	if err := s.index.DropSession(s.ID); err != nil {
		s.logger.Warn("session: drop index failed", slog.String("session", s.ID), slog.String("error", err.Error()))
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) snapshotLocked() Snapshot {
	st := s.view.State()
	tag, _ := st.Selected()
	return Snapshot{
		ID:          s.ID,
		Images:      st.Visible(),
		Total:       st.Len(),
		SelectedTag: tag,
		Mode:        st.Mode().String(),
	}
}

// do runs fn with the session locked, failing if the session is closed.
func (s *Session) do(fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return apperr.ErrNotFound
	}
	fn()
	return nil
}

// Snapshot returns the visible images and filter state.
func (s *Session) Snapshot() (Snapshot, error) {
	var snap Snapshot
	err := s.do(func() { snap = s.snapshotLocked() })
	return snap, err
}

// Scroll delivers a scroll signal and reports how many images it loaded.
func (s *Session) Scroll(v gallery.Viewport) (int, error) {
	var loaded int
	err := s.do(func() {
		before := s.view.State().Len()
		s.surface.dispatch(v)
		loaded = s.view.State().Len() - before
	})
	return loaded, err
}

// LoadMore appends one page regardless of scroll position.
func (s *Session) LoadMore() (int, error) {
	var loaded int
	err := s.do(func() { loaded = s.view.LoadMore() })
	return loaded, err
}

// SelectTag applies a tag filter and scrolls the tab to the top.
func (s *Session) SelectTag(tag string) error {
	return s.do(func() { s.view.ClickTag(tag) })
}

// ClearFilter removes the tag filter.
func (s *Session) ClearFilter() error {
	return s.do(func() { s.view.ClearFilter() })
}

// AddTag adds the answer of the tab's tag prompt to an image. Empty answers
// and unknown images are no-ops.
func (s *Session) AddTag(imageID, tag string) (bool, error) {
	var added bool
	err := s.do(func() { added = s.view.AddTag(imageID, tag) })
	return added, err
}

// Image returns one image by id.
func (s *Session) Image(imageID string) (models.Image, bool, error) {
	var (
		img models.Image
		ok  bool
	)
	err := s.do(func() { img, ok = s.view.State().Image(imageID) })
	return img, ok, err
}

// Render writes the gallery fragment.
func (s *Session) Render(w io.Writer) error {
	var renderErr error
	if err := s.do(func() { renderErr = s.view.Render(w) }); err != nil {
		return err
	}
	return renderErr
}

// TagCounts returns the facet counts for this session.
func (s *Session) TagCounts() ([]index.TagCount, error) {
	if err := s.do(func() {}); err != nil {
		return nil, err
	}
	return s.index.TagCounts(s.ID)
}

// TaggedImages returns the ids of the session's images carrying tag, in
// load order, from the tag index.
func (s *Session) TaggedImages(tag string) ([]string, error) {
	if err := s.do(func() {}); err != nil {
		return nil, err
	}
	return s.index.ImagesWithTag(s.ID, tag)
}

// Events returns the session's SSE broker.
func (s *Session) Events() *sse.Broker { return s.broker }
