package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/mosaic/internal/session"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(sessions *session.Manager, authEnabled bool, token string) chi.Router {
	h := NewHandler(sessions)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Post("/sessions", h.CreateSession)
	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Delete("/", h.DeleteSession)

		r.Get("/images", h.ListImages)
		r.Post("/images/{imageID}/tags", h.AddTag)
		r.Post("/scroll", h.Scroll)
		r.Post("/more", h.LoadMore)

		r.Put("/filter", h.SelectTag)
		r.Delete("/filter", h.ClearFilter)
		r.Get("/tags", h.ListTags)
		r.Get("/tags/{tag}", h.TagImages)

		r.Get("/view", h.RenderView)
		r.Get("/events", h.Events)
	})

	return r
}
