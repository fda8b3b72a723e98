// Package web serves the gallery page: the browser surface that mounts a
// session, reports scroll signals and follows server-pushed commands.
package web

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/starford/mosaic/internal/gallery"
)

//go:embed templates/page.html.tmpl
var pageFS embed.FS

var pageTmpl = template.Must(template.ParseFS(pageFS, "templates/page.html.tmpl"))

type pageData struct {
	Title     string
	APIBase   string
	Threshold int
	Prompt    string
}

// Handler renders the gallery page.
type Handler struct {
	title     string
	apiBase   string
	threshold int
}

// NewHandler returns a page handler whose script talks to apiBase.
// threshold is the bottom distance in pixels at which the page reports
// scroll positions; a negative value uses gallery.BottomThreshold.
func NewHandler(title, apiBase string, threshold int) *Handler {
	if title == "" {
		title = "Mosaic"
	}
	if threshold < 0 {
		threshold = gallery.BottomThreshold
	}
	return &Handler{title: title, apiBase: apiBase, threshold: threshold}
}

// ServeHTTP handles GET /.
func (h *Handler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	err := pageTmpl.Execute(w, pageData{
		Title:     h.title,
		APIBase:   h.apiBase,
		Threshold: h.threshold,
		Prompt:    gallery.AddTagPrompt,
	})
	if err != nil {
		slog.Error("render page failed", slog.String("error", err.Error()))
	}
}
