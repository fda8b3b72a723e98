package gallery

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html.tmpl"))

type tagButton struct {
	Name   string
	Active bool
}

type card struct {
	ID   string
	URL  string
	Tags []tagButton
}

type viewData struct {
	Filter FilterCategory
	Cards  []card
	Total  int
}

func (v *View) viewData() viewData {
	selected, _ := v.state.Selected()
	visible := v.state.Visible()
	cards := make([]card, 0, len(visible))
	for _, img := range visible {
		c := card{ID: img.ID, URL: img.URL, Tags: make([]tagButton, 0, len(img.Tags))}
		for _, t := range img.Tags {
			c.Tags = append(c.Tags, tagButton{Name: t, Active: t == selected})
		}
		cards = append(cards, c)
	}
	return viewData{Filter: v.FilterCategory(), Cards: cards, Total: v.state.Len()}
}

// Render writes the filter indicator and the masonry grid as an HTML fragment.
func (v *View) Render(w io.Writer) error {
	if err := templates.ExecuteTemplate(w, "gallery", v.viewData()); err != nil {
		return fmt.Errorf("gallery: render: %w", err)
	}
	return nil
}

// Render writes only the filter indicator.
func (f FilterCategory) Render(w io.Writer) error {
	if err := templates.ExecuteTemplate(w, "filter", f); err != nil {
		return fmt.Errorf("gallery: render filter: %w", err)
	}
	return nil
}
