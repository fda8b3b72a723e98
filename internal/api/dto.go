package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/mosaic/internal/index"
	"github.com/starford/mosaic/internal/session"
)

// SessionResponse is the visible state of a gallery session.
type SessionResponse = session.Snapshot

// ScrollRequest is one scroll signal reported by the browser.
type ScrollRequest struct {
	InnerHeight   int `json:"inner_height" example:"900"`
	ScrollY       int `json:"scroll_y" example:"2400"`
	ContentHeight int `json:"content_height" example:"3350"`
}

// Validate checks the viewport geometry.
func (r ScrollRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.InnerHeight, validation.Min(0)),
		validation.Field(&r.ScrollY, validation.Min(0)),
		validation.Field(&r.ContentHeight, validation.Min(0)),
	)
}

// LoadResponse reports the outcome of a scroll or explicit page load.
type LoadResponse struct {
	Loaded int `json:"loaded" example:"6"`
	Total  int `json:"total" example:"18"`
}

// FilterRequest selects a tag filter.
type FilterRequest struct {
	Tag string `json:"tag" example:"AI" validate:"required"`
}

// Validate requires a tag.
func (r FilterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Tag, validation.Required),
	)
}

// AddTagRequest carries the answer to the "+" prompt.
type AddTagRequest struct {
	Tag string `json:"tag" example:"Special"`
}

// TagImagesResponse lists the images carrying one tag.
type TagImagesResponse struct {
	Tag      string   `json:"tag"`
	ImageIDs []string `json:"image_ids"`
}

// TagListResponse wraps the facet counts of a session.
type TagListResponse struct {
	Tags []index.TagCount `json:"tags"`
}
