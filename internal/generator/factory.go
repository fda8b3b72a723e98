package generator

import (
	"strings"

	"github.com/google/uuid"

	"github.com/starford/mosaic/internal/models"
)

// Batch sizes used by the gallery.
const (
	InitialBatch = 12
	PageBatch    = 6
)

// DefaultBaseURL is the placeholder image service.
const DefaultBaseURL = "https://placehold.co"

// Factory builds batches of synthetic images.
type Factory struct {
	Source  Source
	Pool    Pool
	BaseURL string
	// NewID generates record identifiers. Defaults to random UUIDs.
	NewID func() string
}

// NewFactory returns a factory over pool using src, with default URL and IDs.
func NewFactory(src Source, pool Pool) *Factory {
	return &Factory{Source: src, Pool: pool, BaseURL: DefaultBaseURL, NewID: uuid.NewString}
}

// Batch constructs count new images. It has no side effects beyond consuming
// randomness; callers append the result to their own state.
func (f *Factory) Batch(count int) []models.Image {
	if count <= 0 {
		return []models.Image{}
	}
	newID := f.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	base := strings.TrimRight(f.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	var pool []string
	if f.Pool != nil {
		pool = f.Pool.Tags()
	}
	if len(pool) == 0 {
		pool = DefaultTagPool
	}

	out := make([]models.Image, 0, count)
	for i := 0; i < count; i++ {
		size := RandomSize(f.Source)
		out = append(out, models.Image{
			ID:   newID(),
			URL:  base + "/" + size.String(),
			Tags: models.NewTagSet(RandomTags(f.Source, pool)...),
		})
	}
	return out
}
