// Package gallery holds the gallery view controller: the append-only image
// sequence with its tag filter, the scroll-driven load trigger and the
// masonry rendering.
package gallery

import (
	"github.com/starford/mosaic/internal/generator"
	"github.com/starford/mosaic/internal/models"
)

// Batcher produces new images. *generator.Factory satisfies it.
type Batcher interface {
	Batch(count int) []models.Image
}

// Mode is the filter state of a gallery.
type Mode int

const (
	Unfiltered Mode = iota
	Filtered
)

func (m Mode) String() string {
	if m == Filtered {
		return "filtered"
	}
	return "unfiltered"
}

// Options tunes batch sizes and the optional growth cap.
type Options struct {
	InitialBatch int
	PageBatch    int
	// MaxImages caps the total number of images. Zero means unbounded.
	MaxImages int
}

// DefaultOptions mirrors the observed gallery: 12 on mount, 6 per page.
func DefaultOptions() Options {
	return Options{InitialBatch: generator.InitialBatch, PageBatch: generator.PageBatch}
}

func (o Options) withDefaults() Options {
	if o.InitialBatch <= 0 {
		o.InitialBatch = generator.InitialBatch
	}
	if o.PageBatch <= 0 {
		o.PageBatch = generator.PageBatch
	}
	if o.MaxImages < 0 {
		o.MaxImages = 0
	}
	return o
}

// State is the gallery's single owned mutable record. It is not safe for
// concurrent use; callers serialize access.
type State struct {
	batcher Batcher
	opts    Options

	images      []models.Image
	byID        map[string]int
	selected    string
	filtered    bool
	initialized bool
}

// NewState creates an empty, uninitialized state.
func NewState(b Batcher, opts Options) *State {
	return &State{
		batcher: b,
		opts:    opts.withDefaults(),
		byID:    make(map[string]int),
	}
}

// Initialize loads the initial batch. Later calls are no-ops.
func (s *State) Initialize() []models.Image {
	if s.initialized {
		return nil
	}
	s.initialized = true
	return s.appendBatch(s.opts.InitialBatch)
}

// LoadMore appends one page of images and returns the new records.
func (s *State) LoadMore() []models.Image {
	return s.appendBatch(s.opts.PageBatch)
}

func (s *State) appendBatch(n int) []models.Image {
	if s.opts.MaxImages > 0 {
		if room := s.opts.MaxImages - len(s.images); room < n {
			n = room
		}
	}
	if n <= 0 {
		return nil
	}
	batch := s.batcher.Batch(n)
	added := make([]models.Image, 0, len(batch))
	for _, img := range batch {
		if _, dup := s.byID[img.ID]; dup {
			continue
		}
		s.byID[img.ID] = len(s.images)
		s.images = append(s.images, img)
		added = append(added, img.Clone())
	}
	return added
}

// SelectTag switches to Filtered(tag). Empty tags are ignored.
// It reports whether the filter changed.
func (s *State) SelectTag(tag string) bool {
	if tag == "" {
		return false
	}
	if s.filtered && s.selected == tag {
		return false
	}
	s.selected = tag
	s.filtered = true
	return true
}

// ClearFilter returns to Unfiltered. Clearing an unfiltered state is a no-op.
func (s *State) ClearFilter() bool {
	if !s.filtered {
		return false
	}
	s.selected = ""
	s.filtered = false
	return true
}

// AddTagTo inserts tag into the image's tag set. Unknown ids, empty tags and
// duplicates are silent no-ops. It reports whether the set changed.
func (s *State) AddTagTo(id, tag string) bool {
	i, ok := s.byID[id]
	if !ok {
		return false
	}
	return s.images[i].Tags.Add(tag)
}

// Images returns every image in append order.
func (s *State) Images() []models.Image {
	out := make([]models.Image, len(s.images))
	for i, img := range s.images {
		out[i] = img.Clone()
	}
	return out
}

// Visible returns the images that pass the current filter, in append order.
func (s *State) Visible() []models.Image {
	if !s.filtered {
		return s.Images()
	}
	out := make([]models.Image, 0, len(s.images))
	for _, img := range s.images {
		if img.Tags.Has(s.selected) {
			out = append(out, img.Clone())
		}
	}
	return out
}

// Image returns the image with the given id.
func (s *State) Image(id string) (models.Image, bool) {
	i, ok := s.byID[id]
	if !ok {
		return models.Image{}, false
	}
	return s.images[i].Clone(), true
}

// Selected returns the active filter tag, if any.
func (s *State) Selected() (string, bool) {
	return s.selected, s.filtered
}

// Mode reports the filter state.
func (s *State) Mode() Mode {
	if s.filtered {
		return Filtered
	}
	return Unfiltered
}

// Len returns the total number of images, filtered or not.
func (s *State) Len() int {
	return len(s.images)
}
