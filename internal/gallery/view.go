package gallery

import (
	"strings"

	"github.com/starford/mosaic/internal/models"
)

// AddTagPrompt is the question shown by the "+" affordance.
const AddTagPrompt = "Create new tag:"

// Prompter asks the user for free text. ok is false when the user cancels.
type Prompter interface {
	Prompt(message string) (answer string, ok bool)
}

// PromptFunc adapts a function to Prompter.
type PromptFunc func(message string) (string, bool)

// Prompt calls f.
func (f PromptFunc) Prompt(message string) (string, bool) { return f(message) }

// ChangeKind names a state change observed by a Listener.
type ChangeKind string

const (
	ChangeAppended ChangeKind = "gallery.appended"
	ChangeFiltered ChangeKind = "gallery.filtered"
	ChangeTagged   ChangeKind = "image.tagged"
)

// Change describes one state mutation.
type Change struct {
	Kind ChangeKind
	// Images holds the appended records for ChangeAppended.
	Images []models.Image
	// Tag is the new filter (empty when cleared) or the added tag.
	Tag     string
	ImageID string
}

// Listener observes state changes made through a View.
type Listener func(Change)

// ViewOption configures a View.
type ViewOption func(*View)

// WithOptions sets batch sizes and the growth cap.
func WithOptions(opts Options) ViewOption {
	return func(v *View) { v.opts = opts }
}

// WithThreshold sets the near-bottom distance used by the scroll trigger.
func WithThreshold(px int) ViewOption {
	return func(v *View) { v.threshold = px }
}

// WithListener registers a change observer.
func WithListener(l Listener) ViewOption {
	return func(v *View) { v.listener = l }
}

// WithTagNormalizer replaces the default whitespace trim applied to typed
// tags before they are added.
func WithTagNormalizer(fn func(string) string) ViewOption {
	return func(v *View) { v.normalize = fn }
}

// View is the gallery controller bound to one display surface. A View is
// confined to a single event loop; it does no locking of its own.
type View struct {
	batcher   Batcher
	opts      Options
	threshold int
	listener  Listener
	normalize func(string) string

	state   *State
	surface Surface
	trigger *ScrollTrigger
}

// NewView creates an unmounted view.
func NewView(b Batcher, opts ...ViewOption) *View {
	v := &View{
		batcher:   b,
		opts:      DefaultOptions(),
		threshold: BottomThreshold,
		normalize: strings.TrimSpace,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.state = NewState(b, v.opts)
	return v
}

// Mount binds the view to surface, loads the initial batch and starts
// listening for scroll signals. Mounting a mounted view is a no-op.
func (v *View) Mount(surface Surface) {
	if v.surface != nil {
		return
	}
	if v.state.initialized {
		// Remount: nothing survives the previous mount.
		v.state = NewState(v.batcher, v.opts)
	}
	v.surface = surface
	v.emitAppended(v.state.Initialize())
	v.trigger = NewScrollTrigger(v.threshold, func() { v.LoadMore() })
	v.trigger.Attach(surface)
}

// Unmount stops listening for scroll signals and releases the surface.
func (v *View) Unmount() {
	if v.surface == nil {
		return
	}
	v.trigger.Detach()
	v.trigger = nil
	v.surface = nil
}

// Mounted reports whether the view is attached to a surface.
func (v *View) Mounted() bool { return v.surface != nil }

// State exposes the owned state for reads.
func (v *View) State() *State { return v.state }

// LoadMore appends one page and returns how many images were added.
func (v *View) LoadMore() int {
	added := v.state.LoadMore()
	v.emitAppended(added)
	return len(added)
}

// ClickTag filters by tag and scrolls the surface to the top.
func (v *View) ClickTag(tag string) {
	if v.state.SelectTag(tag) {
		v.emit(Change{Kind: ChangeFiltered, Tag: tag})
	}
	if v.surface != nil && tag != "" {
		v.surface.ScrollToTop(true)
	}
}

// ClearFilter drops the active filter.
func (v *View) ClearFilter() {
	if v.state.ClearFilter() {
		v.emit(Change{Kind: ChangeFiltered})
	}
}

// ClickAddTag prompts for a tag and adds it to the image with the given id.
// A cancelled or empty answer does nothing.
func (v *View) ClickAddTag(id string, p Prompter) bool {
	answer, ok := p.Prompt(AddTagPrompt)
	if !ok {
		return false
	}
	return v.AddTag(id, answer)
}

// AddTag normalizes tag and adds it to the image. It reports whether the
// image's tag set changed.
func (v *View) AddTag(id, tag string) bool {
	tag = v.normalize(tag)
	if tag == "" {
		return false
	}
	if !v.state.AddTagTo(id, tag) {
		return false
	}
	v.emit(Change{Kind: ChangeTagged, ImageID: id, Tag: tag})
	return true
}

// FilterCategory returns the filter indicator bound to this view.
func (v *View) FilterCategory() FilterCategory {
	tag, _ := v.state.Selected()
	fc := FilterCategory{SelectedTag: tag, Clear: v.ClearFilter}
	if tag != "" {
		fc.Matches = len(v.state.Visible())
	}
	return fc
}

func (v *View) emitAppended(added []models.Image) {
	if len(added) == 0 {
		return
	}
	v.emit(Change{Kind: ChangeAppended, Images: added})
}

func (v *View) emit(c Change) {
	if v.listener != nil {
		v.listener(c)
	}
}
