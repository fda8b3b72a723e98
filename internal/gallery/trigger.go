package gallery

import "sync"

// BottomThreshold is the distance from the end of the content, in pixels,
// at which another page is loaded.
const BottomThreshold = 100

// Viewport is one scroll signal from the display surface.
type Viewport struct {
	InnerHeight   int `json:"inner_height"`
	ScrollY       int `json:"scroll_y"`
	ContentHeight int `json:"content_height"`
}

// NearBottom reports whether the visible bottom edge is within threshold
// pixels of the end of the content.
func NearBottom(v Viewport, threshold int) bool {
	return v.InnerHeight+v.ScrollY >= v.ContentHeight-threshold
}

// Surface is the display the gallery is mounted on.
type Surface interface {
	// OnScroll registers fn for every scroll signal. The returned cancel
	// function removes the registration.
	OnScroll(fn func(Viewport)) (cancel func())
	// ScrollToTop asks the display to move its viewport to the top.
	ScrollToTop(smooth bool)
}

// ScrollTrigger calls load whenever a scroll signal lands near the bottom.
// The subscription lives between Attach and Detach.
type ScrollTrigger struct {
	threshold int
	load      func()

	mu     sync.Mutex
	cancel func()
}

// NewScrollTrigger returns a detached trigger.
func NewScrollTrigger(threshold int, load func()) *ScrollTrigger {
	if threshold < 0 {
		threshold = BottomThreshold
	}
	return &ScrollTrigger{threshold: threshold, load: load}
}

// Attach subscribes to surface. Attaching an attached trigger is a no-op.
func (t *ScrollTrigger) Attach(surface Surface) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return
	}
	t.cancel = surface.OnScroll(t.handle)
}

// Detach releases the subscription. Safe to call more than once.
func (t *ScrollTrigger) Detach() {
	t.mu.Lock()
	cancel := t.cancel
	t.cancel = nil
	t.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Attached reports whether the trigger currently holds a subscription.
func (t *ScrollTrigger) Attached() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

func (t *ScrollTrigger) handle(v Viewport) {
	if NearBottom(v, t.threshold) {
		t.load()
	}
}
