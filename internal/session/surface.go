package session

import (
	"sync"

	"github.com/starford/mosaic/internal/gallery"
	"github.com/starford/mosaic/internal/sse"
)

// surface is the browser tab of one session as seen from the server.
// Scroll signals arrive through dispatch; scroll-to-top leaves over SSE.
type surface struct {
	broker *sse.Broker

	mu       sync.Mutex
	handlers map[uint64]func(gallery.Viewport)
	next     uint64
}

var _ gallery.Surface = (*surface)(nil)

func newSurface(broker *sse.Broker) *surface {
	return &surface{broker: broker, handlers: make(map[uint64]func(gallery.Viewport))}
}

func (s *surface) OnScroll(fn func(gallery.Viewport)) func() {
	s.mu.Lock()
	id := s.next
	s.next++
	s.handlers[id] = fn
	s.mu.Unlock()

	return sync.OnceFunc(func() {
		s.mu.Lock()
		delete(s.handlers, id)
		s.mu.Unlock()
	})
}

func (s *surface) ScrollToTop(smooth bool) {
	s.broker.Publish(sse.Event{Type: sse.TypeScrollTop, Data: map[string]bool{"smooth": smooth}})
}

// dispatch delivers one scroll signal to every registered handler.
func (s *surface) dispatch(v gallery.Viewport) {
	s.mu.Lock()
	fns := make([]func(gallery.Viewport), 0, len(s.handlers))
	for _, fn := range s.handlers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

func (s *surface) listeners() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handlers)
}
