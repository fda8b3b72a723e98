package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/mosaic/internal/apperr"
	"github.com/starford/mosaic/internal/gallery"
	"github.com/starford/mosaic/internal/generator"
	"github.com/starford/mosaic/internal/index"
	"github.com/starford/mosaic/internal/sse"
)

// Config tunes the sessions a Manager creates.
type Config struct {
	// NewBatcher returns the image source for a new session. Each session
	// gets its own so randomness is never shared across sessions.
	NewBatcher func() gallery.Batcher
	Options    gallery.Options
	Threshold  int
	// Normalize cleans typed tags. Nil keeps the view's default.
	Normalize     func(string) string
	IdleTTL       time.Duration
	MaxSessions   int
	FacetThrottle time.Duration
}

// Manager owns the live sessions.
type Manager struct {
	cfg    Config
	index  index.TagIndex
	logger *slog.Logger
	now    func() time.Time
	newID  func() string

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session manager backed by idx.
func NewManager(idx index.TagIndex, logger *slog.Logger, cfg Config) *Manager {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 30 * time.Minute
	}
	if cfg.Threshold < 0 {
		cfg.Threshold = gallery.BottomThreshold
	}
	if cfg.NewBatcher == nil {
		cfg.NewBatcher = func() gallery.Batcher {
			return generator.NewFactory(generator.NewRandomSource(), generator.StaticPool(generator.DefaultTagPool))
		}
	}
	return &Manager{
		cfg:      cfg,
		index:    idx,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
		sessions: make(map[string]*Session),
	}
}

// Create mounts a new gallery view and returns its session.
func (m *Manager) Create() (*Session, error) {
	m.mu.RLock()
	full := m.cfg.MaxSessions > 0 && len(m.sessions) >= m.cfg.MaxSessions
	m.mu.RUnlock()
	if full {
		return nil, apperr.ErrSessionLimit
	}

	s := &Session{
		ID:       m.newID(),
		broker:   sse.NewBroker(m.cfg.FacetThrottle),
		index:    m.index,
		logger:   m.logger,
		lastSeen: m.now(),
	}
	s.surface = newSurface(s.broker)
	opts := []gallery.ViewOption{
		gallery.WithOptions(m.cfg.Options),
		gallery.WithThreshold(m.cfg.Threshold),
		gallery.WithListener(s.onChange),
	}
	if m.cfg.Normalize != nil {
		opts = append(opts, gallery.WithTagNormalizer(m.cfg.Normalize))
	}
	s.view = gallery.NewView(m.cfg.NewBatcher(), opts...)
	s.mount()

	m.mu.Lock()
	if m.cfg.MaxSessions > 0 && len(m.sessions) >= m.cfg.MaxSessions {
		m.mu.Unlock()
		s.unmount()
		return nil, apperr.ErrSessionLimit
	}
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Debug("session: mounted", slog.String("session", s.ID))
	return s, nil
}

// Get returns a live session and marks it as recently used.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, apperr.ErrNotFound
	}
	s.touch(m.now())
	return s, nil
}

// Close unmounts and forgets a session.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return apperr.ErrNotFound
	}
	s.unmount()
	m.logger.Debug("session: unmounted", slog.String("session", id))
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Reap unmounts sessions idle for longer than the TTL and returns how many
// were closed. A session with a connected event stream is still open in a
// tab and counts as used.
func (m *Manager) Reap() int {
	now := m.now()
	cutoff := now.Add(-m.cfg.IdleTTL)

	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if s.broker.ClientCount() > 0 {
			s.touch(now)
			continue
		}
		if s.idleSince().Before(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		s.unmount()
		m.logger.Info("session: reaped idle", slog.String("session", s.ID))
	}
	return len(idle)
}

// CloseAll unmounts every session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range all {
		s.unmount()
	}
}

// Run reaps idle sessions until ctx is cancelled, then closes the rest.
func (m *Manager) Run(ctx context.Context) error {
	interval := m.cfg.IdleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.CloseAll()
			return nil
		case <-ticker.C:
			if n := m.Reap(); n > 0 {
				m.logger.Debug("session: reap pass", slog.Int("closed", n), slog.Int("live", m.Len()))
			}
		}
	}
}
