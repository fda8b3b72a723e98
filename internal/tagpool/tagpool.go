// Package tagpool provides a tag pool backed by a file on disk that is
// reloaded when the file changes.
package tagpool

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/mosaic/internal/checksum"
	"github.com/starford/mosaic/internal/generator"
	"github.com/starford/mosaic/internal/parser"
)

// ChangeCallback is called after a reload that changed the pool.
type ChangeCallback func(tags []string)

// File is a generator.Pool read from path. An empty or missing file keeps
// the default pool.
type File struct {
	path string

	mu   sync.RWMutex
	tags []string
	sum  string
}

var _ generator.Pool = (*File)(nil)

// Open loads the pool at path. An empty path yields the default pool and
// never reloads.
func Open(path string) (*File, error) {
	f := &File{path: path}
	f.set(generator.DefaultTagPool)
	if path == "" {
		return f, nil
	}
	if _, err := f.Reload(); err != nil {
		return nil, err
	}
	return f, nil
}

// Path returns the watched file path.
func (f *File) Path() string { return f.path }

// Tags returns a snapshot of the current pool.
func (f *File) Tags() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, len(f.tags))
	copy(out, f.tags)
	return out
}

// Checksum returns the fingerprint of the current pool.
func (f *File) Checksum() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.sum
}

func (f *File) set(tags []string) bool {
	sum := checksum.Tags(tags)
	f.mu.Lock()
	defer f.mu.Unlock()
	if sum == f.sum {
		return false
	}
	f.tags = append([]string(nil), tags...)
	f.sum = sum
	return true
}

// Reload re-reads the file. A missing or empty file restores the default
// pool. It reports whether the pool changed.
func (f *File) Reload() (bool, error) {
	if f.path == "" {
		return false, nil
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return f.set(generator.DefaultTagPool), nil
		}
		return false, fmt.Errorf("tagpool: read %s: %w", f.path, err)
	}
	tags, err := parser.ParsePool(data)
	if err != nil {
		return false, fmt.Errorf("tagpool: parse %s: %w", f.path, err)
	}
	if len(tags) == 0 {
		tags = generator.DefaultTagPool
	}
	return f.set(tags), nil
}

// Watch watches the pool file's directory until ctx is cancelled and reloads
// on any change to the file. Bursts of events are coalesced. Watching the
// directory rather than the file survives editors that replace files by
// rename.
func (f *File) Watch(ctx context.Context, logger *slog.Logger, cb ChangeCallback) error {
	if f.path == "" {
		<-ctx.Done()
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("tagpool: new watcher: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(f.path)
	if err != nil {
		return fmt.Errorf("tagpool: resolve path: %w", err)
	}
	dir := filepath.Dir(abs)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("tagpool: watch %s: %w", dir, err)
	}
	logger.Info("tagpool: watching", slog.String("path", abs))

	var debounce *time.Timer
	var debounceCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			logger.Info("tagpool: stopped")
			return nil

		case <-debounceCh:
			debounceCh = nil
			changed, err := f.Reload()
			if err != nil {
				logger.Warn("tagpool: reload failed", slog.String("error", err.Error()))
				continue
			}
			if !changed {
				continue
			}
			tags := f.Tags()
			logger.Info("tagpool: reloaded", slog.Int("tags", len(tags)))
			if cb != nil {
				cb(tags)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(100 * time.Millisecond)
			} else {
				debounce.Reset(100 * time.Millisecond)
			}
			debounceCh = debounce.C

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("tagpool: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}
