// Package watch feeds newly written files in a directory to a handler.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long a file must stay unchanged before it is handled.
const DefaultSettle = 500 * time.Millisecond

// Handler processes one settled file.
type Handler func(ctx context.Context, path string) error

// Option configures a Watcher.
type Option func(*Watcher)

// WithSettle sets the quiet period a file needs before it is handled.
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// Watcher monitors a directory and hands each created or rewritten file
// that match accepts to the handler, one file at a time.
type Watcher struct {
	dir     string
	match   func(name string) bool
	handler Handler
	settle  time.Duration
	watcher *fsnotify.Watcher
	logger  *slog.Logger
}

// New starts watching dir. Stop must be called to release the watch.
func New(dir string, match func(name string) bool, handler Handler, opts ...Option) (*Watcher, error) {
	if handler == nil {
		return nil, errors.New("watch: handler is required")
	}
	if match == nil {
		match = func(string) bool { return true }
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	w := &Watcher{
		dir:     dir,
		match:   match,
		handler: handler,
		settle:  DefaultSettle,
		watcher: fw,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With("component", "watch", "dir", dir)
	return w, nil
}

// Start blocks, handling settled files until ctx is done, and then returns
// ctx.Err(). Files still settling at that point are dropped.
func (w *Watcher) Start(ctx context.Context) error {
	w.logger.Info("watching for new files")

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.settle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopped", "pending", len(pending))
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !w.match(filepath.Base(event.Name)) {
				w.logger.Debug("ignoring file", "file", event.Name)
				continue
			}
			pending[event.Name] = time.Now()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("watcher error", "error", err)

		case now := <-ticker.C:
			for _, path := range settled(pending, now, w.settle) {
				delete(pending, path)
				w.logger.Info("new file detected", "file", path)
				if err := w.handler(ctx, path); err != nil {
					w.logger.Error("failed to process file", "file", path, "error", err)
				}
				if ctx.Err() != nil {
					break
				}
			}
		}
	}
}

// Stop closes the file watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// settled returns the pending paths last touched at least settle ago, sorted.
func settled(pending map[string]time.Time, now time.Time, settle time.Duration) []string {
	var ready []string
	for path, touched := range pending {
		if now.Sub(touched) >= settle {
			ready = append(ready, path)
		}
	}
	slices.Sort(ready)
	return ready
}
