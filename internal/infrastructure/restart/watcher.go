// Package restart watches the restart marker file and tells the server to
// restart when it is touched.
package restart

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher calls onRestart after the marker file is created, written or
// touched. Bursts of events within the debounce window fire once.
type Watcher struct {
	watcher   *fsnotify.Watcher
	marker    string
	onRestart func()
	debounce  time.Duration
	logger    *zap.Logger

	mu    sync.Mutex
	timer *time.Timer
}

// Option configures a Watcher
type Option func(*Watcher)

// WithDebounce sets how long the watcher waits for the marker to settle
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWatcher watches the directory holding marker, creating it if needed
func NewWatcher(marker string, onRestart func(), opts ...Option) (*Watcher, error) {
	marker, err := filepath.Abs(marker)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve restart marker: %w", err)
	}
	dir := filepath.Dir(marker)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &Watcher{
		watcher:   fw,
		marker:    marker,
		onRestart: onRestart,
		debounce:  defaultDebounce,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run handles events until ctx is done or the watcher is closed
func (w *Watcher) Run(ctx context.Context) {
	w.logger.Info("Watching restart marker", zap.String("marker", w.marker))
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.marker {
				continue
			}
			// touching an existing marker only changes its attributes
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Chmod) {
				continue
			}
			w.schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Restart marker watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.logger.Info("Restart marker touched", zap.String("marker", w.marker))
		w.onRestart()
	})
}

// Close stops watching. A pending restart is cancelled.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}
