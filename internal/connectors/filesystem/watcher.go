package filesystem

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jaytoday/khoj/internal/logger"
)

// DefaultDebounce coalesces bursts of filesystem events, e.g. editors
// writing swap files alongside the real save.
const DefaultDebounce = 500 * time.Millisecond

// Watcher observes note directories and invokes a callback when org
// files change.
type Watcher struct {
	fsw      *fsnotify.Watcher
	onChange func()
	debounce time.Duration
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the event coalescing window.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewWatcher creates a watcher that invokes onChange after org files
// under the watched directories change.
func NewWatcher(onChange func(), opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:      fsw,
		onChange: onChange,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Add registers directories to watch.
func (w *Watcher) Add(dirs ...string) error {
	for _, dir := range dirs {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
		logger.Debug("watching %s", dir)
	}
	return nil
}

// Run processes filesystem events until ctx is cancelled. Changes to
// org files are coalesced within the debounce window before onChange
// fires once per burst.
func (w *Watcher) Run(ctx context.Context) error {
	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			logger.Debug("change detected: %s %s", event.Op, event.Name)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				pending = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)

		case <-pending:
			timer = nil
			pending = nil
			w.onChange()
		}
	}
}

// Close stops the watcher and releases its resources.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// relevant reports whether an event concerns an org file in a way that
// should trigger re-indexing.
func relevant(event fsnotify.Event) bool {
	if !strings.EqualFold(filepath.Ext(event.Name), ".org") {
		return false
	}
	return event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Write) ||
		event.Op.Has(fsnotify.Rename) ||
		event.Op.Has(fsnotify.Remove)
}
