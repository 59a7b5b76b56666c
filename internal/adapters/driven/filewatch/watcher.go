// Package filewatch reports changes to a single file, such as the vector
// index being replaced by a fresh ingest run.
package filewatch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/wikichat/internal/logger"
)

// DefaultDebounce coalesces bursts of events from one save.
const DefaultDebounce = 250 * time.Millisecond

// ChangeType describes what happened to the watched file.
type ChangeType string

// Change types.
const (
	ChangeWritten ChangeType = "written"
	ChangeRemoved ChangeType = "removed"
)

// Change is a debounced notification about the watched file.
type Change struct {
	Path string
	Type ChangeType
}

// Watcher watches one file through its parent directory, so that
// replacement by rename is observed.
type Watcher struct {
	path     string
	debounce time.Duration
}

// New creates a watcher for path.
func New(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{path: abs, debounce: debounce}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Watch emits a Change after each quiet period following events on the
// file. The channel is closed when ctx is done or the watcher fails.
func (w *Watcher) Watch(ctx context.Context) (<-chan Change, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(w.path), err)
	}

	out := make(chan Change)
	go w.loop(ctx, fsw, out)
	return out, nil
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, out chan<- Change) {
	defer close(out)
	defer fsw.Close()

	var (
		pending *Change
		timer   *time.Timer
		fire    <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			change := w.handleEvent(ev)
			if change == nil {
				continue
			}
			pending = change
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if pending == nil {
				continue
			}
			select {
			case out <- *pending:
			case <-ctx.Done():
				return
			}
			pending = nil

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("filewatch: %v", err)
		}
	}
}

// handleEvent maps a raw event to a change of the watched file, or nil.
func (w *Watcher) handleEvent(ev fsnotify.Event) *Change {
	if filepath.Clean(ev.Name) != w.path {
		return nil
	}

	switch {
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		return &Change{Path: w.path, Type: ChangeWritten}
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		return &Change{Path: w.path, Type: ChangeRemoved}
	default:
		return nil
	}
}
