// Package watcher reports changes to bundle descriptor files using fsnotify.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/kern/internal/core/domain"
	"go.trai.ch/kern/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

// DefaultDebounceWindow is how long a file must stay quiet before its
// change is reported.
const DefaultDebounceWindow = 200 * time.Millisecond

const fileScheme = "file:"

// Watcher watches the directories holding bundle descriptors and reports
// coalesced batches of changed locations.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	logger    ports.Logger
	window    time.Duration

	mu        sync.Mutex
	locations map[string]string // cleaned path -> location
	changes   chan []string
	started   bool
}

// New creates a Watcher. A window of zero uses DefaultDebounceWindow.
func New(logger ports.Logger, window time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Join(domain.ErrWatchFailed, err)
	}
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Watcher{
		fsWatcher: fsw,
		logger:    logger,
		window:    window,
		locations: make(map[string]string),
		changes:   make(chan []string),
	}, nil
}

// Watch implements ports.Watcher. It may only be called once.
func (w *Watcher) Watch(ctx context.Context, locations []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return zerr.Wrap(domain.ErrWatchFailed, "watcher already started")
	}

	dirs := make(map[string]struct{})
	for _, loc := range locations {
		path, err := filepath.Abs(strings.TrimPrefix(loc, fileScheme))
		if err != nil {
			return zerr.With(errors.Join(domain.ErrWatchFailed, err), "location", loc)
		}
		w.locations[path] = loc
		dirs[filepath.Dir(path)] = struct{}{}
	}
	for dir := range dirs {
		if err := w.fsWatcher.Add(dir); err != nil {
			return zerr.With(errors.Join(domain.ErrWatchFailed, err), "dir", dir)
		}
	}

	w.started = true
	go w.loop(ctx, w.fsWatcher.Events, w.fsWatcher.Errors)
	return nil
}

// Changes implements ports.Watcher.
func (w *Watcher) Changes() iter.Seq[[]string] {
	return func(yield func([]string) bool) {
		for batch := range w.changes {
			if !yield(batch) {
				return
			}
		}
	}
}

// Close implements ports.Watcher.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}

// loop coalesces events until the debounce window passes without a new one.
func (w *Watcher) loop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) {
	defer close(w.changes)

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.window)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			loc, ok := w.match(event)
			if !ok {
				continue
			}
			pending[loc] = struct{}{}
			timer.Reset(w.window)
		case err, ok := <-errs:
			if !ok {
				return
			}
			w.logger.Warn(fmt.Sprintf("watcher: file system error: %v", err))
		case <-timer.C:
			batch := make([]string, 0, len(pending))
			for loc := range pending {
				batch = append(batch, loc)
			}
			clear(pending)
			slices.Sort(batch)
			select {
			case w.changes <- batch:
			case <-ctx.Done():
				return
			}
		}
	}
}

// match maps a write or create of a watched file to its location.
func (w *Watcher) match(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return "", false
	}
	path, err := filepath.Abs(event.Name)
	if err != nil {
		return "", false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	loc, ok := w.locations[path]
	return loc, ok
}
