package watcher

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/kern/internal/core/ports"
)

// NewDetached builds a Watcher without an fsnotify backend.
func NewDetached(logger ports.Logger, window time.Duration, locations map[string]string) *Watcher {
	return &Watcher{
		logger:    logger,
		window:    window,
		locations: locations,
		changes:   make(chan []string),
	}
}

// Run drives the event loop from the given channels.
func (w *Watcher) Run(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) {
	w.loop(ctx, events, errs)
}
