// Package runtime implements an in-process activator and symbol registry.
package runtime

import (
	"context"
	"fmt"
	"sync"

	"go.trai.ch/kern/internal/core/domain"
	"go.trai.ch/kern/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.ActivatorProvider = (*Registry)(nil)
	_ ports.SymbolLoader      = (*Registry)(nil)
)

// SymbolFunc produces a symbol's value. It receives the ctx of the load so
// nested loads share lazy activation tracking.
type SymbolFunc func(ctx context.Context) (any, error)

// Registry maps activator names to activators and bundle symbolic names to
// their symbols.
type Registry struct {
	mu         sync.RWMutex
	activators map[string]ports.Activator
	symbols    map[string]map[string]SymbolFunc
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		activators: make(map[string]ports.Activator),
		symbols:    make(map[string]map[string]SymbolFunc),
	}
}

// RegisterActivator makes an activator available under name. Registering a
// name twice replaces the earlier activator.
func (r *Registry) RegisterActivator(name string, a ports.Activator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activators[name] = a
}

// RegisterSymbol adds a symbol to the bundle with the given symbolic name.
func (r *Registry) RegisterSymbol(symbolicName, name string, fn SymbolFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.symbols[symbolicName] == nil {
		r.symbols[symbolicName] = make(map[string]SymbolFunc)
	}
	r.symbols[symbolicName][name] = fn
}

// Activator implements ports.ActivatorProvider.
func (r *Registry) Activator(rev *domain.Revision) (ports.Activator, error) {
	name := rev.Metadata().Activator
	if name == "" {
		return nil, nil
	}

	r.mu.RLock()
	a, ok := r.activators[name]
	r.mu.RUnlock()
	if !ok {
		var err error = zerr.Wrap(domain.ErrActivatorFailed, "activator not registered")
		err = zerr.With(err, "activator", name)
		return nil, zerr.With(err, "revision", rev.String())
	}
	return a, nil
}

// LoadSymbol implements ports.SymbolLoader.
func (r *Registry) LoadSymbol(ctx context.Context, rev *domain.Revision, name string) (any, error) {
	r.mu.RLock()
	fn, ok := r.symbols[rev.SymbolicName()][name]
	r.mu.RUnlock()
	if !ok {
		var err error = zerr.Wrap(domain.ErrSymbolNotFound, "load symbol")
		err = zerr.With(err, "symbol", name)
		return nil, zerr.With(err, "revision", rev.String())
	}
	return fn(ctx)
}

// Funcs adapts a pair of functions to ports.Activator. Nil functions succeed.
type Funcs struct {
	StartFunc func(ctx context.Context, b *domain.Bundle) error
	StopFunc  func(ctx context.Context, b *domain.Bundle) error
}

// Start implements ports.Activator.
func (f Funcs) Start(ctx context.Context, b *domain.Bundle) error {
	if f.StartFunc == nil {
		return nil
	}
	return f.StartFunc(ctx, b)
}

// Stop implements ports.Activator.
func (f Funcs) Stop(ctx context.Context, b *domain.Bundle) error {
	if f.StopFunc == nil {
		return nil
	}
	return f.StopFunc(ctx, b)
}

// LogActivator is the built-in "log" activator; it reports start and stop.
type LogActivator struct {
	logger ports.Logger
}

// NewLogActivator creates a LogActivator.
func NewLogActivator(logger ports.Logger) *LogActivator {
	return &LogActivator{logger: logger}
}

// Start implements ports.Activator.
func (a *LogActivator) Start(_ context.Context, b *domain.Bundle) error {
	a.logger.Info(fmt.Sprintf("activator start: %s", b))
	return nil
}

// Stop implements ports.Activator.
func (a *LogActivator) Stop(_ context.Context, b *domain.Bundle) error {
	a.logger.Info(fmt.Sprintf("activator stop: %s", b))
	return nil
}
