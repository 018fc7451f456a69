package lifecycle

import (
	"context"
	"slices"
	"sync"

	"go.trai.ch/kern/internal/core/domain"
	"go.trai.ch/zerr"
)

// ActivationTracker is the stack of bundles awaiting lazy activation within
// one symbol loading call chain.
type ActivationTracker struct {
	mu    sync.Mutex
	depth int
	stack []*domain.Bundle
}

type trackerKey struct{}

// WithActivationTracker returns ctx carrying an activation tracker, reusing
// the one already bound to ctx if there is one.
func WithActivationTracker(ctx context.Context) (context.Context, *ActivationTracker) {
	if t, ok := ctx.Value(trackerKey{}).(*ActivationTracker); ok {
		return ctx, t
	}
	t := &ActivationTracker{}
	return context.WithValue(ctx, trackerKey{}, t), t
}

// Pending returns the tracked bundles, most recently pushed last.
func (t *ActivationTracker) Pending() []*domain.Bundle {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.stack)
}

func (t *ActivationTracker) enter() {
	t.mu.Lock()
	t.depth++
	t.mu.Unlock()
}

// leave reports whether the outermost load has returned.
func (t *ActivationTracker) leave() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.depth--
	return t.depth == 0
}

func (t *ActivationTracker) push(b *domain.Bundle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if slices.Contains(t.stack, b) {
		return
	}
	t.stack = append(t.stack, b)
}

// drain empties the stack and returns its bundles in LIFO order.
func (t *ActivationTracker) drain() []*domain.Bundle {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.stack
	t.stack = nil
	slices.Reverse(out)
	return out
}

// LoadSymbol loads a named symbol from the bundle's current revision. A
// bundle awaiting lazy activation is tracked on first use and activated once
// the outermost load in the call chain returns. Activation failures are
// logged, never returned.
func (f *Framework) LoadSymbol(ctx context.Context, b *domain.Bundle, name string) (any, error) {
	ctx, span := f.startSpan(ctx, "load_symbol", b)
	defer span.End()
	span.SetAttribute("symbol", name)

	if b.State() == domain.StateUninstalled {
		return nil, uninstalledError(b)
	}
	if err := f.resolve(ctx, b); err != nil {
		span.RecordError(err)
		return nil, err
	}
	rev, err := f.registry.Current(b)
	if err != nil {
		return nil, err
	}

	ctx, tracker := WithActivationTracker(ctx)
	tracker.enter()
	if b.LazyPending() && !b.IsActivating() {
		tracker.push(b)
	}

	v, err := f.symbols.LoadSymbol(ctx, rev, name)

	if tracker.leave() {
		for _, pending := range tracker.drain() {
			if aerr := f.activateLazy(ctx, pending); aerr != nil {
				f.logger.Error(zerr.With(zerr.Wrap(aerr, "lazy activation"), "bundle", pending.String()))
			}
		}
	}

	if err != nil {
		span.RecordError(err)
		return nil, zerr.With(zerr.With(zerr.Wrap(err, "load symbol"), "symbol", name), "bundle", b.String())
	}
	return v, nil
}

func (f *Framework) activateLazy(ctx context.Context, b *domain.Bundle) error {
	ctx, lc, err := f.locks.LockItems(ctx, domain.MethodStart, b)
	if err != nil {
		return err
	}
	defer f.locks.UnlockItems(lc)

	if b.State() != domain.StateStarting || !b.LazyPending() {
		return nil
	}
	rev, err := f.registry.Current(b)
	if err != nil {
		return err
	}
	b.SetLazyPending(false)
	return f.activate(ctx, b, rev)
}
