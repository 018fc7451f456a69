package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.trai.ch/kern/internal/core/domain"
	"go.trai.ch/kern/internal/core/ports"
	"go.trai.ch/kern/internal/engine/refresh"
	"go.trai.ch/zerr"
)

// Refresh re-resolves the bundles and everything wired to them.
// Dependants are stopped in reverse id order, unwired, refreshed through the
// configured policy, resolved again and restarted in id order. Revisions
// pending removal are dropped. With no bundles, every bundle with a pending
// revision is refreshed.
func (f *Framework) Refresh(ctx context.Context, bundles ...*domain.Bundle) error {
	ctx, span := f.tracer.Start(ctx, "bundle.refresh", ports.WithAttribute("bundle.count", len(bundles)))
	defer span.End()

	if err := f.refresh(ctx, bundles); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

type restart struct {
	bundle *domain.Bundle
	lazy   bool
}

func (f *Framework) refresh(ctx context.Context, bundles []*domain.Bundle) error {
	ctx, outer, err := f.locks.LockItems(ctx, domain.MethodRefresh)
	if err != nil {
		return err
	}
	defer f.locks.UnlockItems(outer)

	closure, dropped := f.refreshClosure(bundles)
	if len(closure) == 0 && len(dropped) == 0 {
		return nil
	}

	ctx, inner, err := f.locks.LockItems(ctx, domain.MethodRefresh, lockables(closure)...)
	if err != nil {
		return err
	}
	defer f.locks.UnlockItems(inner)

	var errs []error

	var restarts []restart
	for _, b := range slices.Backward(closure) {
		s := b.State()
		if s != domain.StateActive && s != domain.StateStarting {
			continue
		}
		restarts = append(restarts, restart{bundle: b, lazy: s == domain.StateStarting && b.LazyPending()})
		if err := f.stopLocked(ctx, b); err != nil {
			f.logger.Error(zerr.With(zerr.Wrap(err, "stop for refresh"), "bundle", b.String()))
		}
	}

	var live []*domain.Revision
	for _, b := range closure {
		if b.State() == domain.StateUninstalled {
			continue
		}
		live = append(live, f.registry.Revisions(b)...)
	}
	if err := f.env.Unwire(ctx, resources(live)...); err != nil {
		return zerr.Wrap(err, "unwire refreshed bundles")
	}
	for _, b := range closure {
		if b.State() == domain.StateResolved {
			if err := f.transition(b, domain.StateInstalled); err != nil {
				errs = append(errs, err)
			}
		}
	}

	h := refreshHost{f}
	for _, rev := range dropped {
		if rev.Bundle().State() != domain.StateUninstalled {
			if err := h.RemoveRevision(ctx, rev); err != nil {
				errs = append(errs, zerr.With(zerr.Wrap(err, "drop pending revision"), "revision", rev.String()))
				continue
			}
		}
		f.clearPending(rev)
	}

	for _, b := range closure {
		if b.State() == domain.StateUninstalled {
			continue
		}
		if err := f.refreshBundle(ctx, h, b); err != nil {
			errs = append(errs, err)
		}
	}

	rctx, release, err := f.lockUnresolved(ctx)
	if err != nil {
		return errors.Join(append(errs, err)...)
	}
	if !f.resolveAll(rctx, closure) {
		f.logger.Warn("some refreshed bundles could not be resolved")
	}
	release()

	for _, r := range slices.Backward(restarts) {
		if r.bundle.State() == domain.StateUninstalled {
			continue
		}
		opts := StartOptions{Transient: true, UseActivationPolicy: r.lazy}
		if err := f.startHost(ctx, r.bundle, opts); err != nil {
			errs = append(errs, err)
		}
	}

	f.logger.Info(fmt.Sprintf("refreshed %d bundle(s)", len(closure)))
	return errors.Join(errs...)
}

func (f *Framework) refreshBundle(ctx context.Context, h refresh.Host, b *domain.Bundle) error {
	p := f.policy(h)
	if err := p.InitBundleRefresh(b); err != nil {
		return zerr.With(zerr.Wrap(err, "begin refresh"), "bundle", b.String())
	}
	defer p.EndBundleRefresh(b)

	if _, err := p.RefreshCurrentRevision(ctx); err != nil {
		return zerr.With(zerr.Wrap(err, "refresh revision"), "bundle", b.String())
	}
	return nil
}

// refreshClosure returns the bundles affected by refreshing the given ones,
// in id order, and the pending revisions that the refresh drops.
func (f *Framework) refreshClosure(bundles []*domain.Bundle) ([]*domain.Bundle, []*domain.Revision) {
	pending := f.RemovalPending()

	in := make(map[*domain.Bundle]bool)
	var queue []*domain.Revision
	var dropped []*domain.Revision

	add := func(b *domain.Bundle) {
		if b.Kind() == domain.KindSystem || in[b] {
			return
		}
		in[b] = true
		queue = append(queue, f.registry.Revisions(b)...)
		for _, rev := range pending {
			if rev.Bundle() == b {
				queue = append(queue, rev)
				dropped = append(dropped, rev)
			}
		}
	}

	if len(bundles) == 0 {
		for _, rev := range pending {
			add(rev.Bundle())
		}
	}
	for _, b := range bundles {
		add(b)
	}

	for len(queue) > 0 {
		revs := queue
		queue = nil
		for _, r := range f.env.Dependents(resources(revs)...) {
			if rev, ok := r.(*domain.Revision); ok {
				add(rev.Bundle())
			}
		}
		// A fragment cannot be refreshed without its host.
		for _, rev := range revs {
			if !rev.IsFragment() {
				continue
			}
			w, ok := f.env.Wiring(rev)
			if !ok {
				continue
			}
			for _, wire := range w.RequiredWires(domain.NamespaceHost) {
				if host, ok := wire.Provider.(*domain.Revision); ok {
					add(host.Bundle())
				}
			}
		}
	}

	closure := make([]*domain.Bundle, 0, len(in))
	for b := range in {
		closure = append(closure, b)
	}
	slices.SortFunc(closure, func(a, b *domain.Bundle) int { return int(a.ID() - b.ID()) })
	return closure, dropped
}

// refreshHost exposes the internal revision operations to refresh policies.
type refreshHost struct{ f *Framework }

var _ refresh.Host = refreshHost{}

func (h refreshHost) CurrentRevision(b *domain.Bundle) (*domain.Revision, error) {
	return h.f.registry.Current(b)
}

func (h refreshHost) RemoveRevision(ctx context.Context, rev *domain.Revision) error {
	if _, err := h.f.env.UninstallResources(ctx, rev); err != nil {
		return err
	}
	h.f.registry.RemoveRevision(rev)
	h.f.clearPending(rev)
	return nil
}

func (h refreshHost) InstallRevision(ctx context.Context, b *domain.Bundle, d domain.Deployment) (*domain.Revision, error) {
	prev, _ := h.f.registry.Current(b)
	rev, err := h.f.registry.CreateRevision(b, d)
	if err != nil {
		return nil, err
	}
	if err := h.f.env.InstallResources(ctx, rev); err != nil {
		h.f.registry.RemoveRevision(rev)
		if prev != nil {
			_ = h.f.registry.ApplyRevision(prev)
		}
		return nil, zerr.Wrap(err, "install revision")
	}
	return rev, nil
}

func (h refreshHost) ApplyRevision(ctx context.Context, rev *domain.Revision) error {
	if !h.f.env.Contains(rev) {
		if err := h.f.env.InstallResources(ctx, rev); err != nil {
			return zerr.Wrap(err, "reinstall revision")
		}
	}
	return h.f.registry.ApplyRevision(rev)
}
