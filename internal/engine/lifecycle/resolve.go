package lifecycle

import (
	"context"
	"fmt"
	"slices"

	"go.trai.ch/kern/internal/core/domain"
	"go.trai.ch/zerr"
)

// Resolve wires the bundle's current revision into the environment.
// A bundle that is already RESOLVED, or further along, is left untouched.
func (f *Framework) Resolve(ctx context.Context, b *domain.Bundle) error {
	ctx, span := f.startSpan(ctx, "resolve", b)
	defer span.End()

	if err := f.resolve(ctx, b); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// ResolveBundles resolves as many of the bundles as possible and reports
// whether all of them ended up resolved.
func (f *Framework) ResolveBundles(ctx context.Context, bundles ...*domain.Bundle) bool {
	ctx, span := f.tracer.Start(ctx, "bundle.resolve_bundles")
	defer span.End()
	span.SetAttribute("bundle.count", len(bundles))

	ctx, release, err := f.lockUnresolved(ctx)
	if err != nil {
		span.RecordError(err)
		f.logger.Error(err)
		return false
	}
	defer release()

	return f.resolveAll(ctx, bundles)
}

func (f *Framework) resolve(ctx context.Context, b *domain.Bundle) error {
	switch b.State() {
	case domain.StateUninstalled:
		return uninstalledError(b)
	case domain.StateInstalled:
	default:
		return nil
	}

	ctx, release, err := f.lockUnresolved(ctx)
	if err != nil {
		return err
	}
	defer release()

	switch b.State() {
	case domain.StateUninstalled:
		return uninstalledError(b)
	case domain.StateInstalled:
	default:
		return nil
	}

	rev, err := f.registry.Current(b)
	if err != nil {
		return err
	}
	if err := f.wire(ctx, []domain.Resource{rev}, resources(f.attachableFragments(rev))); err != nil {
		return zerr.With(zerr.Wrap(err, "resolve bundle"), "bundle", b.String())
	}
	if b.State() != domain.StateResolved {
		return zerr.With(zerr.Wrap(domain.ErrResolutionFailed, "bundle left unresolved"), "bundle", b.String())
	}
	return nil
}

// resolveAll resolves the installed bundles among bundles as optional
// resources. Callers must hold the lock set from lockUnresolved.
func (f *Framework) resolveAll(ctx context.Context, bundles []*domain.Bundle) bool {
	var optional []*domain.Revision
	for _, b := range bundles {
		if b.State() != domain.StateInstalled {
			continue
		}
		rev, err := f.registry.Current(b)
		if err != nil {
			continue
		}
		optional = append(optional, rev)
		for _, frag := range f.attachableFragments(rev) {
			if !slices.Contains(optional, frag) {
				optional = append(optional, frag)
			}
		}
	}

	if len(optional) > 0 {
		if err := f.wire(ctx, nil, resources(optional)); err != nil {
			f.logger.Error(zerr.Wrap(err, "resolve bundles"))
		}
	}

	for _, b := range bundles {
		if s := b.State(); s == domain.StateInstalled || s == domain.StateUninstalled {
			return false
		}
	}
	return true
}

// wire resolves the resources and moves every bundle whose current revision
// received a wiring to RESOLVED.
func (f *Framework) wire(ctx context.Context, mandatory, optional []domain.Resource) error {
	wirings, err := f.env.Resolve(ctx, mandatory, optional)
	if err != nil {
		return err
	}

	resolved := 0
	for r := range wirings {
		rev, ok := r.(*domain.Revision)
		if !ok {
			continue
		}
		b := rev.Bundle()
		if b.State() != domain.StateInstalled {
			continue
		}
		if cur, err := f.registry.Current(b); err != nil || cur != rev {
			continue
		}
		if err := f.transition(b, domain.StateResolved); err != nil {
			return err
		}
		resolved++
	}
	if resolved > 0 {
		f.logger.Info(fmt.Sprintf("resolved %d bundle(s)", resolved))
	}
	return nil
}

// lockUnresolved takes the RESOLVE lock on the framework and on every bundle
// that is still INSTALLED, since any of them may be pulled in transitively.
// The set is taken again once the wiring lock is held to catch bundles
// installed while waiting.
func (f *Framework) lockUnresolved(ctx context.Context) (context.Context, func(), error) {
	ctx, outer, err := f.locks.LockItems(ctx, domain.MethodResolve, lockables(f.unresolved())...)
	if err != nil {
		return ctx, func() {}, err
	}
	ctx, inner, err := f.locks.LockItems(ctx, domain.MethodResolve, lockables(f.unresolved())...)
	if err != nil {
		f.locks.UnlockItems(outer)
		return ctx, func() {}, err
	}
	return ctx, func() {
		f.locks.UnlockItems(inner)
		f.locks.UnlockItems(outer)
	}, nil
}

func (f *Framework) unresolved() []*domain.Bundle {
	var out []*domain.Bundle
	for _, b := range f.registry.Bundles() {
		if b.State() == domain.StateInstalled {
			out = append(out, b)
		}
	}
	return out
}

// attachableFragments returns the current revisions of installed fragments
// whose host requirement the host revision satisfies.
func (f *Framework) attachableFragments(host *domain.Revision) []*domain.Revision {
	if host.IsFragment() {
		return nil
	}
	hostCaps := host.Capabilities(domain.NamespaceHost)

	var out []*domain.Revision
	for _, b := range f.registry.Bundles() {
		if !b.IsFragment() || b.State() != domain.StateInstalled {
			continue
		}
		frag, err := f.registry.Current(b)
		if err != nil {
			continue
		}
	match:
		for _, req := range frag.Requirements(domain.NamespaceHost) {
			for _, c := range hostCaps {
				if req.Matches(c) {
					out = append(out, frag)
					break match
				}
			}
		}
	}
	return out
}
