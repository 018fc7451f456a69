package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"go.trai.ch/kern/internal/core/domain"
	"go.trai.ch/kern/internal/core/ports"
	"go.trai.ch/zerr"
)

// Start resolves the bundle if needed and runs its activator.
// With UseActivationPolicy and a lazy revision, activation is deferred until
// the first symbol load and the bundle waits in STARTING.
func (f *Framework) Start(ctx context.Context, b *domain.Bundle, opts StartOptions) error {
	ctx, span := f.startSpan(ctx, "start", b)
	defer span.End()

	if err := f.behaviorFor(b).start(ctx, b, opts); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// Stop runs the bundle's activator stop and returns it to RESOLVED.
func (f *Framework) Stop(ctx context.Context, b *domain.Bundle, opts StopOptions) error {
	ctx, span := f.startSpan(ctx, "stop", b)
	defer span.End()

	if err := f.behaviorFor(b).stop(ctx, b, opts); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (f *Framework) startHost(ctx context.Context, b *domain.Bundle, opts StartOptions) error {
	if b.State() == domain.StateUninstalled {
		return uninstalledError(b)
	}

	ctx, lc, err := f.locks.LockItems(ctx, domain.MethodStart, b)
	if err != nil {
		return errors.Join(domain.ErrBundleStart, err)
	}
	defer f.locks.UnlockItems(lc)

	switch b.State() {
	case domain.StateUninstalled:
		return uninstalledError(b)
	case domain.StateActive:
		f.markStarted(b, opts)
		return nil
	case domain.StateStarting:
		// Either the activator is running further up this call chain, or
		// the bundle already waits for lazy activation.
		if b.IsActivating() || (b.LazyPending() && opts.UseActivationPolicy) {
			f.markStarted(b, opts)
			return nil
		}
	case domain.StateStopping:
		return zerr.With(zerr.Wrap(domain.ErrIllegalTransition, "start stopping bundle"), "bundle", b.String())
	case domain.StateInstalled:
		if err := f.resolve(ctx, b); err != nil {
			return zerr.With(errors.Join(domain.ErrBundleStart, err), "bundle", b.String())
		}
	}

	f.markStarted(b, opts)

	rev, err := f.registry.Current(b)
	if err != nil {
		return errors.Join(domain.ErrBundleStart, err)
	}

	if b.State() == domain.StateResolved {
		if err := f.transition(b, domain.StateStarting); err != nil {
			return err
		}
		if opts.UseActivationPolicy && rev.Metadata().LazyActivation {
			b.SetLazyPending(true)
			f.logger.Info(fmt.Sprintf("%s waits for lazy activation", b))
			return nil
		}
	}

	b.SetLazyPending(false)
	if err := f.activate(ctx, b, rev); err != nil {
		return err
	}
	f.logger.Info(fmt.Sprintf("started %s", b))
	return nil
}

func (f *Framework) markStarted(b *domain.Bundle, opts StartOptions) {
	if opts.Transient || b.AutoStart() {
		return
	}
	b.SetAutoStart(true)
	f.persistLogged(b)
}

// activate runs the activator of a STARTING bundle.
func (f *Framework) activate(ctx context.Context, b *domain.Bundle, rev *domain.Revision) error {
	if !b.BeginActivation() {
		return nil
	}
	defer b.EndActivation()

	act, err := f.activators.Activator(rev)
	if err == nil && act != nil {
		err = act.Start(ctx, b)
	}
	if err != nil {
		if terr := f.transition(b, domain.StateResolved); terr != nil {
			f.logger.Error(terr)
		}
		return zerr.With(errors.Join(domain.ErrActivatorFailed, err), "bundle", b.String())
	}
	return f.transition(b, domain.StateActive)
}

func (f *Framework) stopHost(ctx context.Context, b *domain.Bundle, opts StopOptions) error {
	if b.State() == domain.StateUninstalled {
		return uninstalledError(b)
	}

	ctx, lc, err := f.locks.LockEntities(ctx, domain.MethodStop, b)
	if err != nil {
		return errors.Join(domain.ErrBundleStop, err)
	}
	defer f.locks.UnlockItems(lc)

	if b.State() == domain.StateUninstalled {
		return uninstalledError(b)
	}
	if !opts.Transient && b.AutoStart() {
		b.SetAutoStart(false)
		f.persistLogged(b)
	}
	return f.stopLocked(ctx, b)
}

// stopLocked takes an ACTIVE or lazily STARTING bundle back to RESOLVED.
// Any other state is left alone. Callers must hold the bundle lock.
func (f *Framework) stopLocked(ctx context.Context, b *domain.Bundle) error {
	switch b.State() {
	case domain.StateActive:
	case domain.StateStarting:
		if b.IsActivating() {
			return zerr.With(zerr.Wrap(domain.ErrIllegalTransition, "stop bundle while its activator runs"), "bundle", b.String())
		}
		b.SetLazyPending(false)
		return f.transition(b, domain.StateResolved)
	default:
		return nil
	}

	if err := f.transition(b, domain.StateStopping); err != nil {
		return err
	}

	var stopErr error
	rev, err := f.registry.Current(b)
	if err == nil {
		var act ports.Activator
		act, stopErr = f.activators.Activator(rev)
		if stopErr == nil && act != nil {
			stopErr = act.Stop(ctx, b)
		}
	}

	if err := f.transition(b, domain.StateResolved); err != nil {
		return err
	}
	if stopErr != nil {
		return zerr.With(errors.Join(domain.ErrBundleStop, domain.ErrActivatorFailed, stopErr), "bundle", b.String())
	}
	f.logger.Info(fmt.Sprintf("stopped %s", b))
	return nil
}
