package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"go.trai.ch/kern/internal/core/domain"
	"go.trai.ch/kern/internal/core/ports"
	"go.trai.ch/zerr"
)

// Install creates a bundle from the deployment in the INSTALLED state.
// Installing a location twice returns the bundle already installed there.
func (f *Framework) Install(ctx context.Context, d domain.Deployment) (*domain.Bundle, error) {
	ctx, span := f.tracer.Start(ctx, "bundle.install", ports.WithAttribute("bundle.location", d.Location))
	defer span.End()

	b, created, err := f.install(ctx, d)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttribute("bundle.id", int64(b.ID()))

	if created && d.AutoStart && !b.IsFragment() {
		if err := f.Start(ctx, b, StartOptions{UseActivationPolicy: true}); err != nil {
			span.RecordError(err)
			return b, err
		}
	}
	return b, nil
}

func (f *Framework) install(ctx context.Context, d domain.Deployment) (*domain.Bundle, bool, error) {
	if err := d.Metadata.Validate(); err != nil {
		return nil, false, zerr.With(zerr.Wrap(err, "validate deployment"), "location", d.Location)
	}

	ctx, lc, err := f.locks.LockItems(ctx, domain.MethodInstall)
	if err != nil {
		return nil, false, err
	}
	defer f.locks.UnlockItems(lc)

	if existing, ok := f.registry.BundleByLocation(d.Location); ok {
		return existing, false, nil
	}
	md := d.Metadata
	if other, ok := f.registry.Lookup(md.SymbolicName, md.Version); ok {
		var err error = zerr.Wrap(domain.ErrDuplicateBundle, "install bundle")
		err = zerr.With(err, "location", d.Location)
		return nil, false, zerr.With(err, "installed", other.String())
	}

	var preferred domain.BundleID
	var autoStart bool
	if stored, err := f.storage.Load(d.Location); err != nil {
		f.logger.Warn(fmt.Sprintf("ignoring storage state for %s: %v", d.Location, err))
	} else if stored != nil {
		preferred = stored.BundleID
		autoStart = stored.AutoStart && md.Kind() != domain.KindFragment
	}

	id := f.registry.NextBundleID(preferred)
	b := domain.NewBundle(id, d.Location, md.SymbolicName, md.Version, md.Kind())
	b.SetAutoStart(autoStart)
	if err := f.registry.AddBundle(b); err != nil {
		return nil, false, err
	}

	rev, err := f.registry.CreateRevision(b, d)
	if err != nil {
		f.registry.RemoveBundle(b)
		return nil, false, err
	}
	if err := f.env.InstallResources(ctx, rev); err != nil {
		f.registry.RemoveBundle(b)
		return nil, false, zerr.Wrap(err, "install revision")
	}

	f.persistLogged(b)
	f.logger.Info(fmt.Sprintf("installed %s from %s", b, d.Location))
	return b, true, nil
}

// Uninstall stops the bundle if needed, removes all its revisions from the
// environment and moves it to UNINSTALLED. Uninstalling twice is a no-op.
func (f *Framework) Uninstall(ctx context.Context, b *domain.Bundle) error {
	ctx, span := f.startSpan(ctx, "uninstall", b)
	defer span.End()

	if err := f.behaviorFor(b).uninstall(ctx, b); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (f *Framework) uninstall(ctx context.Context, b *domain.Bundle) error {
	if b.State() == domain.StateUninstalled {
		return nil
	}

	ctx, lc, err := f.locks.LockItems(ctx, domain.MethodUninstall, b)
	if err != nil {
		return err
	}
	defer f.locks.UnlockItems(lc)

	// Another caller may have finished the uninstall while we waited.
	if b.State() == domain.StateUninstalled {
		return nil
	}

	if err := f.stopLocked(ctx, b); err != nil {
		f.logger.Error(zerr.With(zerr.Wrap(err, "stop before uninstall"), "bundle", b.String()))
	}
	// A bundle whose activator is still running cannot leave STARTING.
	if !b.State().CanTransition(domain.StateUninstalled) {
		var err error = zerr.Wrap(domain.ErrIllegalTransition, "uninstall bundle")
		err = zerr.With(err, "bundle", b.String())
		return zerr.With(err, "state", b.State().String())
	}

	revs := f.registry.Revisions(b)
	dependents := f.env.Dependents(resources(revs)...)
	if _, err := f.env.UninstallResources(ctx, resources(revs)...); err != nil {
		return zerr.With(zerr.Wrap(err, "remove revisions"), "bundle", b.String())
	}
	f.registry.RemoveBundle(b)
	if len(dependents) > 0 {
		f.markPending(revs...)
	}

	if err := f.storage.Delete(b.Location()); err != nil {
		f.logger.Error(zerr.With(zerr.Wrap(err, "delete storage state"), "bundle", b.String()))
	}
	if err := f.transition(b, domain.StateUninstalled); err != nil {
		return err
	}
	f.logger.Info(fmt.Sprintf("uninstalled %s", b))
	return nil
}

// Update installs a new current revision from the deployment. The displaced
// revision is dropped at once unless other revisions are wired to it, in
// which case it waits for the next Refresh. An active bundle is restarted.
func (f *Framework) Update(ctx context.Context, b *domain.Bundle, d domain.Deployment) error {
	ctx, span := f.startSpan(ctx, "update", b)
	defer span.End()

	if err := f.behaviorFor(b).update(ctx, b, d); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (f *Framework) update(ctx context.Context, b *domain.Bundle, d domain.Deployment) error {
	if b.State() == domain.StateUninstalled {
		return uninstalledError(b)
	}
	md := d.Metadata
	if err := md.Validate(); err != nil {
		return zerr.With(zerr.Wrap(err, "validate deployment"), "bundle", b.String())
	}
	if md.SymbolicName != b.SymbolicName() || md.Kind() != b.Kind() {
		var err error = zerr.Wrap(domain.ErrInvalidMetadata, "update changes bundle identity")
		err = zerr.With(err, "bundle", b.String())
		return zerr.With(err, "symbolic_name", md.SymbolicName)
	}
	if d.Location == "" {
		d.Location = b.Location()
	}

	ctx, lc, err := f.locks.LockItems(ctx, domain.MethodUpdate, b)
	if err != nil {
		return err
	}
	defer f.locks.UnlockItems(lc)

	if b.State() == domain.StateUninstalled {
		return uninstalledError(b)
	}
	if other, ok := f.registry.Lookup(md.SymbolicName, md.Version); ok && other != b {
		return zerr.With(zerr.Wrap(domain.ErrDuplicateBundle, "update bundle"), "installed", other.String())
	}

	state := b.State()
	lazy := state == domain.StateStarting && b.LazyPending()
	restart := state == domain.StateActive || lazy
	if err := f.stopLocked(ctx, b); err != nil {
		f.logger.Error(zerr.With(zerr.Wrap(err, "stop before update"), "bundle", b.String()))
	}

	old, err := f.registry.Current(b)
	if err != nil {
		return err
	}
	h := refreshHost{f}
	if _, err := h.InstallRevision(ctx, b, d); err != nil {
		return err
	}

	if len(f.env.Dependents(old)) > 0 {
		f.markPending(old)
	} else if err := h.RemoveRevision(ctx, old); err != nil {
		f.logger.Error(zerr.With(zerr.Wrap(err, "drop displaced revision"), "revision", old.String()))
	}

	if b.State() == domain.StateResolved {
		if err := f.transition(b, domain.StateInstalled); err != nil {
			return err
		}
	}
	f.persistLogged(b)
	f.logger.Info(fmt.Sprintf("updated %s", b))

	if restart {
		if err := f.startHost(ctx, b, StartOptions{Transient: true, UseActivationPolicy: lazy}); err != nil {
			return errors.Join(domain.ErrBundleStart, err)
		}
	}
	return nil
}
