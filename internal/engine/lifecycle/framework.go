// Package lifecycle implements the bundle lifecycle state machine on top of
// the lock manager, the environment coordinator and the revision registry.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.trai.ch/kern/internal/core/domain"
	"go.trai.ch/kern/internal/core/ports"
	"go.trai.ch/kern/internal/engine/environment"
	"go.trai.ch/kern/internal/engine/lock"
	"go.trai.ch/kern/internal/engine/refresh"
	"go.trai.ch/kern/internal/engine/registry"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// SystemBundleName is the symbolic name of bundle 0.
const SystemBundleName = "system.bundle"

// SystemBundleLocation is the location of bundle 0.
const SystemBundleLocation = "System Bundle"

// StartOptions modify Start.
type StartOptions struct {
	// Transient starts the bundle without marking it auto-start.
	Transient bool
	// UseActivationPolicy honours a declared lazy activation policy.
	UseActivationPolicy bool
}

// StopOptions modify Stop.
type StopOptions struct {
	// Transient stops the bundle without clearing its auto-start mark.
	Transient bool
}

// Options are the collaborators of a Framework.
type Options struct {
	Locks       *lock.Manager
	Environment *environment.Coordinator
	Registry    *registry.Registry
	Deployments ports.DeploymentProvider
	Storage     ports.StorageProvider
	Activators  ports.ActivatorProvider
	Symbols     ports.SymbolLoader
	Logger      ports.Logger
	Tracer      ports.Tracer
	// RefreshPolicy creates the policy used per refreshed bundle. Defaults to recreate.
	RefreshPolicy refresh.Factory
	// SystemPackages are exported by the system bundle.
	SystemPackages []domain.Capability
}

// Framework owns the lifecycle of every bundle it installed.
type Framework struct {
	locks       *lock.Manager
	env         *environment.Coordinator
	registry    *registry.Registry
	deployments ports.DeploymentProvider
	storage     ports.StorageProvider
	activators  ports.ActivatorProvider
	symbols     ports.SymbolLoader
	logger      ports.Logger
	tracer      ports.Tracer
	policy      refresh.Factory
	sysPackages []domain.Capability

	behaviors map[domain.Kind]behavior

	mu sync.Mutex
	// pending holds revisions that other revisions are still wired to after an
	// update or uninstall displaced them. They are dropped on the next refresh.
	pending map[*domain.Revision]struct{}
}

// New creates a Framework. Init must be called before bundles are installed.
func New(opts Options) (*Framework, error) {
	switch {
	case opts.Locks == nil:
		return nil, zerr.Wrap(domain.ErrFrameworkBootFailed, "lock manager is required")
	case opts.Environment == nil:
		return nil, zerr.Wrap(domain.ErrFrameworkBootFailed, "environment is required")
	case opts.Logger == nil:
		return nil, zerr.Wrap(domain.ErrFrameworkBootFailed, "logger is required")
	case opts.Tracer == nil:
		return nil, zerr.Wrap(domain.ErrFrameworkBootFailed, "tracer is required")
	case opts.Activators == nil:
		return nil, zerr.Wrap(domain.ErrFrameworkBootFailed, "activator provider is required")
	case opts.Symbols == nil:
		return nil, zerr.Wrap(domain.ErrFrameworkBootFailed, "symbol loader is required")
	case opts.Storage == nil:
		return nil, zerr.Wrap(domain.ErrFrameworkBootFailed, "storage provider is required")
	}

	reg := opts.Registry
	if reg == nil {
		reg = registry.New()
	}
	policy := opts.RefreshPolicy
	if policy == nil {
		policy = func(h refresh.Host) refresh.Policy { return refresh.NewRecreate(h, opts.Deployments) }
	}

	f := &Framework{
		locks:       opts.Locks,
		env:         opts.Environment,
		registry:    reg,
		deployments: opts.Deployments,
		storage:     opts.Storage,
		activators:  opts.Activators,
		symbols:     opts.Symbols,
		logger:      opts.Logger,
		tracer:      opts.Tracer,
		policy:      policy,
		sysPackages: slices.Clone(opts.SystemPackages),
		pending:     make(map[*domain.Revision]struct{}),
	}
	f.behaviors = map[domain.Kind]behavior{
		domain.KindHost:     hostBehavior{f},
		domain.KindFragment: fragmentBehavior{f},
		domain.KindSystem:   systemBehavior{f},
	}
	return f, nil
}

// Init installs the system bundle, wires it and makes it ACTIVE.
// Calling Init again is a no-op.
func (f *Framework) Init(ctx context.Context) error {
	ctx, span := f.tracer.Start(ctx, "framework.init")
	defer span.End()

	if _, ok := f.registry.Bundle(domain.SystemBundleID); ok {
		return nil
	}

	ctx, lc, err := f.locks.LockItems(ctx, domain.MethodInstall)
	if err != nil {
		span.RecordError(err)
		return err
	}
	defer f.locks.UnlockItems(lc)

	md := domain.Metadata{
		SymbolicName: SystemBundleName,
		Version:      domain.EmptyVersion,
		Capabilities: f.sysPackages,
	}
	sys := domain.NewBundle(domain.SystemBundleID, SystemBundleLocation, SystemBundleName, md.Version, domain.KindSystem)
	if err := f.registry.AddBundle(sys); err != nil {
		return err
	}
	rev, err := f.registry.CreateRevision(sys, domain.Deployment{Location: SystemBundleLocation, Metadata: md})
	if err != nil {
		return err
	}
	if err := f.env.InstallResources(ctx, rev); err != nil {
		return zerr.Wrap(err, "install system bundle")
	}
	if _, err := f.env.Resolve(ctx, []domain.Resource{rev}, nil); err != nil {
		span.RecordError(err)
		return errors.Join(domain.ErrFrameworkBootFailed, err)
	}
	for _, next := range []domain.State{domain.StateResolved, domain.StateStarting, domain.StateActive} {
		if err := f.transition(sys, next); err != nil {
			return err
		}
	}

	f.logger.Info(fmt.Sprintf("framework initialised with %d system package(s)", len(f.sysPackages)))
	return nil
}

// SystemBundle returns bundle 0, or nil before Init.
func (f *Framework) SystemBundle() *domain.Bundle {
	b, _ := f.registry.Bundle(domain.SystemBundleID)
	return b
}

// Bundle returns an installed bundle by id.
func (f *Framework) Bundle(id domain.BundleID) (*domain.Bundle, bool) {
	return f.registry.Bundle(id)
}

// BundleByLocation returns the bundle installed from location.
func (f *Framework) BundleByLocation(location string) (*domain.Bundle, bool) {
	return f.registry.BundleByLocation(location)
}

// Bundles returns every installed bundle in id order, the system bundle first.
func (f *Framework) Bundles() []*domain.Bundle {
	return f.registry.Bundles()
}

// CurrentRevision returns the bundle's current revision.
func (f *Framework) CurrentRevision(b *domain.Bundle) (*domain.Revision, error) {
	return f.registry.Current(b)
}

// Revisions returns every revision of the bundle still held by the registry.
func (f *Framework) Revisions(b *domain.Bundle) []*domain.Revision {
	return f.registry.Revisions(b)
}

// Wiring returns the wiring of the bundle's current revision.
func (f *Framework) Wiring(b *domain.Bundle) (*domain.BundleWiring, bool) {
	rev, err := f.registry.Current(b)
	if err != nil {
		return nil, false
	}
	w, ok := f.env.Wiring(rev)
	if !ok {
		return nil, false
	}
	bw, ok := w.(*domain.BundleWiring)
	return bw, ok
}

// RemovalPending returns the revisions kept only because others are wired to them.
func (f *Framework) RemovalPending() []*domain.Revision {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Revision, 0, len(f.pending))
	for rev := range f.pending {
		out = append(out, rev)
	}
	slices.SortFunc(out, func(a, b *domain.Revision) int { return int(a.ID()) - int(b.ID()) })
	return out
}

// Shutdown stops every active bundle in reverse id order, moves the system
// bundle to RESOLVED and flushes storage state. Stop failures are logged.
func (f *Framework) Shutdown(ctx context.Context) error {
	ctx, span := f.tracer.Start(ctx, "framework.shutdown")
	defer span.End()

	bundles := f.registry.Bundles()
	for _, b := range slices.Backward(bundles) {
		if b.Kind() == domain.KindSystem || b.IsFragment() {
			continue
		}
		if s := b.State(); s != domain.StateActive && s != domain.StateStarting {
			continue
		}
		if err := f.stopHost(ctx, b, StopOptions{Transient: true}); err != nil {
			f.logger.Error(zerr.With(zerr.Wrap(err, "stop during shutdown"), "bundle", b.String()))
		}
	}

	if sys := f.SystemBundle(); sys != nil && sys.State() == domain.StateActive {
		_, lc, err := f.locks.LockEntities(ctx, domain.MethodStop, sys)
		if err != nil {
			span.RecordError(err)
			return err
		}
		if sys.State() == domain.StateActive {
			for _, next := range []domain.State{domain.StateStopping, domain.StateResolved} {
				if err := f.transition(sys, next); err != nil {
					f.logger.Error(zerr.With(zerr.Wrap(err, "stop system bundle"), "bundle", sys.String()))
					break
				}
			}
		}
		f.locks.UnlockItems(lc)
	}

	g, _ := errgroup.WithContext(ctx)
	for _, b := range bundles {
		if b.Kind() == domain.KindSystem || b.State() == domain.StateUninstalled {
			continue
		}
		g.Go(func() error { return f.persist(b) })
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return err
	}

	f.logger.Info("framework stopped")
	return nil
}

func (f *Framework) behaviorFor(b *domain.Bundle) behavior {
	return f.behaviors[b.Kind()]
}

// transition moves b to next if the lifecycle allows it.
// Callers must hold the bundle lock.
func (f *Framework) transition(b *domain.Bundle, next domain.State) error {
	cur := b.State()
	if !cur.CanTransition(next) {
		var err error = zerr.Wrap(domain.ErrIllegalTransition, "change bundle state")
		err = zerr.With(err, "bundle", b.String())
		err = zerr.With(err, "from", cur.String())
		return zerr.With(err, "to", next.String())
	}
	b.SetState(next)
	return nil
}

func (f *Framework) startSpan(ctx context.Context, op string, b *domain.Bundle) (context.Context, ports.Span) {
	return f.tracer.Start(ctx, "bundle."+op,
		ports.WithAttribute("bundle.id", int64(b.ID())),
		ports.WithAttribute("bundle.name", b.SymbolicName()),
	)
}

func (f *Framework) persist(b *domain.Bundle) error {
	rev, err := f.registry.Current(b)
	if err != nil {
		return err
	}
	return f.storage.Save(domain.StorageState{
		BundleID:     b.ID(),
		Location:     b.Location(),
		AutoStart:    b.AutoStart(),
		Generation:   rev.Generation(),
		Checksum:     rev.Checksum(),
		LastModified: time.Now(),
	})
}

// persistLogged records storage state and logs instead of failing the operation.
func (f *Framework) persistLogged(b *domain.Bundle) {
	if err := f.persist(b); err != nil {
		f.logger.Error(zerr.With(zerr.Wrap(err, "persist storage state"), "bundle", b.String()))
	}
}

func uninstalledError(b *domain.Bundle) error {
	return zerr.With(zerr.Wrap(domain.ErrBundleUninstalled, "check bundle state"), "bundle", b.String())
}

func (f *Framework) markPending(revs ...*domain.Revision) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rev := range revs {
		f.pending[rev] = struct{}{}
	}
}

func (f *Framework) clearPending(rev *domain.Revision) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pending, rev)
}

func resources(revs []*domain.Revision) []domain.Resource {
	out := make([]domain.Resource, len(revs))
	for i, rev := range revs {
		out[i] = rev
	}
	return out
}

func lockables(bundles []*domain.Bundle) []domain.Lockable {
	out := make([]domain.Lockable, len(bundles))
	for i, b := range bundles {
		out[i] = b
	}
	return out
}
