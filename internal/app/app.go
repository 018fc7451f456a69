// Package app implements the application layer for kern.
package app

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.trai.ch/kern/internal/core/domain"
	"go.trai.ch/kern/internal/core/ports"
	"go.trai.ch/kern/internal/engine/environment"
	"go.trai.ch/kern/internal/engine/lifecycle"
	"go.trai.ch/kern/internal/engine/lock"
	"go.trai.ch/kern/internal/engine/refresh"
	"go.trai.ch/zerr"
)

// StorageFactory opens the storage provider rooted at the configured directory.
type StorageFactory func(dir string) ports.StorageProvider

// RunOptions modify Run.
type RunOptions struct {
	// Once shuts the framework down right after boot instead of waiting for ctx.
	Once bool
	// Watch updates and refreshes bundles whose content changes on disk.
	Watch bool
}

// WatcherFactory creates the watcher used by a watching run.
type WatcherFactory func() (ports.Watcher, error)

// BundleReport describes one bundle after boot.
type BundleReport struct {
	ID       domain.BundleID
	Name     string
	Version  string
	State    domain.State
	Location string
	// Wires lists "namespace:name -> provider" for the current wiring.
	Wires []string
}

// App boots a framework from the configuration and drives it.
type App struct {
	configLoader ports.ConfigLoader
	deployments  ports.DeploymentProvider
	resolver     ports.Resolver
	activators   ports.ActivatorProvider
	symbols      ports.SymbolLoader
	storage      StorageFactory
	logger       ports.Logger
	tracer       ports.Tracer
	watchers     WatcherFactory
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	deployments ports.DeploymentProvider,
	resolver ports.Resolver,
	activators ports.ActivatorProvider,
	symbols ports.SymbolLoader,
	storage StorageFactory,
	logger ports.Logger,
	tracer ports.Tracer,
) *App {
	return &App{
		configLoader: loader,
		deployments:  deployments,
		resolver:     resolver,
		activators:   activators,
		symbols:      symbols,
		storage:      storage,
		logger:       logger,
		tracer:       tracer,
	}
}

// WithWatcher sets the factory used when Run is asked to watch.
func (a *App) WithWatcher(f WatcherFactory) *App {
	a.watchers = f
	return a
}

// Run boots the framework, installs and starts the configured bundles, and
// keeps it running until ctx is done. The framework is always shut down.
func (a *App) Run(ctx context.Context, configPath string, opts RunOptions) error {
	fw, cfg, err := a.boot(ctx, configPath)
	if err != nil {
		return err
	}

	bundles, installErr := a.installAll(ctx, fw, cfg)
	startErr := a.startAll(ctx, fw, cfg, bundles)

	var watchErr error
	if !opts.Once && installErr == nil {
		a.logger.Info(fmt.Sprintf("framework running with %d bundle(s)", len(bundles)))
		if opts.Watch {
			watchErr = a.watch(ctx, fw, bundles)
		}
		<-ctx.Done()
	}

	shutdownErr := fw.Shutdown(context.WithoutCancel(ctx))
	if err := errors.Join(installErr, startErr, watchErr, shutdownErr); err != nil {
		return errors.Join(domain.ErrFrameworkBootFailed, err)
	}
	return nil
}

// Resolve installs the configured bundles, resolves them without starting
// anything and reports the outcome for every bundle, the system bundle first.
func (a *App) Resolve(ctx context.Context, configPath string) ([]BundleReport, error) {
	fw, cfg, err := a.boot(ctx, configPath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := fw.Shutdown(context.WithoutCancel(ctx)); err != nil {
			a.logger.Error(err)
		}
	}()

	bundles, err := a.installAll(ctx, fw, cfg)
	if err != nil {
		return nil, errors.Join(domain.ErrFrameworkBootFailed, err)
	}
	if !fw.ResolveBundles(ctx, bundles...) {
		a.logger.Warn("some bundles could not be resolved")
	}

	reports := make([]BundleReport, 0, len(bundles)+1)
	for _, b := range fw.Bundles() {
		reports = append(reports, report(fw, b))
	}
	return reports, nil
}

func (a *App) boot(ctx context.Context, configPath string) (*lifecycle.Framework, *domain.FrameworkConfig, error) {
	cfg, err := a.configLoader.Load(configPath)
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to load configuration")
	}

	storage := a.storage(cfg.StorageDir)
	policy, err := refresh.NewFactory(cfg.RefreshPolicy, a.deployments)
	if err != nil {
		return nil, nil, errors.Join(domain.ErrFrameworkBootFailed, err)
	}

	locks := lock.NewManager(cfg.LockTimeout, a.logger)
	fw, err := lifecycle.New(lifecycle.Options{
		Locks:          locks,
		Environment:    environment.NewCoordinator(locks, a.resolver, a.logger),
		Deployments:    a.deployments,
		Storage:        storage,
		Activators:     a.activators,
		Symbols:        a.symbols,
		Logger:         a.logger,
		Tracer:         a.tracer,
		RefreshPolicy:  policy,
		SystemPackages: cfg.SystemPackages,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := fw.Init(ctx); err != nil {
		return nil, nil, err
	}
	return fw, cfg, nil
}

// installAll installs every configured bundle, continuing past failures.
func (a *App) installAll(ctx context.Context, fw *lifecycle.Framework, cfg *domain.FrameworkConfig) ([]*domain.Bundle, error) {
	var bundles []*domain.Bundle
	var errs []error
	for _, entry := range cfg.Bundles {
		b, err := a.install(ctx, fw, entry.Location)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		bundles = append(bundles, b)
	}
	return bundles, errors.Join(errs...)
}

func (a *App) install(ctx context.Context, fw *lifecycle.Framework, location string) (*domain.Bundle, error) {
	d, err := a.deploy(ctx, location)
	if err != nil {
		return nil, err
	}
	return fw.Install(ctx, d)
}

func (a *App) deploy(ctx context.Context, location string) (domain.Deployment, error) {
	content, err := a.deployments.Open(ctx, location)
	if err != nil {
		return domain.Deployment{}, err
	}
	defer func() { _ = content.Close() }()

	return a.deployments.CreateDeployment(ctx, location, content)
}

// startAll starts the bundles whose entry asks for it and those that were
// persistently started in an earlier run. Failures are logged and returned
// together once every bundle has been tried.
func (a *App) startAll(ctx context.Context, fw *lifecycle.Framework, cfg *domain.FrameworkConfig, bundles []*domain.Bundle) error {
	fw.ResolveBundles(ctx, bundles...)

	var errs []error
	for _, b := range bundles {
		if b.IsFragment() {
			continue
		}
		var entry domain.BundleEntry
		if idx := slices.IndexFunc(cfg.Bundles, func(e domain.BundleEntry) bool { return e.Location == b.Location() }); idx >= 0 {
			entry = cfg.Bundles[idx]
		}
		if !entry.Start && !b.AutoStart() {
			continue
		}
		if err := fw.Start(ctx, b, lifecycle.StartOptions{UseActivationPolicy: entry.Lazy || !entry.Start}); err != nil {
			a.logger.Error(err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func report(fw *lifecycle.Framework, b *domain.Bundle) BundleReport {
	r := BundleReport{
		ID:       b.ID(),
		Name:     b.SymbolicName(),
		Version:  b.Version().String(),
		State:    b.State(),
		Location: b.Location(),
	}
	w, ok := fw.Wiring(b)
	if !ok {
		return r
	}
	for _, wire := range w.RequiredWires("") {
		provider := "?"
		if rev, ok := wire.Provider.(*domain.Revision); ok {
			provider = rev.String()
		}
		r.Wires = append(r.Wires, fmt.Sprintf("%s:%s -> %s", wire.Requirement.Namespace, wire.Requirement.Name, provider))
	}
	return r
}
