package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kern/internal/adapters/config"     //nolint:depguard // Wired in app layer
	"go.trai.ch/kern/internal/adapters/deployment" //nolint:depguard // Wired in app layer
	"go.trai.ch/kern/internal/adapters/logger"     //nolint:depguard // Wired in app layer
	"go.trai.ch/kern/internal/adapters/resolver"   //nolint:depguard // Wired in app layer
	"go.trai.ch/kern/internal/adapters/runtime"    //nolint:depguard // Wired in app layer
	"go.trai.ch/kern/internal/adapters/telemetry"  //nolint:depguard // Wired in app layer
	"go.trai.ch/kern/internal/adapters/watcher"    //nolint:depguard // Wired in app layer
	"go.trai.ch/kern/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			deployment.NodeID,
			resolver.NodeID,
			runtime.NodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
			watcher.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			config.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	deployments, err := graft.Dep[ports.DeploymentProvider](ctx)
	if err != nil {
		return nil, err
	}

	res, err := graft.Dep[ports.Resolver](ctx)
	if err != nil {
		return nil, err
	}

	registry, err := graft.Dep[*runtime.Registry](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	watchers, err := graft.Dep[watcher.Factory](ctx)
	if err != nil {
		return nil, err
	}

	store := func(dir string) ports.StorageProvider { return deployment.NewStore(dir) }
	return New(loader, deployments, res, registry, registry, store, log, tracer).
		WithWatcher(WatcherFactory(watchers)), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:          app,
		Logger:       log,
		ConfigLoader: loader,
	}, nil
}
