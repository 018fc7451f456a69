package runtime

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kern/internal/adapters/logger"
	"go.trai.ch/kern/internal/core/ports"
)

// NodeID is the unique identifier for the runtime Graft node.
const NodeID graft.ID = "adapter.runtime"

// LogActivatorName is the name the built-in log activator is registered under.
const LogActivatorName = "log"

func init() {
	graft.Register(graft.Node[*Registry]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (*Registry, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			r := New()
			r.RegisterActivator(LogActivatorName, NewLogActivator(log))
			return r, nil
		},
	})
}
