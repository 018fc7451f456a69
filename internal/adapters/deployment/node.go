package deployment

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kern/internal/core/ports"
)

// NodeID is the unique identifier for the deployment provider Graft node.
const NodeID graft.ID = "adapter.deployment"

func init() {
	graft.Register(graft.Node[ports.DeploymentProvider]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.DeploymentProvider, error) {
			p, err := NewProvider(DefaultCacheSize)
			if err != nil {
				return nil, err
			}
			return p, nil
		},
	})
}
