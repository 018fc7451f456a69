package logger

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/kelseyhightower/envconfig"
	"go.trai.ch/kern/internal/core/ports"
	"go.trai.ch/zerr"
)

// NodeID is the unique identifier for the logger Graft node.
const NodeID graft.ID = "adapter.logger"

type env struct {
	Format string `envconfig:"LOG_FORMAT"`
}

func init() {
	graft.Register(graft.Node[ports.Logger]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Logger, error) {
			var e env
			if err := envconfig.Process("kern", &e); err != nil {
				return nil, zerr.Wrap(err, "read logger environment")
			}
			f, err := ParseFormat(e.Format)
			if err != nil {
				return nil, err
			}
			l := New()
			if f != FormatText {
				l.SetFormat(f)
			}
			return l, nil
		},
	})
}
