package ports

import (
	"context"

	"go.trai.ch/kern/internal/core/domain"
)

// Activator is the code run when a bundle starts and stops.
//
//go:generate go run go.uber.org/mock/mockgen -source=runtime.go -destination=mocks/mock_runtime.go -package=mocks
type Activator interface {
	Start(ctx context.Context, b *domain.Bundle) error
	Stop(ctx context.Context, b *domain.Bundle) error
}

// ActivatorProvider looks up the activator declared by a revision.
type ActivatorProvider interface {
	// Activator returns the activator for the revision. Returns nil, nil if the revision declares none.
	Activator(rev *domain.Revision) (Activator, error)
}

// SymbolLoader loads named symbols from a revision's content.
// Nested loads must pass the ctx they were given so activation tracking is shared.
type SymbolLoader interface {
	LoadSymbol(ctx context.Context, rev *domain.Revision, name string) (any, error)
}
