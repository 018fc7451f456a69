// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/kern/internal/core/domain"
)

// Candidate is a capability offered by a resource in the environment.
type Candidate struct {
	Resource   domain.Resource
	Capability domain.Capability
}

// Environment is the read view of the framework-wide resolution graph handed to a Resolver.
//
//go:generate go run go.uber.org/mock/mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type Environment interface {
	// Resources returns every installed resource in installation order.
	Resources() []domain.Resource
	// FindProviders returns the installed capabilities matching the requirement.
	FindProviders(req domain.Requirement) []Candidate
	// Wiring returns the current wiring of a resource, if it is resolved.
	Wiring(r domain.Resource) (domain.Wiring, bool)
}

// Resolver computes wires for resources against an environment.
//
// Implementations must only return wires whose requirer is one of the
// mandatory or optional resources, or a resource pulled in transitively to
// satisfy them. Optional resources that cannot be resolved are left out of the
// result; an unresolvable mandatory resource is an error.
type Resolver interface {
	// Resolve returns the required wires of every resource it resolved.
	Resolve(
		ctx context.Context,
		env Environment,
		mandatory, optional []domain.Resource,
	) (map[domain.Resource][]domain.Wire, error)
}
