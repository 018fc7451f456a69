// Package resolver implements a first-match resolver for ports.Resolver.
package resolver

import (
	"context"
	"fmt"
	"slices"

	"go.trai.ch/kern/internal/core/domain"
	"go.trai.ch/kern/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Resolver = (*Resolver)(nil)

// Resolver wires every requirement to the first matching capability, preferring
// providers that are already resolved. Unresolved providers are pulled in
// transitively.
type Resolver struct{}

// New creates a Resolver.
func New() *Resolver {
	return &Resolver{}
}

// Resolve implements ports.Resolver.
func (r *Resolver) Resolve(
	ctx context.Context,
	env ports.Environment,
	mandatory, optional []domain.Resource,
) (map[domain.Resource][]domain.Wire, error) {
	s := &session{
		env:      env,
		result:   make(map[domain.Resource][]domain.Wire),
		visiting: make(map[domain.Resource]bool),
	}

	for _, res := range mandatory {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.resolve(res); err != nil {
			return nil, err
		}
	}
	for _, res := range optional {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// Optional resources that cannot be wired are left out.
		_ = s.resolve(res)
	}
	return s.result, nil
}

type session struct {
	env      ports.Environment
	result   map[domain.Resource][]domain.Wire
	added    []domain.Resource
	visiting map[domain.Resource]bool
}

// resolve wires res and anything it pulls in. On failure every resource added
// during the attempt is rolled back.
func (s *session) resolve(res domain.Resource) error {
	if s.resolved(res) || s.visiting[res] {
		return nil
	}

	mark := len(s.added)
	s.visiting[res] = true
	defer delete(s.visiting, res)

	var wires []domain.Wire
	for _, req := range res.Requirements("") {
		wire, ok := s.match(res, req)
		if ok {
			wires = append(wires, wire)
			continue
		}
		if req.Optional {
			continue
		}
		s.rollback(mark)
		var err error = zerr.Wrap(domain.ErrUnresolvedRequirement, fmt.Sprintf("resolve requirement %s", req))
		err = zerr.With(err, "resource", describe(res))
		return zerr.With(err, "requirement", req.String())
	}

	s.result[res] = wires
	s.added = append(s.added, res)
	return nil
}

func (s *session) match(requirer domain.Resource, req domain.Requirement) (domain.Wire, bool) {
	candidates := s.env.FindProviders(req)
	slices.SortStableFunc(candidates, func(a, b ports.Candidate) int {
		return rank(s, a) - rank(s, b)
	})

	for _, c := range candidates {
		if c.Resource == requirer {
			continue
		}
		if !s.resolved(c.Resource) && !s.visiting[c.Resource] {
			if err := s.resolve(c.Resource); err != nil {
				continue
			}
		}
		return domain.Wire{
			Requirer:    requirer,
			Requirement: req,
			Provider:    c.Resource,
			Capability:  c.Capability,
		}, true
	}
	return domain.Wire{}, false
}

// rank orders wired providers before providers resolved in this session,
// and both before unresolved ones.
func rank(s *session, c ports.Candidate) int {
	if _, ok := s.env.Wiring(c.Resource); ok {
		return 0
	}
	if _, ok := s.result[c.Resource]; ok {
		return 1
	}
	return 2
}

func (s *session) resolved(res domain.Resource) bool {
	if _, ok := s.result[res]; ok {
		return true
	}
	_, ok := s.env.Wiring(res)
	return ok
}

func (s *session) rollback(mark int) {
	for _, res := range s.added[mark:] {
		delete(s.result, res)
	}
	s.added = s.added[:mark]
}

func describe(res domain.Resource) string {
	if s, ok := res.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", res)
}
