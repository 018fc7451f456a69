// Package environment implements the framework-wide resolution graph and the
// coordinator that serializes its mutation against concurrent resolution.
package environment

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.trai.ch/kern/internal/core/domain"
	"go.trai.ch/kern/internal/core/ports"
	"go.trai.ch/kern/internal/engine/lock"
	"go.trai.ch/zerr"
)

var _ ports.Environment = (*Coordinator)(nil)

// Coordinator owns the environment: every installed resource, and the
// wiring of every resolved one. All mutation happens under the lock manager.
type Coordinator struct {
	locks    *lock.Manager
	resolver ports.Resolver
	logger   ports.Logger

	// uninstallMu admits at most one uninstall at a time.
	uninstallMu sync.Mutex

	mu        sync.RWMutex
	resources []domain.Resource
	wirings   map[domain.Resource]domain.Wiring
}

// NewCoordinator creates an empty environment.
func NewCoordinator(locks *lock.Manager, resolver ports.Resolver, logger ports.Logger) *Coordinator {
	return &Coordinator{
		locks:    locks,
		resolver: resolver,
		logger:   logger,
		wirings:  make(map[domain.Resource]domain.Wiring),
	}
}

// InstallResources adds bundle revisions to the environment.
// Every resource is validated before anything is mutated.
func (c *Coordinator) InstallResources(ctx context.Context, resources ...domain.Resource) error {
	bundles, err := bundlesOf(resources)
	if err != nil {
		return err
	}

	_, lc, err := c.locks.LockItems(ctx, domain.MethodInstall, bundles...)
	if err != nil {
		return err
	}
	defer c.locks.UnlockItems(lc)

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range resources {
		if slices.Contains(c.resources, r) {
			continue
		}
		c.resources = append(c.resources, r)
	}
	return nil
}

// UninstallResources removes bundle revisions and their wirings from the environment.
// It returns the number of resources that were actually present.
func (c *Coordinator) UninstallResources(ctx context.Context, resources ...domain.Resource) (int, error) {
	bundles, err := bundlesOf(resources)
	if err != nil {
		return 0, err
	}

	_, lc, err := c.locks.LockItems(ctx, domain.MethodUninstall, bundles...)
	if err != nil {
		return 0, err
	}
	defer c.locks.UnlockItems(lc)

	// Taken only while the wiring lock is held, so it never orders against it.
	c.uninstallMu.Lock()
	defer c.uninstallMu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for _, r := range resources {
		idx := slices.Index(c.resources, r)
		if idx < 0 {
			continue
		}
		c.resources = slices.Delete(c.resources, idx, idx+1)
		delete(c.wirings, r)
		removed++
	}
	return removed, nil
}

// Resolve asks the resolver for wires and applies the result atomically.
// The caller is expected to hold the RESOLVE lock set; it is re-entered here.
func (c *Coordinator) Resolve(
	ctx context.Context,
	mandatory, optional []domain.Resource,
) (map[domain.Resource]domain.Wiring, error) {
	bundles, err := bundlesOf(append(slices.Clone(mandatory), optional...))
	if err != nil {
		return nil, err
	}

	ctx, lc, err := c.locks.LockItems(ctx, domain.MethodResolve, bundles...)
	if err != nil {
		return nil, err
	}
	defer c.locks.UnlockItems(lc)

	result, err := c.resolver.Resolve(ctx, c, mandatory, optional)
	if err != nil {
		return nil, errors.Join(domain.ErrResolutionFailed, err)
	}

	if err := c.validateResult(result); err != nil {
		return nil, err
	}

	provided := make(map[domain.Resource][]domain.Wire)
	for _, wires := range result {
		for _, w := range wires {
			provided[w.Provider] = append(provided[w.Provider], w)
		}
	}

	wirings := make(map[domain.Resource]domain.Wiring, len(result))
	for r, wires := range result {
		wirings[r] = c.CreateWiring(r, wires, provided[r])
	}

	c.mu.Lock()
	for r, w := range wirings {
		c.wirings[r] = w
	}
	c.mu.Unlock()

	c.logger.Info(fmt.Sprintf("resolved %d resource(s)", len(wirings)))
	return wirings, nil
}

// validateResult checks every wire points at installed resources and that
// resources already wired are not wired again.
func (c *Coordinator) validateResult(result map[domain.Resource][]domain.Wire) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for r, wires := range result {
		if !slices.Contains(c.resources, r) {
			return zerr.With(zerr.Wrap(domain.ErrInvalidWiring, "requirer not installed"), "resource", describe(r))
		}
		if _, wired := c.wirings[r]; wired {
			return zerr.With(zerr.Wrap(domain.ErrInvalidWiring, "resource already wired"), "resource", describe(r))
		}
		for _, w := range wires {
			if w.Requirer != r {
				return zerr.With(zerr.Wrap(domain.ErrInvalidWiring, "wire requirer mismatch"), "resource", describe(r))
			}
			if !slices.Contains(c.resources, w.Provider) {
				return zerr.With(zerr.Wrap(domain.ErrInvalidWiring, "provider not installed"), "provider", describe(w.Provider))
			}
		}
	}
	return nil
}

// CreateWiring builds the immutable wiring for a resource, choosing the
// representation by resource kind.
func (c *Coordinator) CreateWiring(r domain.Resource, required, provided []domain.Wire) domain.Wiring {
	if rev, ok := r.(*domain.Revision); ok {
		return domain.NewBundleWiring(rev, required, provided)
	}
	return domain.NewResourceWiring(r, required, provided)
}

// Unwire drops the wirings of the given resources while keeping them installed.
func (c *Coordinator) Unwire(ctx context.Context, resources ...domain.Resource) error {
	bundles, err := bundlesOf(resources)
	if err != nil {
		return err
	}

	_, lc, err := c.locks.LockItems(ctx, domain.MethodRefresh, bundles...)
	if err != nil {
		return err
	}
	defer c.locks.UnlockItems(lc)

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range resources {
		delete(c.wirings, r)
	}
	return nil
}

// Resources implements ports.Environment.
func (c *Coordinator) Resources() []domain.Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.resources)
}

// Contains reports whether the resource is installed.
func (c *Coordinator) Contains(r domain.Resource) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Contains(c.resources, r)
}

// Wiring implements ports.Environment.
func (c *Coordinator) Wiring(r domain.Resource) (domain.Wiring, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	w, ok := c.wirings[r]
	return w, ok
}

// FindProviders implements ports.Environment.
func (c *Coordinator) FindProviders(req domain.Requirement) []ports.Candidate {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []ports.Candidate
	for _, r := range c.resources {
		for _, capability := range r.Capabilities(req.Namespace) {
			if req.Matches(capability) {
				out = append(out, ports.Candidate{Resource: r, Capability: capability})
			}
		}
	}
	return out
}

// Dependents returns the resources whose current wiring has a wire to one of the providers.
func (c *Coordinator) Dependents(providers ...domain.Resource) []domain.Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []domain.Resource
	for _, r := range c.resources {
		w, ok := c.wirings[r]
		if !ok || slices.Contains(providers, r) {
			continue
		}
		for _, wire := range w.RequiredWires("") {
			if slices.Contains(providers, wire.Provider) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// bundlesOf returns the owning bundle of every resource, failing if any
// resource is not a revision with a live bundle.
func bundlesOf(resources []domain.Resource) ([]domain.Lockable, error) {
	bundles := make([]domain.Lockable, 0, len(resources))
	for _, r := range resources {
		rev, ok := r.(*domain.Revision)
		if !ok || rev == nil || rev.Bundle() == nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrNotBundleResource, "reject resource"), "resource", describe(r))
		}
		if rev.Bundle().State() == domain.StateUninstalled {
			return nil, zerr.With(zerr.Wrap(domain.ErrNotBundleResource, "bundle uninstalled"), "resource", describe(r))
		}
		bundles = append(bundles, rev.Bundle())
	}
	return bundles, nil
}

func describe(r domain.Resource) string {
	if s, ok := r.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", r)
}
