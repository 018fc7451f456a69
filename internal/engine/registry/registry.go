// Package registry tracks installed bundles and the revision chain of each one.
package registry

import (
	"slices"
	"sync"

	"go.trai.ch/kern/internal/core/domain"
	"go.trai.ch/zerr"
)

type entry struct {
	bundle     *domain.Bundle
	revisions  []*domain.Revision
	current    *domain.Revision
	generation int
}

// Registry holds bundles by id and by location, each with an ordered chain of
// revisions of which at most one is current.
type Registry struct {
	mu         sync.RWMutex
	nextID     domain.BundleID
	nextRev    domain.RevisionID
	bundles    map[domain.BundleID]*entry
	byLocation map[string]*entry
	// used holds every id handed out or registered since New.
	used map[domain.BundleID]struct{}
}

// New creates an empty registry. Id 0 is reserved for the system bundle.
func New() *Registry {
	return &Registry{
		nextID:     domain.SystemBundleID + 1,
		bundles:    make(map[domain.BundleID]*entry),
		byLocation: make(map[string]*entry),
		used:       make(map[domain.BundleID]struct{}),
	}
}

// NextBundleID allocates a fresh bundle id.
// A positive preferred id is honoured if no bundle has held it since New, so
// ids survive restarts but are never reused within one run.
func (r *Registry) NextBundleID(preferred domain.BundleID) domain.BundleID {
	r.mu.Lock()
	defer r.mu.Unlock()

	if preferred > domain.SystemBundleID {
		if _, taken := r.used[preferred]; !taken {
			if preferred >= r.nextID {
				r.nextID = preferred + 1
			}
			r.used[preferred] = struct{}{}
			return preferred
		}
	}
	id := r.nextID
	for {
		if _, taken := r.used[id]; !taken {
			break
		}
		id++
	}
	r.nextID = id + 1
	r.used[id] = struct{}{}
	return id
}

// AddBundle registers a bundle with an empty revision chain.
func (r *Registry) AddBundle(b *domain.Bundle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bundles[b.ID()]; ok {
		return zerr.With(zerr.Wrap(domain.ErrDuplicateBundle, "bundle id in use"), "bundle_id", int64(b.ID()))
	}
	if _, ok := r.byLocation[b.Location()]; ok {
		return zerr.With(zerr.Wrap(domain.ErrDuplicateBundle, "location in use"), "location", b.Location())
	}
	e := &entry{bundle: b}
	r.used[b.ID()] = struct{}{}
	r.bundles[b.ID()] = e
	r.byLocation[b.Location()] = e
	return nil
}

// Bundle returns the bundle with the given id.
func (r *Registry) Bundle(id domain.BundleID) (*domain.Bundle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.bundles[id]
	if !ok {
		return nil, false
	}
	return e.bundle, true
}

// BundleByLocation returns the bundle installed from location.
func (r *Registry) BundleByLocation(location string) (*domain.Bundle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byLocation[location]
	if !ok {
		return nil, false
	}
	return e.bundle, true
}

// Bundles returns every registered bundle in id order.
func (r *Registry) Bundles() []*domain.Bundle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Bundle, 0, len(r.bundles))
	for _, e := range r.bundles {
		out = append(out, e.bundle)
	}
	slices.SortFunc(out, func(a, b *domain.Bundle) int {
		return int(a.ID() - b.ID())
	})
	return out
}

// Lookup returns the bundle whose current revision has the symbolic name and version.
func (r *Registry) Lookup(symbolicName string, version domain.Version) (*domain.Bundle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.bundles {
		if e.current == nil {
			continue
		}
		if e.current.SymbolicName() == symbolicName && e.current.Version().Compare(version) == 0 {
			return e.bundle, true
		}
	}
	return nil, false
}

// CreateRevision appends a new revision built from d to the bundle's chain and makes it current.
func (r *Registry) CreateRevision(b *domain.Bundle, d domain.Deployment) (*domain.Revision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.entryLocked(b)
	if err != nil {
		return nil, err
	}

	r.nextRev++
	rev := domain.NewRevision(r.nextRev, e.generation, b, d)
	e.generation++
	e.revisions = append(e.revisions, rev)
	e.current = rev
	b.SetVersion(rev.Version())
	return rev, nil
}

// Current returns the current revision of the bundle.
func (r *Registry) Current(b *domain.Bundle) (*domain.Revision, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, err := r.entryLocked(b)
	if err != nil {
		return nil, err
	}
	if e.current == nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrNoCurrentRevision, "lookup current revision"), "bundle", b.String())
	}
	return e.current, nil
}

// Revisions returns the bundle's revision chain, oldest first.
func (r *Registry) Revisions(b *domain.Bundle) []*domain.Revision {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.bundles[b.ID()]
	if !ok {
		return nil
	}
	return slices.Clone(e.revisions)
}

// ApplyRevision makes rev the current revision of its bundle, re-adding it to
// the chain if it had been removed.
func (r *Registry) ApplyRevision(rev *domain.Revision) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.entryLocked(rev.Bundle())
	if err != nil {
		return err
	}
	if !slices.Contains(e.revisions, rev) {
		e.revisions = append(e.revisions, rev)
	}
	e.current = rev
	rev.Bundle().SetVersion(rev.Version())
	return nil
}

// RemoveRevision drops rev from its bundle's chain. Removing the current
// revision leaves the bundle without one until another is created or applied.
func (r *Registry) RemoveRevision(rev *domain.Revision) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.bundles[rev.Bundle().ID()]
	if !ok {
		return
	}
	e.revisions = slices.DeleteFunc(e.revisions, func(x *domain.Revision) bool { return x == rev })
	if e.current == rev {
		e.current = nil
	}
}

// RemoveBundle forgets the bundle and returns the revisions it still had.
func (r *Registry) RemoveBundle(b *domain.Bundle) []*domain.Revision {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.bundles[b.ID()]
	if !ok || e.bundle != b {
		return nil
	}
	delete(r.bundles, b.ID())
	delete(r.byLocation, b.Location())
	return e.revisions
}

func (r *Registry) entryLocked(b *domain.Bundle) (*entry, error) {
	e, ok := r.bundles[b.ID()]
	if !ok || e.bundle != b {
		return nil, zerr.With(zerr.Wrap(domain.ErrBundleNotFound, "lookup bundle"), "bundle_id", int64(b.ID()))
	}
	return e, nil
}
