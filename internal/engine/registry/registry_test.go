package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kern/internal/core/domain"
	"go.trai.ch/kern/internal/engine/registry"
)

func deployment(name, version string) domain.Deployment {
	return domain.Deployment{
		Location: "file:" + name,
		Metadata: domain.Metadata{SymbolicName: name, Version: domain.MustParseVersion(version)},
	}
}

func addBundle(t *testing.T, r *registry.Registry, name, version string) *domain.Bundle {
	t.Helper()
	id := r.NextBundleID(0)
	b := domain.NewBundle(id, "file:"+name, name, domain.MustParseVersion(version), domain.KindHost)
	require.NoError(t, r.AddBundle(b))
	return b
}

func TestRegistry_NextBundleID(t *testing.T) {
	r := registry.New()

	assert.Equal(t, domain.BundleID(1), r.NextBundleID(0))
	assert.Equal(t, domain.BundleID(7), r.NextBundleID(7))
	assert.Equal(t, domain.BundleID(8), r.NextBundleID(0))

	b := domain.NewBundle(9, "file:x", "x", domain.EmptyVersion, domain.KindHost)
	require.NoError(t, r.AddBundle(b))
	// 9 is taken, so a fresh id is handed out instead.
	assert.Equal(t, domain.BundleID(10), r.NextBundleID(9))
}

func TestRegistry_NextBundleID_NotReusedAfterRemove(t *testing.T) {
	r := registry.New()

	id := r.NextBundleID(5)
	require.Equal(t, domain.BundleID(5), id)
	b := domain.NewBundle(id, "file:a", "a", domain.EmptyVersion, domain.KindHost)
	require.NoError(t, r.AddBundle(b))
	r.RemoveBundle(b)

	assert.Equal(t, domain.BundleID(6), r.NextBundleID(5), "removed id stays retired")

	// A preferred id below the counter is still honoured if never used.
	assert.Equal(t, domain.BundleID(3), r.NextBundleID(3))
	assert.Equal(t, domain.BundleID(7), r.NextBundleID(3))
}

func TestRegistry_AddBundle_Duplicate(t *testing.T) {
	r := registry.New()
	b := addBundle(t, r, "a", "1.0")

	err := r.AddBundle(b)
	require.ErrorIs(t, err, domain.ErrDuplicateBundle)

	other := domain.NewBundle(r.NextBundleID(0), b.Location(), "other", domain.EmptyVersion, domain.KindHost)
	require.ErrorIs(t, r.AddBundle(other), domain.ErrDuplicateBundle)
}

func TestRegistry_RevisionChain(t *testing.T) {
	r := registry.New()
	b := addBundle(t, r, "a", "1.0")

	_, err := r.Current(b)
	require.ErrorIs(t, err, domain.ErrNoCurrentRevision)

	first, err := r.CreateRevision(b, deployment("a", "1.0"))
	require.NoError(t, err)
	assert.Equal(t, 0, first.Generation())

	second, err := r.CreateRevision(b, deployment("a", "1.1"))
	require.NoError(t, err)
	assert.Equal(t, 1, second.Generation())
	assert.NotEqual(t, first.ID(), second.ID())
	assert.Equal(t, "1.1.0", b.Version().String())

	cur, err := r.Current(b)
	require.NoError(t, err)
	assert.Same(t, second, cur)
	assert.Equal(t, []*domain.Revision{first, second}, r.Revisions(b))

	found, ok := r.Lookup("a", domain.MustParseVersion("1.1"))
	require.True(t, ok)
	assert.Same(t, b, found)
	_, ok = r.Lookup("a", domain.MustParseVersion("1.0"))
	assert.False(t, ok)

	r.RemoveRevision(second)
	_, err = r.Current(b)
	require.ErrorIs(t, err, domain.ErrNoCurrentRevision)

	require.NoError(t, r.ApplyRevision(second))
	cur, err = r.Current(b)
	require.NoError(t, err)
	assert.Same(t, second, cur)

	// Generations keep counting after removals.
	third, err := r.CreateRevision(b, deployment("a", "1.2"))
	require.NoError(t, err)
	assert.Equal(t, 2, third.Generation())
}

func TestRegistry_RemoveBundle(t *testing.T) {
	r := registry.New()
	a := addBundle(t, r, "a", "1.0")
	b := addBundle(t, r, "b", "1.0")
	rev, err := r.CreateRevision(a, deployment("a", "1.0"))
	require.NoError(t, err)

	assert.Equal(t, []*domain.Bundle{a, b}, r.Bundles())

	revs := r.RemoveBundle(a)
	assert.Equal(t, []*domain.Revision{rev}, revs)

	_, ok := r.Bundle(a.ID())
	assert.False(t, ok)
	_, ok = r.BundleByLocation(a.Location())
	assert.False(t, ok)
	assert.Equal(t, []*domain.Bundle{b}, r.Bundles())

	_, err = r.CreateRevision(a, deployment("a", "1.0"))
	require.ErrorIs(t, err, domain.ErrBundleNotFound)
	assert.Nil(t, r.RemoveBundle(a))
}
