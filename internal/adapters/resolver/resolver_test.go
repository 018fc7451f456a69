package resolver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kern/internal/adapters/resolver"
	"go.trai.ch/kern/internal/core/domain"
	"go.trai.ch/kern/internal/core/ports"
	"go.trai.ch/kern/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

// fakeEnv backs a MockEnvironment with a fixed resource list.
func fakeEnv(ctrl *gomock.Controller, wired map[domain.Resource]domain.Wiring, resources ...domain.Resource) *mocks.MockEnvironment {
	env := mocks.NewMockEnvironment(ctrl)
	env.EXPECT().Resources().Return(resources).AnyTimes()
	env.EXPECT().Wiring(gomock.Any()).DoAndReturn(func(r domain.Resource) (domain.Wiring, bool) {
		w, ok := wired[r]
		return w, ok
	}).AnyTimes()
	env.EXPECT().FindProviders(gomock.Any()).DoAndReturn(func(req domain.Requirement) []ports.Candidate {
		var out []ports.Candidate
		for _, r := range resources {
			for _, c := range r.Capabilities(req.Namespace) {
				if req.Matches(c) {
					out = append(out, ports.Candidate{Resource: r, Capability: c})
				}
			}
		}
		return out
	}).AnyTimes()
	return env
}

func pkg(name string) domain.Capability {
	return domain.Capability{Namespace: domain.NamespacePackage, Name: name, Version: domain.MustParseVersion("1.0.0")}
}

func imp(name string, optional bool) domain.Requirement {
	return domain.Requirement{Namespace: domain.NamespacePackage, Name: name, Optional: optional}
}

func TestResolver_TransitivePullIn(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	a := &domain.PlainResource{Reqs: []domain.Requirement{imp("b.api", false)}}
	b := &domain.PlainResource{Caps: []domain.Capability{pkg("b.api")}, Reqs: []domain.Requirement{imp("c.api", false)}}
	c := &domain.PlainResource{Caps: []domain.Capability{pkg("c.api")}}
	env := fakeEnv(ctrl, nil, a, b, c)

	result, err := resolver.New().Resolve(context.Background(), env, []domain.Resource{a}, nil)
	require.NoError(t, err)

	require.Len(t, result, 3)
	require.Len(t, result[a], 1)
	assert.Same(t, b, result[a][0].Provider)
	assert.Same(t, c, result[b][0].Provider)
	assert.Empty(t, result[c])
}

func TestResolver_MandatoryFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	a := &domain.PlainResource{Reqs: []domain.Requirement{imp("missing", false)}}
	env := fakeEnv(ctrl, nil, a)

	_, err := resolver.New().Resolve(context.Background(), env, []domain.Resource{a}, nil)
	require.ErrorIs(t, err, domain.ErrUnresolvedRequirement)
	assert.ErrorContains(t, err, domain.NamespacePackage+":missing")
}

func TestResolver_OptionalResourceLeftOut(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	good := &domain.PlainResource{Caps: []domain.Capability{pkg("x")}}
	bad := &domain.PlainResource{Reqs: []domain.Requirement{imp("missing", false)}}
	env := fakeEnv(ctrl, nil, good, bad)

	result, err := resolver.New().Resolve(context.Background(), env, nil, []domain.Resource{good, bad})
	require.NoError(t, err)
	assert.Contains(t, result, domain.Resource(good))
	assert.NotContains(t, result, domain.Resource(bad))
}

func TestResolver_OptionalRequirementSkipped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	a := &domain.PlainResource{Reqs: []domain.Requirement{imp("maybe", true)}}
	env := fakeEnv(ctrl, nil, a)

	result, err := resolver.New().Resolve(context.Background(), env, []domain.Resource{a}, nil)
	require.NoError(t, err)
	assert.Empty(t, result[a])
}

func TestResolver_PrefersWiredProvider(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fresh := &domain.PlainResource{Caps: []domain.Capability{pkg("x")}}
	wiredProvider := &domain.PlainResource{Caps: []domain.Capability{pkg("x")}}
	a := &domain.PlainResource{Reqs: []domain.Requirement{imp("x", false)}}
	wired := map[domain.Resource]domain.Wiring{
		wiredProvider: domain.NewResourceWiring(wiredProvider, nil, nil),
	}
	env := fakeEnv(ctrl, wired, fresh, wiredProvider, a)

	result, err := resolver.New().Resolve(context.Background(), env, []domain.Resource{a}, nil)
	require.NoError(t, err)
	assert.Same(t, wiredProvider, result[a][0].Provider)
	assert.NotContains(t, result, domain.Resource(fresh))
	assert.NotContains(t, result, domain.Resource(wiredProvider), "already wired resources are not wired again")
}

func TestResolver_FailedPullInRolledBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// a needs b.api and z; b resolves on its own, z is missing, so neither
	// a nor the pulled-in b may appear in the result.
	a := &domain.PlainResource{Reqs: []domain.Requirement{imp("b.api", false), imp("z", false)}}
	b := &domain.PlainResource{Caps: []domain.Capability{pkg("b.api")}}
	env := fakeEnv(ctrl, nil, a, b)

	result, err := resolver.New().Resolve(context.Background(), env, nil, []domain.Resource{a})
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestResolver_Cycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	a := &domain.PlainResource{Caps: []domain.Capability{pkg("a.api")}, Reqs: []domain.Requirement{imp("b.api", false)}}
	b := &domain.PlainResource{Caps: []domain.Capability{pkg("b.api")}, Reqs: []domain.Requirement{imp("a.api", false)}}
	env := fakeEnv(ctrl, nil, a, b)

	result, err := resolver.New().Resolve(context.Background(), env, []domain.Resource{a}, nil)
	require.NoError(t, err)
	assert.Same(t, b, result[a][0].Provider)
	assert.Same(t, a, result[b][0].Provider)
}

func TestResolver_CancelledContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	a := &domain.PlainResource{}
	env := fakeEnv(ctrl, nil, a)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := resolver.New().Resolve(ctx, env, []domain.Resource{a}, nil)
	require.ErrorIs(t, err, context.Canceled)
}
