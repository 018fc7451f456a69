package refresh_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kern/internal/core/domain"
	portmocks "go.trai.ch/kern/internal/core/ports/mocks"
	"go.trai.ch/kern/internal/engine/refresh"
	"go.trai.ch/kern/internal/engine/refresh/mocks"
	"go.uber.org/mock/gomock"
)

func fixture() (*domain.Bundle, *domain.Revision) {
	b := domain.NewBundle(3, "file:a", "a", domain.MustParseVersion("1.0"), domain.KindHost)
	rev := domain.NewRevision(10, 0, b, domain.Deployment{
		Location: "file:a",
		Metadata: domain.Metadata{SymbolicName: "a", Version: domain.MustParseVersion("1.0")},
	})
	return b, rev
}

func TestNewFactory(t *testing.T) {
	ctrl := gomock.NewController(t)
	host := mocks.NewMockHost(ctrl)

	keep, err := refresh.NewFactory(domain.RefreshPolicyKeep, nil)
	require.NoError(t, err)
	assert.IsType(t, &refresh.Keep{}, keep(host))

	recreate, err := refresh.NewFactory(domain.RefreshPolicyRecreate, nil)
	require.NoError(t, err)
	assert.IsType(t, &refresh.Recreate{}, recreate(host))

	_, err = refresh.NewFactory("rebuild", nil)
	require.ErrorIs(t, err, domain.ErrUnknownRefreshPolicy)
}

func TestKeep_PreservesRevisionIdentity(t *testing.T) {
	ctrl := gomock.NewController(t)
	host := mocks.NewMockHost(ctrl)
	b, rev := fixture()

	host.EXPECT().CurrentRevision(b).Return(rev, nil)
	host.EXPECT().ApplyRevision(gomock.Any(), rev).Return(nil)

	p := refresh.NewKeep(host)
	require.NoError(t, p.InitBundleRefresh(b))
	got, err := p.RefreshCurrentRevision(context.Background())
	require.NoError(t, err)
	assert.Same(t, rev, got)
	p.EndBundleRefresh(b)

	_, err = p.RefreshCurrentRevision(context.Background())
	require.ErrorIs(t, err, domain.ErrRefreshNotStarted)
}

func TestRecreate_NewRevisionSameIdentity(t *testing.T) {
	ctrl := gomock.NewController(t)
	host := mocks.NewMockHost(ctrl)
	deployments := portmocks.NewMockDeploymentProvider(ctrl)
	b, rev := fixture()

	fresh := domain.NewRevision(11, 1, b, rev.Deployment())

	host.EXPECT().CurrentRevision(b).Return(rev, nil)
	deployments.EXPECT().Open(gomock.Any(), "file:a").Return(io.NopCloser(strings.NewReader("content")), nil)
	deployments.EXPECT().CreateDeployment(gomock.Any(), "file:a", gomock.Any()).
		Return(domain.Deployment{Location: "file:a", Metadata: rev.Metadata(), AutoStart: true}, nil)
	gomock.InOrder(
		host.EXPECT().RemoveRevision(gomock.Any(), rev).Return(nil),
		host.EXPECT().InstallRevision(gomock.Any(), b, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *domain.Bundle, d domain.Deployment) (*domain.Revision, error) {
				assert.False(t, d.AutoStart)
				return fresh, nil
			}),
	)

	p := refresh.NewRecreate(host, deployments)
	require.NoError(t, p.InitBundleRefresh(b))
	got, err := p.RefreshCurrentRevision(context.Background())
	require.NoError(t, err)
	p.EndBundleRefresh(b)

	assert.NotSame(t, rev, got)
	assert.Equal(t, rev.SymbolicName(), got.SymbolicName())
	assert.Equal(t, rev.Version(), got.Version())
	assert.Same(t, b, got.Bundle())
}

func TestRecreate_ReopenFailureKeepsOldRevision(t *testing.T) {
	ctrl := gomock.NewController(t)
	host := mocks.NewMockHost(ctrl)
	deployments := portmocks.NewMockDeploymentProvider(ctrl)
	b, rev := fixture()

	cause := errors.New("descriptor vanished")
	host.EXPECT().CurrentRevision(b).Return(rev, nil)
	deployments.EXPECT().Open(gomock.Any(), "file:a").Return(nil, cause)
	// No RemoveRevision or InstallRevision expected.

	p := refresh.NewRecreate(host, deployments)
	require.NoError(t, p.InitBundleRefresh(b))
	_, err := p.RefreshCurrentRevision(context.Background())
	require.ErrorIs(t, err, domain.ErrRefreshContent)
	require.ErrorIs(t, err, cause)
}

func TestRecreate_IdentityMismatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	host := mocks.NewMockHost(ctrl)
	deployments := portmocks.NewMockDeploymentProvider(ctrl)
	b, rev := fixture()

	host.EXPECT().CurrentRevision(b).Return(rev, nil)
	deployments.EXPECT().Open(gomock.Any(), gomock.Any()).Return(io.NopCloser(strings.NewReader("")), nil)
	deployments.EXPECT().CreateDeployment(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.Deployment{Metadata: domain.Metadata{SymbolicName: "a", Version: domain.MustParseVersion("2.0")}}, nil)

	p := refresh.NewRecreate(host, deployments)
	require.NoError(t, p.InitBundleRefresh(b))
	_, err := p.RefreshCurrentRevision(context.Background())
	require.ErrorIs(t, err, domain.ErrRefreshIdentity)
}

func TestRecreate_InstallFailureRestoresOldRevision(t *testing.T) {
	ctrl := gomock.NewController(t)
	host := mocks.NewMockHost(ctrl)
	deployments := portmocks.NewMockDeploymentProvider(ctrl)
	b, rev := fixture()

	installErr := errors.New("environment rejected revision")
	host.EXPECT().CurrentRevision(b).Return(rev, nil)
	deployments.EXPECT().Open(gomock.Any(), gomock.Any()).Return(io.NopCloser(strings.NewReader("")), nil)
	deployments.EXPECT().CreateDeployment(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(rev.Deployment(), nil)
	gomock.InOrder(
		host.EXPECT().RemoveRevision(gomock.Any(), rev).Return(nil),
		host.EXPECT().InstallRevision(gomock.Any(), b, gomock.Any()).Return(nil, installErr),
		host.EXPECT().ApplyRevision(gomock.Any(), rev).Return(nil),
	)

	p := refresh.NewRecreate(host, deployments)
	require.NoError(t, p.InitBundleRefresh(b))
	_, err := p.RefreshCurrentRevision(context.Background())
	require.ErrorIs(t, err, installErr)
}

func TestPolicy_RejectsRevisionOfOtherBundle(t *testing.T) {
	ctrl := gomock.NewController(t)
	host := mocks.NewMockHost(ctrl)
	b, rev := fixture()
	_, other := fixture()

	host.EXPECT().CurrentRevision(b).Return(rev, nil)

	p := refresh.NewKeep(host)
	require.NoError(t, p.InitBundleRefresh(b))
	_, err := p.RefreshRevision(context.Background(), other)
	require.ErrorIs(t, err, domain.ErrBundleNotFound)
}
