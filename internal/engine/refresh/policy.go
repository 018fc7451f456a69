// Package refresh implements the strategies applied to a bundle's current
// revision when the bundle is refreshed.
package refresh

import (
	"context"
	"errors"

	"go.trai.ch/kern/internal/core/domain"
	"go.trai.ch/kern/internal/core/ports"
	"go.trai.ch/zerr"
)

// Host is the part of the lifecycle a refresh policy operates on.
// Calls are made within the caller's REFRESH lock context.
//
//go:generate go run go.uber.org/mock/mockgen -source=policy.go -destination=mocks/mock_policy.go -package=mocks
type Host interface {
	// CurrentRevision returns the bundle's current revision.
	CurrentRevision(b *domain.Bundle) (*domain.Revision, error)
	// RemoveRevision drops a revision from the environment and the registry
	// without running any lifecycle hooks.
	RemoveRevision(ctx context.Context, rev *domain.Revision) error
	// InstallRevision creates a new current revision for the bundle and installs it into the environment.
	InstallRevision(ctx context.Context, b *domain.Bundle, d domain.Deployment) (*domain.Revision, error)
	// ApplyRevision makes an existing revision current again and ensures it is installed.
	ApplyRevision(ctx context.Context, rev *domain.Revision) error
}

// Policy refreshes one bundle at a time. InitBundleRefresh captures the
// current revision, RefreshCurrentRevision acts on it and EndBundleRefresh
// releases the captured state.
type Policy interface {
	InitBundleRefresh(b *domain.Bundle) error
	// RefreshCurrentRevision refreshes the captured revision and returns the revision now current.
	RefreshCurrentRevision(ctx context.Context) (*domain.Revision, error)
	// RefreshRevision refreshes the given revision of the captured bundle.
	RefreshRevision(ctx context.Context, rev *domain.Revision) (*domain.Revision, error)
	EndBundleRefresh(b *domain.Bundle)
}

// Factory creates the policy used for a single bundle refresh.
type Factory func(host Host) Policy

// NewFactory returns the factory for the named policy.
func NewFactory(name string, deployments ports.DeploymentProvider) (Factory, error) {
	switch name {
	case domain.RefreshPolicyKeep:
		return func(host Host) Policy { return NewKeep(host) }, nil
	case "", domain.RefreshPolicyRecreate:
		return func(host Host) Policy { return NewRecreate(host, deployments) }, nil
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownRefreshPolicy, "select refresh policy"), "policy", name)
	}
}

// staged is the transient state shared by both policies.
type staged struct {
	host     Host
	bundle   *domain.Bundle
	revision *domain.Revision
}

func (s *staged) InitBundleRefresh(b *domain.Bundle) error {
	rev, err := s.host.CurrentRevision(b)
	if err != nil {
		return err
	}
	s.bundle = b
	s.revision = rev
	return nil
}

func (s *staged) EndBundleRefresh(_ *domain.Bundle) {
	s.bundle = nil
	s.revision = nil
}

func (s *staged) captured() (*domain.Revision, error) {
	if s.revision == nil {
		return nil, domain.ErrRefreshNotStarted
	}
	return s.revision, nil
}

func (s *staged) check(rev *domain.Revision) error {
	if s.bundle == nil {
		return domain.ErrRefreshNotStarted
	}
	if rev.Bundle() != s.bundle {
		return zerr.With(zerr.Wrap(domain.ErrBundleNotFound, "revision of another bundle"), "revision", rev.String())
	}
	return nil
}

// Keep re-applies the captured revision without reading the backing content.
// The revision object is unchanged by a refresh.
type Keep struct {
	staged
}

// NewKeep creates a Keep policy.
func NewKeep(host Host) *Keep {
	return &Keep{staged: staged{host: host}}
}

// RefreshCurrentRevision implements Policy.
func (k *Keep) RefreshCurrentRevision(ctx context.Context) (*domain.Revision, error) {
	rev, err := k.captured()
	if err != nil {
		return nil, err
	}
	return k.RefreshRevision(ctx, rev)
}

// RefreshRevision implements Policy.
func (k *Keep) RefreshRevision(ctx context.Context, rev *domain.Revision) (*domain.Revision, error) {
	if err := k.check(rev); err != nil {
		return nil, err
	}
	if err := k.host.ApplyRevision(ctx, rev); err != nil {
		return nil, zerr.Wrap(err, "re-apply revision")
	}
	return rev, nil
}

// Recreate rebuilds the revision from its backing content. On a content or
// identity failure the old revision is left in place; on an install failure
// the old revision is re-applied.
type Recreate struct {
	staged
	deployments ports.DeploymentProvider
}

// NewRecreate creates a Recreate policy reading content through deployments.
func NewRecreate(host Host, deployments ports.DeploymentProvider) *Recreate {
	return &Recreate{staged: staged{host: host}, deployments: deployments}
}

// RefreshCurrentRevision implements Policy.
func (r *Recreate) RefreshCurrentRevision(ctx context.Context) (*domain.Revision, error) {
	rev, err := r.captured()
	if err != nil {
		return nil, err
	}
	return r.RefreshRevision(ctx, rev)
}

// RefreshRevision implements Policy.
func (r *Recreate) RefreshRevision(ctx context.Context, rev *domain.Revision) (*domain.Revision, error) {
	if err := r.check(rev); err != nil {
		return nil, err
	}

	d, err := r.reopen(ctx, rev)
	if err != nil {
		return nil, err
	}

	md := d.Metadata
	if md.SymbolicName != rev.SymbolicName() || md.Version.Compare(rev.Version()) != 0 {
		var identityErr error = zerr.Wrap(domain.ErrRefreshIdentity, "compare refreshed metadata")
		identityErr = zerr.With(identityErr, "want", rev.SymbolicName()+":"+rev.Version().String())
		return nil, zerr.With(identityErr, "got", md.SymbolicName+":"+md.Version.String())
	}
	d.AutoStart = false

	if err := r.host.RemoveRevision(ctx, rev); err != nil {
		return nil, zerr.Wrap(err, "remove old revision")
	}

	fresh, err := r.host.InstallRevision(ctx, rev.Bundle(), d)
	if err != nil {
		if restoreErr := r.host.ApplyRevision(ctx, rev); restoreErr != nil {
			return nil, errors.Join(err, zerr.Wrap(restoreErr, "restore old revision"))
		}
		return nil, zerr.Wrap(err, "install recreated revision")
	}
	r.revision = fresh
	return fresh, nil
}

func (r *Recreate) reopen(ctx context.Context, rev *domain.Revision) (domain.Deployment, error) {
	content, err := r.deployments.Open(ctx, rev.Location())
	if err != nil {
		return domain.Deployment{}, contentError(err, rev)
	}
	defer func() { _ = content.Close() }()

	d, err := r.deployments.CreateDeployment(ctx, rev.Location(), content)
	if err != nil {
		return domain.Deployment{}, contentError(err, rev)
	}
	return d, nil
}

func contentError(err error, rev *domain.Revision) error {
	return zerr.With(errors.Join(domain.ErrRefreshContent, err), "location", rev.Location())
}
