package ports

import (
	"context"
	"io"

	"go.trai.ch/kern/internal/core/domain"
)

// DeploymentProvider supplies the backing content of bundles.
//
//go:generate go run go.uber.org/mock/mockgen -source=deployment.go -destination=mocks/mock_deployment.go -package=mocks
type DeploymentProvider interface {
	// Open returns the backing content stream for the location.
	Open(ctx context.Context, location string) (io.ReadCloser, error)
	// CreateDeployment builds a deployment from content read from location.
	CreateDeployment(ctx context.Context, location string, content io.Reader) (domain.Deployment, error)
}

// StorageProvider persists storage state records keyed by bundle location.
type StorageProvider interface {
	// Load returns the record for location. Returns nil, nil if not found.
	Load(location string) (*domain.StorageState, error)
	// Save stores the record.
	Save(state domain.StorageState) error
	// Delete removes the record for location. Deleting a missing record is not an error.
	Delete(location string) error
}
