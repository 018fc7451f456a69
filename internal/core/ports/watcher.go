package ports

import (
	"context"
	"iter"
)

// Watcher reports changes to bundle content on disk.
//
//go:generate go run go.uber.org/mock/mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type Watcher interface {
	// Watch starts reporting changes to the given locations until ctx is done.
	Watch(ctx context.Context, locations []string) error
	// Changes yields batches of changed locations. It ends once watching stops.
	Changes() iter.Seq[[]string]
	// Close releases the watcher.
	Close() error
}
