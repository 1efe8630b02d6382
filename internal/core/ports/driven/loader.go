package driven

import (
	"context"

	"github.com/custodia-labs/docdup-cli/internal/core/domain"
)

// DocumentLoader supplies documents to the analysis services.
// Implementations walk a filesystem tree, fetch from a remote repository,
// and so on. Document IDs must be unique within one load.
type DocumentLoader interface {
	// Load returns all documents the loader can see.
	Load(ctx context.Context) ([]domain.Document, error)

	// Name identifies the loader for logging and run metadata.
	Name() string
}

// WatchableLoader is a DocumentLoader that can report content changes.
// Optional: loaders that cannot watch simply don't implement it.
type WatchableLoader interface {
	DocumentLoader

	// Watch blocks until the underlying source changes or ctx is done.
	// It returns nil on a change and ctx.Err() on cancellation.
	Watch(ctx context.Context) error
}
