package driven

import (
	"context"

	"github.com/veldt-labs/planora-cli/internal/core/domain"
)

// ExternalIndex is the derived search index the reconciler keeps in
// step with the source documents and the answer pipeline queries for
// evidence.
type ExternalIndex interface {
	// Add indexes the given entries.
	Add(ctx context.Context, entries []domain.IndexEntry) error

	// Delete removes the entries with the given IDs. Unknown IDs are
	// ignored.
	Delete(ctx context.Context, ids []string) error

	// Query returns up to k scored excerpts for the question text,
	// most relevant first.
	Query(ctx context.Context, text string, k int) ([]domain.Chunk, error)

	// Count returns the number of indexed entries.
	Count(ctx context.Context) (int, error)

	// Clear removes every entry.
	Clear(ctx context.Context) error

	// Close releases resources.
	Close() error
}
