package driving

import (
	"context"

	"github.com/veldt-labs/planora-cli/internal/core/domain"
)

// SyncService reconciles the derived index with the source documents.
// Runs against the same registry are serialised: a second call blocks
// until the in-flight run finishes.
type SyncService interface {
	// Sync performs one idempotent reconciliation run. When
	// deleteMissing is true, registry entries whose source document
	// disappeared are removed from index and registry.
	Sync(ctx context.Context, deleteMissing bool) (*domain.SyncOutcome, error)

	// ForceReingest re-ingests one document (sourceID non-empty) or
	// everything (sourceID empty, clearing registry and index first).
	ForceReingest(ctx context.Context, sourceID string) (*domain.SyncOutcome, error)

	// Status reports the registry and index state.
	Status(ctx context.Context) (*domain.SyncStatusReport, error)
}
