package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/veldt-labs/planora-cli/internal/checksum"
	"github.com/veldt-labs/planora-cli/internal/core/domain"
	"github.com/veldt-labs/planora-cli/internal/core/ports/driven"
	"github.com/veldt-labs/planora-cli/internal/core/ports/driving"
	"github.com/veldt-labs/planora-cli/internal/logger"
)

// Ensure SyncReconciler implements the interface.
var _ driving.SyncService = (*SyncReconciler)(nil)

// SyncReconciler keeps the external index and registry in step with
// the source documents. Runs are serialised: a second call blocks
// until the in-flight run finishes, so two reconciliations can never
// interleave their index mutations.
type SyncReconciler struct {
	source   driven.DocumentSource
	registry driven.DocumentRegistry
	index    driven.ExternalIndex

	mu sync.Mutex
}

// NewSyncReconciler creates a new sync reconciler.
func NewSyncReconciler(
	source driven.DocumentSource,
	registry driven.DocumentRegistry,
	index driven.ExternalIndex,
) *SyncReconciler {
	return &SyncReconciler{
		source:   source,
		registry: registry,
		index:    index,
	}
}

// Sync performs one reconciliation run.
func (r *SyncReconciler) Sync(ctx context.Context, deleteMissing bool) (*domain.SyncOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.reconcile(ctx, deleteMissing)
}

// ForceReingest re-ingests one document, or everything when sourceID
// is empty.
func (r *SyncReconciler) ForceReingest(ctx context.Context, sourceID string) (*domain.SyncOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sourceID == "" {
		logger.Section("Full re-ingestion")
		if err := r.index.Clear(ctx); err != nil {
			return nil, fmt.Errorf("clear index: %w", err)
		}
		if err := r.registry.Clear(); err != nil {
			return nil, fmt.Errorf("clear registry: %w", err)
		}
		return r.reconcile(ctx, false)
	}

	refs, err := r.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	for _, ref := range refs {
		if ref.ID != sourceID {
			continue
		}
		outcome, err := r.reingestDocument(ctx, ref)
		if err != nil {
			return nil, err
		}
		r.logOutcome(outcome)
		return outcome, nil
	}

	return nil, fmt.Errorf("document %s: %w", sourceID, domain.ErrNotFound)
}

// Status reports the registry and index state.
func (r *SyncReconciler) Status(ctx context.Context) (*domain.SyncStatusReport, error) {
	records := r.registry.All()

	report := &domain.SyncStatusReport{
		RegisteredDocuments: len(records),
		Documents:           make([]domain.DocumentDetail, 0, len(records)),
	}

	for _, rec := range records {
		report.TotalEntries += rec.EntryCount
		report.Documents = append(report.Documents, domain.DocumentDetail{
			SourceID:     rec.SourceID,
			Version:      rec.Version,
			EntryCount:   rec.EntryCount,
			PageCount:    rec.PageCount,
			LastSyncedAt: rec.LastSyncedAt,
			ContentHash:  rec.ContentHash,
		})
	}

	count, err := r.index.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count index entries: %w", err)
	}
	report.IndexCount = count

	return report, nil
}

// reconcile walks the current documents once. Callers hold the mutex.
func (r *SyncReconciler) reconcile(ctx context.Context, deleteMissing bool) (*domain.SyncOutcome, error) {
	logger.Section("Document sync")

	refs, err := r.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	outcome := &domain.SyncOutcome{}
	currentIDs := make(map[string]struct{}, len(refs))

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		currentIDs[ref.ID] = struct{}{}
		r.processDocument(ctx, ref, outcome)
	}

	if deleteMissing {
		r.removeDeleted(ctx, currentIDs, outcome)
	}

	r.logOutcome(outcome)
	return outcome, nil
}

// processDocument reconciles one document. Failures are recorded on
// the outcome and never abort the run.
func (r *SyncReconciler) processDocument(ctx context.Context, ref domain.SourceRef, outcome *domain.SyncOutcome) {
	hash, err := r.hashDocument(ctx, ref)
	if err != nil {
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("%s: %v", ref.ID, err))
		logger.Warn("Failed to fingerprint %s: %v", ref.ID, err)
		return
	}

	status := r.registry.Status(ref.ID, hash)
	if status == domain.StatusUnchanged {
		logger.Debug("Unchanged: %s", ref.ID)
		outcome.UnchangedDocuments++
		return
	}

	extraction, err := r.source.Extract(ctx, ref)
	if err != nil {
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("%s: %v", ref.ID, err))
		logger.Warn("Failed to extract %s: %v", ref.ID, err)
		return
	}

	// An empty extraction is not registered, so the document is
	// retried on the next run.
	if len(extraction.Entries) == 0 {
		logger.Warn("No entries extracted from %s, skipping", ref.ID)
		return
	}

	if status == domain.StatusUpdated {
		oldIDs := r.registry.EntryIDs(ref.ID)
		if err := r.index.Delete(ctx, oldIDs); err != nil {
			outcome.Errors = append(outcome.Errors, fmt.Sprintf("%s: delete stale entries: %v", ref.ID, err))
			logger.Warn("Failed to delete stale entries for %s: %v", ref.ID, err)
			return
		}
		outcome.EntriesRemoved += len(oldIDs)
	}

	if err := r.index.Add(ctx, extraction.Entries); err != nil {
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("%s: index entries: %v", ref.ID, err))
		logger.Warn("Failed to index %s: %v", ref.ID, err)
		return
	}

	entryIDs := make([]string, len(extraction.Entries))
	for i, e := range extraction.Entries {
		entryIDs[i] = e.ID
	}

	if err := r.registry.Register(ref.ID, hash, entryIDs, extraction.Pages); err != nil {
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("%s: register: %v", ref.ID, err))
		logger.Warn("Failed to register %s: %v", ref.ID, err)
		return
	}

	outcome.EntriesAdded += len(entryIDs)
	switch status {
	case domain.StatusNew:
		outcome.NewDocuments++
	case domain.StatusUpdated:
		outcome.UpdatedDocuments++
	}
}

// reingestDocument re-indexes one document unconditionally. The
// registry record is kept through re-registration so the version still
// increments.
func (r *SyncReconciler) reingestDocument(ctx context.Context, ref domain.SourceRef) (*domain.SyncOutcome, error) {
	hash, err := r.hashDocument(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("fingerprint %s: %w", ref.ID, err)
	}

	extraction, err := r.source.Extract(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", ref.ID, err)
	}
	if len(extraction.Entries) == 0 {
		logger.Warn("No entries extracted from %s, skipping", ref.ID)
		return &domain.SyncOutcome{}, nil
	}

	outcome := &domain.SyncOutcome{}

	oldIDs := r.registry.EntryIDs(ref.ID)
	if len(oldIDs) > 0 {
		if err := r.index.Delete(ctx, oldIDs); err != nil {
			return nil, fmt.Errorf("delete stale entries for %s: %w", ref.ID, err)
		}
		outcome.EntriesRemoved += len(oldIDs)
	}

	if err := r.index.Add(ctx, extraction.Entries); err != nil {
		return nil, fmt.Errorf("index %s: %w", ref.ID, err)
	}

	entryIDs := make([]string, len(extraction.Entries))
	for i, e := range extraction.Entries {
		entryIDs[i] = e.ID
	}
	if err := r.registry.Register(ref.ID, hash, entryIDs, extraction.Pages); err != nil {
		return nil, fmt.Errorf("register %s: %w", ref.ID, err)
	}

	outcome.EntriesAdded += len(entryIDs)
	if len(oldIDs) > 0 {
		outcome.UpdatedDocuments++
	} else {
		outcome.NewDocuments++
	}
	return outcome, nil
}

// removeDeleted drops registry entries whose source disappeared.
func (r *SyncReconciler) removeDeleted(ctx context.Context, currentIDs map[string]struct{}, outcome *domain.SyncOutcome) {
	for _, sourceID := range r.registry.DeletedSources(currentIDs) {
		if err := r.forgetDocument(ctx, sourceID, outcome); err != nil {
			outcome.Errors = append(outcome.Errors, fmt.Sprintf("%s: %v", sourceID, err))
			logger.Warn("Failed to remove %s: %v", sourceID, err)
			continue
		}
		outcome.DeletedDocuments++
		logger.Info("Removed deleted document: %s", sourceID)
	}
}

// forgetDocument removes a document's entries from index and registry.
func (r *SyncReconciler) forgetDocument(ctx context.Context, sourceID string, outcome *domain.SyncOutcome) error {
	entryIDs := r.registry.EntryIDs(sourceID)
	if err := r.index.Delete(ctx, entryIDs); err != nil {
		return fmt.Errorf("delete entries: %w", err)
	}
	if _, err := r.registry.Unregister(sourceID); err != nil {
		return fmt.Errorf("unregister: %w", err)
	}
	outcome.EntriesRemoved += len(entryIDs)
	return nil
}

func (r *SyncReconciler) hashDocument(ctx context.Context, ref domain.SourceRef) (string, error) {
	rc, err := r.source.Open(ctx, ref)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	return checksum.Reader(rc)
}

func (r *SyncReconciler) logOutcome(outcome *domain.SyncOutcome) {
	logger.Info("Sync complete: %d new, %d updated, %d unchanged, %d deleted, %d errors",
		outcome.NewDocuments, outcome.UpdatedDocuments, outcome.UnchangedDocuments,
		outcome.DeletedDocuments, len(outcome.Errors))
}
