package domain

import "time"

// DocumentStatus classifies a source document against the registry.
type DocumentStatus string

// Document sync statuses.
const (
	StatusNew       DocumentStatus = "new"
	StatusUnchanged DocumentStatus = "unchanged"
	StatusUpdated   DocumentStatus = "updated"
)

// DocumentRecord tracks one ingested source document in the registry.
// It is the source of truth for "already indexed": the entry IDs it
// carries are exactly the derived-index entries the document produced.
type DocumentRecord struct {
	// SourceID is the stable external name of the document.
	SourceID string `json:"source_id"`

	// ContentHash is the fingerprint of the document bytes at ingestion.
	ContentHash string `json:"content_hash"`

	// EntryIDs are the derived-index entries created from this document.
	EntryIDs []string `json:"entry_ids"`

	// Version starts at 1 and increases by exactly 1 on every
	// successful re-ingestion of the same SourceID.
	Version int `json:"version"`

	// LastSyncedAt is when the document was last registered.
	LastSyncedAt time.Time `json:"last_synced_at"`

	// PageCount is the number of pages extracted.
	PageCount int `json:"page_count"`

	// EntryCount equals len(EntryIDs).
	EntryCount int `json:"entry_count"`
}

// SyncOutcome summarises one reconciliation run. It is transient:
// returned to the caller and logged, never persisted.
type SyncOutcome struct {
	NewDocuments       int
	UpdatedDocuments   int
	UnchangedDocuments int
	DeletedDocuments   int
	EntriesAdded       int
	EntriesRemoved     int

	// Errors holds one message per document that failed. A failed
	// document never aborts the processing of the remaining ones.
	Errors []string
}

// HasChanges reports whether the run mutated the index.
func (o *SyncOutcome) HasChanges() bool {
	return o.NewDocuments+o.UpdatedDocuments+o.DeletedDocuments > 0
}

// DocumentDetail is the per-document portion of a status report.
type DocumentDetail struct {
	SourceID     string
	Version      int
	EntryCount   int
	PageCount    int
	LastSyncedAt time.Time
	ContentHash  string
}

// SyncStatusReport describes the registry and index state.
type SyncStatusReport struct {
	RegisteredDocuments int
	TotalEntries        int
	IndexCount          int
	Documents           []DocumentDetail
}
