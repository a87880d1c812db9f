package driven

import (
	"github.com/veldt-labs/planora-cli/internal/core/domain"
)

// DocumentRegistry is the durable map from source identifier to its
// last-known fingerprint, version and derived-index entry IDs.
//
// The registry is loaded once at startup and every mutation persists
// the full state atomically before returning, so the stored registry
// always reflects some fully-registered state, never a partial one.
// It is mutated exclusively by the sync reconciler; query-time code
// only reads it.
type DocumentRegistry interface {
	// Status classifies a source document against the registry:
	// StatusNew when absent, StatusUnchanged when the stored hash
	// equals hash, StatusUpdated otherwise. Pure read.
	Status(sourceID, hash string) domain.DocumentStatus

	// DeletedSources returns registry keys not present in currentIDs.
	DeletedSources(currentIDs map[string]struct{}) []string

	// EntryIDs returns the entry IDs recorded for sourceID, nil when
	// the document is not registered.
	EntryIDs(sourceID string) []string

	// Register stores or replaces the record for sourceID. An existing
	// record's version is incremented by one, a new record starts at
	// version 1. Persists before returning.
	Register(sourceID, hash string, entryIDs []string, pageCount int) error

	// Unregister removes the record and returns the entry IDs it
	// owned, an empty slice when absent. Persists before returning.
	Unregister(sourceID string) ([]string, error)

	// All returns a copy of every record.
	All() []domain.DocumentRecord

	// Clear drops all records and persists.
	Clear() error

	// Close releases resources.
	Close() error
}
