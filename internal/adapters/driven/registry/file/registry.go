// Package file provides a JSON file-backed document registry.
//
// The registry is a single blob keyed by source ID, loaded once at
// startup and rewritten in full on every mutation via write-then-rename
// so a crash mid-write can never leave a half-updated record on disk.
// The file is safe to inspect or hand-edit between runs.
package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/veldt-labs/planora-cli/internal/core/domain"
	"github.com/veldt-labs/planora-cli/internal/core/ports/driven"
	"github.com/veldt-labs/planora-cli/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.DocumentRegistry = (*Registry)(nil)

// Registry is the file-backed document registry.
type Registry struct {
	mu      sync.Mutex
	path    string
	records map[string]domain.DocumentRecord
	now     func() time.Time
}

// NewRegistry loads the registry at path, starting empty when the file
// does not exist. A corrupt file is not fatal: it is logged and the
// registry starts fresh rather than crashing the process.
func NewRegistry(path string) (*Registry, error) {
	r := &Registry{
		path:    path,
		records: make(map[string]domain.DocumentRecord),
		now:     time.Now,
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Info("No existing registry at %s, starting fresh", path)
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}

	if err := json.Unmarshal(data, &r.records); err != nil {
		logger.Warn("Failed to load registry %s: %v, starting fresh", path, err)
		r.records = make(map[string]domain.DocumentRecord)
		return r, nil
	}

	logger.Info("Loaded registry with %d documents", len(r.records))
	return r, nil
}

// Status implements driven.DocumentRegistry.
func (r *Registry) Status(sourceID, hash string) domain.DocumentStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.records[sourceID]
	if !ok {
		return domain.StatusNew
	}
	if existing.ContentHash == hash {
		return domain.StatusUnchanged
	}
	return domain.StatusUpdated
}

// DeletedSources implements driven.DocumentRegistry.
func (r *Registry) DeletedSources(currentIDs map[string]struct{}) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted []string
	for id := range r.records {
		if _, ok := currentIDs[id]; !ok {
			deleted = append(deleted, id)
		}
	}
	sort.Strings(deleted)
	return deleted
}

// EntryIDs implements driven.DocumentRegistry.
func (r *Registry) EntryIDs(sourceID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[sourceID]
	if !ok {
		return nil
	}
	return append([]string(nil), rec.EntryIDs...)
}

// Register implements driven.DocumentRegistry.
func (r *Registry) Register(sourceID, hash string, entryIDs []string, pageCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	version := 1
	if existing, ok := r.records[sourceID]; ok {
		version = existing.Version + 1
	}

	r.records[sourceID] = domain.DocumentRecord{
		SourceID:     sourceID,
		ContentHash:  hash,
		EntryIDs:     append([]string(nil), entryIDs...),
		Version:      version,
		LastSyncedAt: r.now().UTC(),
		PageCount:    pageCount,
		EntryCount:   len(entryIDs),
	}

	if err := r.persistLocked(); err != nil {
		return err
	}
	logger.Info("Registered document: %s (v%d, %d entries)", sourceID, version, len(entryIDs))
	return nil
}

// Unregister implements driven.DocumentRegistry.
func (r *Registry) Unregister(sourceID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[sourceID]
	if !ok {
		return []string{}, nil
	}
	delete(r.records, sourceID)

	if err := r.persistLocked(); err != nil {
		return nil, err
	}
	logger.Info("Unregistered document: %s", sourceID)
	return rec.EntryIDs, nil
}

// All implements driven.DocumentRegistry.
func (r *Registry) All() []domain.DocumentRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.DocumentRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SourceID < out[j].SourceID
	})
	return out
}

// Clear implements driven.DocumentRegistry.
func (r *Registry) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = make(map[string]domain.DocumentRecord)
	if err := r.persistLocked(); err != nil {
		return err
	}
	logger.Info("Registry cleared")
	return nil
}

// Close implements driven.DocumentRegistry.
func (r *Registry) Close() error {
	return nil
}

// persistLocked writes the full registry to a temporary file and
// renames it into place. The caller holds the mutex.
func (r *Registry) persistLocked() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0700); err != nil {
		return fmt.Errorf("create registry directory: %w", err)
	}

	data, err := json.MarshalIndent(r.records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal registry: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace registry: %w", err)
	}
	return nil
}
