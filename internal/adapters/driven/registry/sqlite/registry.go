// Package sqlite provides a SQLite-backed document registry.
//
// Records are loaded into memory once at open; every mutation writes
// through inside a transaction, so the stored registry always reflects
// a fully-registered state. Reads are served from memory.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/veldt-labs/planora-cli/internal/core/domain"
	"github.com/veldt-labs/planora-cli/internal/core/ports/driven"
	"github.com/veldt-labs/planora-cli/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.DocumentRegistry = (*Registry)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	source_id      TEXT PRIMARY KEY,
	content_hash   TEXT NOT NULL,
	entry_ids      TEXT NOT NULL,
	version        INTEGER NOT NULL,
	last_synced_at TEXT NOT NULL,
	page_count     INTEGER NOT NULL,
	entry_count    INTEGER NOT NULL
)`

// Registry is the SQLite-backed document registry.
type Registry struct {
	mu      sync.Mutex
	db      *sql.DB
	records map[string]domain.DocumentRecord
	now     func() time.Time
}

// NewRegistry opens (or creates) the registry database at path.
func NewRegistry(path string) (*Registry, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	// WAL mode for crash safety on the write path.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open registry database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create registry schema: %w", err)
	}

	r := &Registry{
		db:      db,
		records: make(map[string]domain.DocumentRecord),
		now:     time.Now,
	}
	if err := r.load(); err != nil {
		// Corrupt storage is recovered, not fatal.
		logger.Warn("Failed to load registry from %s: %v, starting fresh", path, err)
		r.records = make(map[string]domain.DocumentRecord)
	}
	return r, nil
}

func (r *Registry) load() error {
	rows, err := r.db.Query(
		`SELECT source_id, content_hash, entry_ids, version, last_synced_at, page_count, entry_count
		 FROM documents`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var rec domain.DocumentRecord
		var entryIDs, syncedAt string
		if err := rows.Scan(&rec.SourceID, &rec.ContentHash, &entryIDs,
			&rec.Version, &syncedAt, &rec.PageCount, &rec.EntryCount); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(entryIDs), &rec.EntryIDs); err != nil {
			return fmt.Errorf("decode entry ids for %s: %w", rec.SourceID, err)
		}
		ts, err := time.Parse(time.RFC3339Nano, syncedAt)
		if err != nil {
			return fmt.Errorf("decode timestamp for %s: %w", rec.SourceID, err)
		}
		rec.LastSyncedAt = ts
		r.records[rec.SourceID] = rec
	}
	if err := rows.Err(); err != nil {
		return err
	}

	logger.Info("Loaded registry with %d documents", len(r.records))
	return nil
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

	rec := domain.DocumentRecord{
		SourceID:     sourceID,
		ContentHash:  hash,
		EntryIDs:     append([]string(nil), entryIDs...),
		Version:      version,
		LastSyncedAt: r.now().UTC(),
		PageCount:    pageCount,
		EntryCount:   len(entryIDs),
	}

	encoded, err := json.Marshal(rec.EntryIDs)
	if err != nil {
		return fmt.Errorf("encode entry ids: %w", err)
	}

	_, err = r.db.Exec(
		`INSERT INTO documents (source_id, content_hash, entry_ids, version, last_synced_at, page_count, entry_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(source_id) DO UPDATE SET
			content_hash = excluded.content_hash,
			entry_ids = excluded.entry_ids,
			version = excluded.version,
			last_synced_at = excluded.last_synced_at,
			page_count = excluded.page_count,
			entry_count = excluded.entry_count`,
		rec.SourceID, rec.ContentHash, string(encoded), rec.Version,
		rec.LastSyncedAt.Format(time.RFC3339Nano), rec.PageCount, rec.EntryCount)
	if err != nil {
		return fmt.Errorf("persist document %s: %w", sourceID, err)
	}

	r.records[sourceID] = rec
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

	if _, err := r.db.Exec(`DELETE FROM documents WHERE source_id = ?`, sourceID); err != nil {
		return nil, fmt.Errorf("delete document %s: %w", sourceID, err)
	}

	delete(r.records, sourceID)
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

	if _, err := r.db.Exec(`DELETE FROM documents`); err != nil {
		return fmt.Errorf("clear documents: %w", err)
	}
	r.records = make(map[string]domain.DocumentRecord)
	logger.Info("Registry cleared")
	return nil
}

// Close implements driven.DocumentRegistry.
func (r *Registry) Close() error {
	return r.db.Close()
}
