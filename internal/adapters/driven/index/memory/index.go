// Package memory provides an in-process external index.
//
// Entries are embedded on add and queried with brute-force cosine
// distance. Intended for tests and fully-offline runs; nothing is
// persisted.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"sync"

	"github.com/veldt-labs/planora-cli/internal/core/domain"
	"github.com/veldt-labs/planora-cli/internal/core/ports/driven"
	"github.com/veldt-labs/planora-cli/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.ExternalIndex = (*Index)(nil)

type storedEntry struct {
	entry  domain.IndexEntry
	vector []float32
}

// Index is the in-memory external index.
type Index struct {
	mu       sync.RWMutex
	embedder driven.EmbeddingService
	entries  map[string]storedEntry
}

// NewIndex creates an empty index backed by the given embedder.
func NewIndex(embedder driven.EmbeddingService) *Index {
	return &Index{
		embedder: embedder,
		entries:  make(map[string]storedEntry),
	}
}

// Add implements driven.ExternalIndex.
func (i *Index) Add(ctx context.Context, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	texts := make([]string, len(entries))
	for n, e := range entries {
		texts[n] = e.Text
	}

	vectors, err := i.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed %d entries: %w", len(entries), err)
	}
	if len(vectors) != len(entries) {
		return fmt.Errorf("embedder returned %d vectors for %d entries", len(vectors), len(entries))
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	for n, e := range entries {
		i.entries[e.ID] = storedEntry{entry: e, vector: vectors[n]}
	}

	logger.Debug("Indexed %d entries (%d total)", len(entries), len(i.entries))
	return nil
}

// Delete implements driven.ExternalIndex.
func (i *Index) Delete(ctx context.Context, ids []string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, id := range ids {
		delete(i.entries, id)
	}
	return nil
}

// Query implements driven.ExternalIndex.
func (i *Index) Query(ctx context.Context, text string, k int) ([]domain.Chunk, error) {
	if k <= 0 {
		return nil, nil
	}

	queryVec, err := i.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	type scored struct {
		entry    domain.IndexEntry
		distance float64
	}

	results := make([]scored, 0, len(i.entries))
	for _, stored := range i.entries {
		results = append(results, scored{
			entry:    stored.entry,
			distance: cosineDistance(queryVec, stored.vector),
		})
	}

	sort.Slice(results, func(a, b int) bool {
		if results[a].distance != results[b].distance {
			return results[a].distance < results[b].distance
		}
		return results[a].entry.ID < results[b].entry.ID
	})

	if len(results) > k {
		results = results[:k]
	}

	chunks := make([]domain.Chunk, 0, len(results))
	for _, r := range results {
		page := strconv.Itoa(r.entry.Page)
		distance := r.distance
		chunk := domain.Chunk{
			ID:       r.entry.ID,
			Source:   r.entry.Source,
			Page:     &page,
			Text:     r.entry.Text,
			Distance: &distance,
		}
		if r.entry.Section != "" {
			section := r.entry.Section
			chunk.Section = &section
		}
		chunks = append(chunks, chunk)
	}

	return chunks, nil
}

// Count implements driven.ExternalIndex.
func (i *Index) Count(ctx context.Context) (int, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries), nil
}

// Clear implements driven.ExternalIndex.
func (i *Index) Clear(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries = make(map[string]storedEntry)
	return nil
}

// Close implements driven.ExternalIndex.
func (i *Index) Close() error {
	return nil
}

// cosineDistance returns 1 minus the cosine similarity of a and b.
// Zero-length or mismatched vectors score maximally distant.
func cosineDistance(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 1
	}

	var dot, normA, normB float64
	for n := range a {
		dot += float64(a[n]) * float64(b[n])
		normA += float64(a[n]) * float64(a[n])
		normB += float64(b[n]) * float64(b[n])
	}
	if normA == 0 || normB == 0 {
		return 1
	}

	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
