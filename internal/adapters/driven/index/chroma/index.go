// Package chroma provides an external index adapter for a Chroma-style
// vector database over its REST API.
//
// Embedding happens server-side: entries are sent as documents and the
// collection's configured embedding function indexes them. Requests are
// rate limited to keep bulk syncs from flooding the server.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/veldt-labs/planora-cli/internal/core/domain"
	"github.com/veldt-labs/planora-cli/internal/core/ports/driven"
	"github.com/veldt-labs/planora-cli/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.ExternalIndex = (*Index)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:8000"
	DefaultCollection = "planning_docs"
	DefaultTimeout    = 60 * time.Second

	// DefaultRequestsPerSecond caps the request rate during bulk syncs.
	DefaultRequestsPerSecond = 10
)

// Config holds configuration for the chroma index.
type Config struct {
	// BaseURL is the server base URL (default: http://localhost:8000).
	BaseURL string

	// Collection is the collection name (default: planning_docs).
	Collection string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// RequestsPerSecond caps the request rate (default: 10).
	RequestsPerSecond float64
}

// Index talks to a Chroma-style vector database.
type Index struct {
	client       *http.Client
	baseURL      string
	collection   string
	collectionID string
	limiter      *rate.Limiter
}

type addRequest struct {
	IDs       []string         `json:"ids"`
	Documents []string         `json:"documents"`
	Metadatas []map[string]any `json:"metadatas"`
}

type deleteRequest struct {
	IDs []string `json:"ids"`
}

type queryRequest struct {
	QueryTexts []string `json:"query_texts"`
	NResults   int      `json:"n_results"`
	Include    []string `json:"include"`
}

type queryResponse struct {
	IDs       [][]string         `json:"ids"`
	Documents [][]string         `json:"documents"`
	Metadatas [][]map[string]any `json:"metadatas"`
	Distances [][]float64        `json:"distances"`
}

type collectionResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewIndex connects to the server and gets or creates the collection.
func NewIndex(ctx context.Context, cfg Config) (*Index, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}

	i := &Index{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:    cfg.BaseURL,
		collection: cfg.Collection,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}

	if err := i.openCollection(ctx); err != nil {
		return nil, err
	}

	logger.Info("Connected to index collection %q at %s", cfg.Collection, cfg.BaseURL)
	return i, nil
}

func (i *Index) openCollection(ctx context.Context) error {
	var coll collectionResponse
	err := i.post(ctx, "/api/v1/collections", map[string]any{
		"name":          i.collection,
		"get_or_create": true,
	}, &coll)
	if err != nil {
		return fmt.Errorf("open collection %s: %w", i.collection, domain.ErrIndexUnavailable)
	}
	i.collectionID = coll.ID
	return nil
}

// Add implements driven.ExternalIndex.
func (i *Index) Add(ctx context.Context, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	req := addRequest{
		IDs:       make([]string, len(entries)),
		Documents: make([]string, len(entries)),
		Metadatas: make([]map[string]any, len(entries)),
	}
	for n, e := range entries {
		req.IDs[n] = e.ID
		req.Documents[n] = e.Text
		meta := map[string]any{
			"source": e.Source,
			"page":   e.Page,
		}
		if e.Section != "" {
			meta["section"] = e.Section
		}
		req.Metadatas[n] = meta
	}

	path := fmt.Sprintf("/api/v1/collections/%s/add", i.collectionID)
	if err := i.post(ctx, path, req, nil); err != nil {
		return fmt.Errorf("add %d entries: %w", len(entries), err)
	}
	return nil
}

// Delete implements driven.ExternalIndex.
func (i *Index) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	path := fmt.Sprintf("/api/v1/collections/%s/delete", i.collectionID)
	if err := i.post(ctx, path, deleteRequest{IDs: ids}, nil); err != nil {
		return fmt.Errorf("delete %d entries: %w", len(ids), err)
	}
	return nil
}

// Query implements driven.ExternalIndex.
func (i *Index) Query(ctx context.Context, text string, k int) ([]domain.Chunk, error) {
	if k <= 0 {
		return nil, nil
	}

	req := queryRequest{
		QueryTexts: []string{text},
		NResults:   k,
		Include:    []string{"documents", "metadatas", "distances"},
	}

	var resp queryResponse
	path := fmt.Sprintf("/api/v1/collections/%s/query", i.collectionID)
	if err := i.post(ctx, path, req, &resp); err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	if len(resp.IDs) == 0 {
		return nil, nil
	}

	ids := resp.IDs[0]
	chunks := make([]domain.Chunk, 0, len(ids))
	for n, id := range ids {
		chunk := domain.Chunk{ID: id}
		if len(resp.Documents) > 0 && n < len(resp.Documents[0]) {
			chunk.Text = resp.Documents[0][n]
		}
		if len(resp.Distances) > 0 && n < len(resp.Distances[0]) {
			d := resp.Distances[0][n]
			chunk.Distance = &d
		}
		if len(resp.Metadatas) > 0 && n < len(resp.Metadatas[0]) {
			applyMetadata(&chunk, resp.Metadatas[0][n])
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

// applyMetadata copies source, page and section out of an entry's
// stored metadata. Page numbers come back as JSON numbers.
func applyMetadata(chunk *domain.Chunk, meta map[string]any) {
	if src, ok := meta["source"].(string); ok {
		chunk.Source = src
	}
	switch page := meta["page"].(type) {
	case float64:
		p := fmt.Sprintf("%d", int(page))
		chunk.Page = &p
	case string:
		p := page
		chunk.Page = &p
	}
	if section, ok := meta["section"].(string); ok && section != "" {
		s := section
		chunk.Section = &s
	}
}

// Count implements driven.ExternalIndex.
func (i *Index) Count(ctx context.Context) (int, error) {
	var count int
	path := fmt.Sprintf("/api/v1/collections/%s/count", i.collectionID)
	if err := i.get(ctx, path, &count); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return count, nil
}

// Clear implements driven.ExternalIndex.
// The collection is dropped and recreated empty.
func (i *Index) Clear(ctx context.Context) error {
	if err := i.limiter.Wait(ctx); err != nil {
		return err
	}

	url := i.baseURL + "/api/v1/collections/" + i.collection
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("delete collection: status %d", resp.StatusCode)
	}

	return i.openCollection(ctx)
}

// Close implements driven.ExternalIndex.
func (i *Index) Close() error {
	return nil
}

func (i *Index) post(ctx context.Context, path string, body, out any) error {
	if err := i.limiter.Wait(ctx); err != nil {
		return err
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return i.do(req, out)
}

func (i *Index) get(ctx context.Context, path string, out any) error {
	if err := i.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, i.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	return i.do(req, out)
}

func (i *Index) do(req *http.Request, out any) error {
	resp, err := i.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("chroma error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
