package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldt-labs/planora-cli/internal/core/domain"
)

// stubEmbedder maps known texts to fixed vectors.
type stubEmbedder struct {
	vectors map[string][]float32
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int   { return 3 }
func (s *stubEmbedder) ModelName() string { return "stub" }
func (s *stubEmbedder) Close() error      { return nil }

func newTestIndex() *Index {
	return NewIndex(&stubEmbedder{vectors: map[string][]float32{
		"highway rules": {1, 0, 0},
		"plot boundary": {0, 1, 0},
		"roof classes":  {0.9, 0.1, 0},
	}})
}

func TestAddAndCount(t *testing.T) {
	idx := newTestIndex()
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, []domain.IndexEntry{
		{ID: "e1", Text: "highway rules", Source: "a.txt", Page: 1},
		{ID: "e2", Text: "plot boundary", Source: "a.txt", Page: 2},
	}))

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestQueryOrdersByDistance(t *testing.T) {
	idx := newTestIndex()
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, []domain.IndexEntry{
		{ID: "e1", Text: "highway rules", Source: "a.txt", Page: 1, Section: "Class A"},
		{ID: "e2", Text: "plot boundary", Source: "a.txt", Page: 2},
		{ID: "e3", Text: "roof classes", Source: "b.txt", Page: 1},
	}))

	chunks, err := idx.Query(ctx, "highway rules", 2)
	require.NoError(t, err)

	require.Len(t, chunks, 2)
	assert.Equal(t, "e1", chunks[0].ID)
	assert.Equal(t, "e3", chunks[1].ID)
	assert.True(t, *chunks[0].Distance <= *chunks[1].Distance)

	require.NotNil(t, chunks[0].Page)
	assert.Equal(t, "1", *chunks[0].Page)
	require.NotNil(t, chunks[0].Section)
	assert.Equal(t, "Class A", *chunks[0].Section)
	assert.Nil(t, chunks[1].Section)
}

func TestQueryRespectsK(t *testing.T) {
	idx := newTestIndex()
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, []domain.IndexEntry{
		{ID: "e1", Text: "highway rules", Source: "a.txt", Page: 1},
	}))

	chunks, err := idx.Query(ctx, "highway rules", 10)
	require.NoError(t, err)
	assert.Len(t, chunks, 1)

	chunks, err = idx.Query(ctx, "highway rules", 0)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestDeleteIgnoresUnknownIDs(t *testing.T) {
	idx := newTestIndex()
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, []domain.IndexEntry{
		{ID: "e1", Text: "highway rules", Source: "a.txt", Page: 1},
		{ID: "e2", Text: "plot boundary", Source: "a.txt", Page: 2},
	}))

	require.NoError(t, idx.Delete(ctx, []string{"e1", "nope"}))

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestClear(t *testing.T) {
	idx := newTestIndex()
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, []domain.IndexEntry{
		{ID: "e1", Text: "highway rules", Source: "a.txt", Page: 1},
	}))
	require.NoError(t, idx.Clear(ctx))

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCosineDistance(t *testing.T) {
	assert.InDelta(t, 0, cosineDistance([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 1, cosineDistance([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, 2, cosineDistance([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, float64(1), cosineDistance(nil, []float32{1}))
	assert.Equal(t, float64(1), cosineDistance([]float32{0, 0}, []float32{0, 0}))
}
