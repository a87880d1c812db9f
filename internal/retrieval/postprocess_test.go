package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/veldt-labs/planora-cli/internal/core/domain"
)

func chunk(id, source, page string, distance float64) domain.Chunk {
	c := domain.Chunk{ID: id, Source: source, Text: "text " + id}
	if page != "" {
		c.Page = &page
	}
	c.Distance = &distance
	return c
}

func ids(chunks []domain.Chunk) []string {
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, c.ID)
	}
	return out
}

func TestPostprocess_Empty(t *testing.T) {
	assert.Empty(t, Postprocess(nil))
	assert.Empty(t, Postprocess([]domain.Chunk{}))
}

func TestPostprocess_SortsByDistance(t *testing.T) {
	in := []domain.Chunk{
		chunk("far", "a.pdf", "1", 0.9),
		chunk("near", "b.pdf", "2", 0.1),
		chunk("mid", "c.pdf", "3", 0.5),
	}

	out := Postprocess(in)
	assert.Equal(t, []string{"near", "mid", "far"}, ids(out))
}

func TestPostprocess_PerPageCap(t *testing.T) {
	// N >= 3 chunks with distinct distances on one (source, page):
	// cap=2 keeps exactly the two lowest.
	in := []domain.Chunk{
		chunk("c1", "doc.pdf", "4", 0.7),
		chunk("c2", "doc.pdf", "4", 0.2),
		chunk("c3", "doc.pdf", "4", 0.4),
		chunk("c4", "doc.pdf", "4", 0.9),
	}

	out := Postprocess(in, WithPerPageCap(2))
	assert.Equal(t, []string{"c2", "c3"}, ids(out))
}

func TestPostprocess_CapIsPerSourcePage(t *testing.T) {
	in := []domain.Chunk{
		chunk("a1", "a.pdf", "1", 0.3),
		chunk("a2", "a.pdf", "1", 0.1),
		chunk("a3", "a.pdf", "1", 0.5),
		chunk("b1", "a.pdf", "2", 0.4),
		chunk("c1", "b.pdf", "1", 0.2),
	}

	out := Postprocess(in)
	assert.Equal(t, []string{"a2", "c1", "a1", "b1"}, ids(out))
}

func TestPostprocess_MaxDistance(t *testing.T) {
	unknown := domain.Chunk{ID: "unknown", Source: "a.pdf", Text: "t"}
	in := []domain.Chunk{
		chunk("keep", "a.pdf", "1", 0.2),
		chunk("drop", "b.pdf", "1", 0.8),
		unknown,
	}

	out := Postprocess(in, WithMaxDistance(0.5))
	assert.Equal(t, []string{"keep"}, ids(out))
}

func TestPostprocess_UnknownDistanceSortsLast(t *testing.T) {
	unknown := domain.Chunk{ID: "unknown", Source: "a.pdf", Text: "t"}
	in := []domain.Chunk{
		unknown,
		chunk("scored", "b.pdf", "1", 0.6),
	}

	out := Postprocess(in)
	assert.Equal(t, []string{"scored", "unknown"}, ids(out))
}

func TestPostprocess_Idempotent(t *testing.T) {
	in := []domain.Chunk{
		chunk("c1", "doc.pdf", "4", 0.7),
		chunk("c2", "doc.pdf", "4", 0.2),
		chunk("c3", "doc.pdf", "4", 0.4),
		chunk("d1", "other.pdf", "1", 0.3),
	}

	once := Postprocess(in)
	twice := Postprocess(once)
	assert.Equal(t, once, twice)
}

func TestPostprocess_StableTies(t *testing.T) {
	in := []domain.Chunk{
		chunk("first", "a.pdf", "1", 0.5),
		chunk("second", "b.pdf", "1", 0.5),
	}

	out := Postprocess(in)
	assert.Equal(t, []string{"first", "second"}, ids(out))
}
