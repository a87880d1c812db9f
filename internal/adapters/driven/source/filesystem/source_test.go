package filesystem

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldt-labs/planora-cli/internal/core/domain"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestListMatchesPatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "policy.txt", "text")
	writeFile(t, dir, "guidance/notes.md", "markdown")
	writeFile(t, dir, "image.png", "binary")

	src := New(dir)
	refs, err := src.List(context.Background())
	require.NoError(t, err)

	require.Len(t, refs, 2)
	assert.Equal(t, "guidance/notes.md", refs[0].ID)
	assert.Equal(t, "policy.txt", refs[1].ID)
}

func TestListMissingDirectory(t *testing.T) {
	src := New(filepath.Join(t.TempDir(), "missing"))
	_, err := src.List(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestListCustomPatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "x")
	writeFile(t, dir, "b.rst", "y")

	src := New(dir, WithPatterns([]string{"**/*.rst"}))
	refs, err := src.List(context.Background())
	require.NoError(t, err)

	require.Len(t, refs, 1)
	assert.Equal(t, "b.rst", refs[0].ID)
}

func TestOpenReadsBytes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "doc.txt", "hello world")

	src := New(dir)
	refs, err := src.List(context.Background())
	require.NoError(t, err)
	require.Len(t, refs, 1)

	rc, err := src.Open(context.Background(), refs[0])
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestExtractPagesAndEntries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "doc.txt", "page one text\fpage two text\f   \f")

	src := New(dir)
	ext, err := src.Extract(context.Background(), domain.SourceRef{
		ID:   "doc.txt",
		Path: filepath.Join(dir, "doc.txt"),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, ext.Pages)
	require.Len(t, ext.Entries, 2)
	assert.Equal(t, "page one text", ext.Entries[0].Text)
	assert.Equal(t, 1, ext.Entries[0].Page)
	assert.Equal(t, "doc.txt", ext.Entries[0].Source)
	assert.NotEmpty(t, ext.Entries[0].ID)
	assert.Equal(t, "page two text", ext.Entries[1].Text)
	assert.Equal(t, 2, ext.Entries[1].Page)
	assert.NotEqual(t, ext.Entries[0].ID, ext.Entries[1].ID)
}

func TestExtractEmptyDocument(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "empty.txt", "  \n\f  ")

	src := New(dir)
	ext, err := src.Extract(context.Background(), domain.SourceRef{
		ID:   "empty.txt",
		Path: filepath.Join(dir, "empty.txt"),
	})
	require.NoError(t, err)

	assert.Equal(t, 0, ext.Pages)
	assert.Empty(t, ext.Entries)
}

func TestChunkingWithOverlap(t *testing.T) {
	src := New(t.TempDir(), WithChunkSize(10), WithOverlap(4))

	chunks := src.chunkText("abcdefghijklmnopqrst")
	require.Len(t, chunks, 4)
	assert.Equal(t, "abcdefghij", chunks[0])
	assert.Equal(t, "ghijklmnop", chunks[1])
	assert.Equal(t, "mnopqrst", chunks[2])
	assert.Equal(t, "st", chunks[3])
}

func TestChunkingRuneSafe(t *testing.T) {
	src := New(t.TempDir(), WithChunkSize(5), WithOverlap(0))

	chunks := src.chunkText("çevre düzeni planı")
	for _, c := range chunks {
		assert.True(t, len([]rune(c)) <= 5)
	}
}

func TestOverlapClampedToChunkSize(t *testing.T) {
	src := New(t.TempDir(), WithChunkSize(8), WithOverlap(20))
	assert.Equal(t, 2, src.overlap)
}

func TestDetectSection(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"class heading", "Class A - development within the curtilage", "Class A"},
		{"markdown heading", "## Interpretation\nIn this Part...", "Interpretation"},
		{"not permitted clause", "Development is not permitted by Class B if...", "Development is not permitted"},
		{"class letter run-on", "Classic architecture of the area", ""},
		{"mid-text heading", "See the Conditions below for details", ""},
		{"no heading", "The plot fronts a classified road.", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detectSection(tt.text))
		})
	}
}

func TestExtractTagsSections(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "order.txt", "Class B - additions to the roof of a dwellinghouse")

	src := New(dir)
	ext, err := src.Extract(context.Background(), domain.SourceRef{
		ID:   "order.txt",
		Path: filepath.Join(dir, "order.txt"),
	})
	require.NoError(t, err)

	require.Len(t, ext.Entries, 1)
	assert.Equal(t, "Class B", ext.Entries[0].Section)
}
