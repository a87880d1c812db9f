package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldt-labs/planora-cli/internal/core/domain"
)

func newTestRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "registry.db")
	r, err := NewRegistry(path)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r, path
}

func TestStatusLifecycle(t *testing.T) {
	r, _ := newTestRegistry(t)

	assert.Equal(t, domain.StatusNew, r.Status("docs/a.pdf", "hash1"))

	require.NoError(t, r.Register("docs/a.pdf", "hash1", []string{"e1", "e2"}, 3))
	assert.Equal(t, domain.StatusUnchanged, r.Status("docs/a.pdf", "hash1"))
	assert.Equal(t, domain.StatusUpdated, r.Status("docs/a.pdf", "hash2"))
}

func TestRegisterIncrementsVersion(t *testing.T) {
	r, _ := newTestRegistry(t)

	require.NoError(t, r.Register("docs/a.pdf", "h1", []string{"e1"}, 1))
	require.NoError(t, r.Register("docs/a.pdf", "h2", []string{"e2"}, 1))
	require.NoError(t, r.Register("docs/a.pdf", "h3", []string{"e3"}, 1))

	all := r.All()
	require.Len(t, all, 1)
	assert.Equal(t, 3, all[0].Version)
	assert.Equal(t, "h3", all[0].ContentHash)
	assert.Equal(t, []string{"e3"}, all[0].EntryIDs)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")

	r, err := NewRegistry(path)
	require.NoError(t, err)
	require.NoError(t, r.Register("docs/a.pdf", "h1", []string{"e1", "e2"}, 2))
	require.NoError(t, r.Register("docs/b.pdf", "h2", []string{"e3"}, 1))
	require.NoError(t, r.Close())

	reopened, err := NewRegistry(path)
	require.NoError(t, err)
	defer reopened.Close()

	all := reopened.All()
	require.Len(t, all, 2)
	assert.Equal(t, "docs/a.pdf", all[0].SourceID)
	assert.Equal(t, []string{"e1", "e2"}, all[0].EntryIDs)
	assert.Equal(t, 2, all[0].PageCount)
	assert.Equal(t, "docs/b.pdf", all[1].SourceID)
	assert.Equal(t, domain.StatusUnchanged, reopened.Status("docs/a.pdf", "h1"))
}

func TestUnregister(t *testing.T) {
	r, _ := newTestRegistry(t)

	require.NoError(t, r.Register("docs/a.pdf", "h1", []string{"e1", "e2"}, 1))

	ids, err := r.Unregister("docs/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2"}, ids)
	assert.Equal(t, domain.StatusNew, r.Status("docs/a.pdf", "h1"))

	ids, err = r.Unregister("docs/missing.pdf")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestDeletedSources(t *testing.T) {
	r, _ := newTestRegistry(t)

	require.NoError(t, r.Register("docs/a.pdf", "h1", []string{"e1"}, 1))
	require.NoError(t, r.Register("docs/b.pdf", "h2", []string{"e2"}, 1))

	deleted := r.DeletedSources(map[string]struct{}{"docs/b.pdf": {}})
	assert.Equal(t, []string{"docs/a.pdf"}, deleted)

	deleted = r.DeletedSources(map[string]struct{}{})
	assert.Equal(t, []string{"docs/a.pdf", "docs/b.pdf"}, deleted)

	deleted = r.DeletedSources(map[string]struct{}{"docs/a.pdf": {}, "docs/b.pdf": {}})
	assert.Empty(t, deleted)
}

func TestClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")
	r, err := NewRegistry(path)
	require.NoError(t, err)

	require.NoError(t, r.Register("docs/a.pdf", "h1", []string{"e1"}, 1))
	require.NoError(t, r.Clear())
	assert.Empty(t, r.All())
	require.NoError(t, r.Close())

	reopened, err := NewRegistry(path)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Empty(t, reopened.All())
}

func TestEntryIDsReturnsCopy(t *testing.T) {
	r, _ := newTestRegistry(t)

	require.NoError(t, r.Register("docs/a.pdf", "h1", []string{"e1", "e2"}, 1))

	ids := r.EntryIDs("docs/a.pdf")
	ids[0] = "mutated"
	assert.Equal(t, []string{"e1", "e2"}, r.EntryIDs("docs/a.pdf"))

	assert.Nil(t, r.EntryIDs("docs/missing.pdf"))
}
