package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })
	return cat
}

func TestRecordAndList(t *testing.T) {
	cat := testCatalog(t)

	require.NoError(t, cat.Record("serde", "1.0.219", 54, 4200))
	require.NoError(t, cat.Record("tokio", "1.49.0", 54, 9100))

	all, err := cat.List("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	only, err := cat.List("serde")
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, "1.0.219", only[0].Version)
	assert.Equal(t, 4200, only[0].ItemCount)
}

func TestRecordUpsert(t *testing.T) {
	cat := testCatalog(t)

	require.NoError(t, cat.Record("serde", "1.0.219", 53, 4000))
	// Re-recording the same version must update in place, not duplicate.
	require.NoError(t, cat.Record("serde", "1.0.219", 54, 4200))

	records, err := cat.List("serde")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 54, records[0].FormatVersion)
	assert.Equal(t, 4200, records[0].ItemCount)
}

func TestStatsAndClear(t *testing.T) {
	cat := testCatalog(t)

	require.NoError(t, cat.Record("serde", "1.0.218", 53, 4000))
	require.NoError(t, cat.Record("serde", "1.0.219", 54, 4200))
	require.NoError(t, cat.Record("tokio", "1.49.0", 54, 9100))

	st, err := cat.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, st.Crates)
	assert.Equal(t, 3, st.Versions)
	assert.Equal(t, 17300, st.TotalItems)

	require.NoError(t, cat.Clear())
	st, err = cat.Stats()
	require.NoError(t, err)
	assert.Zero(t, st.Versions)
}
