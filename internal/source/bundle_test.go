package source

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tzfold/tzfold/internal/tzif"
)

func TestBundleRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tzdata.bundle")
	blob := minimalBlob(t, "TST")

	meta, err := Pack(path, "2025a", map[string][]byte{
		"UTC":             blob,
		"America/Fixture": blob,
	})
	require.NoError(t, err)
	assert.Len(t, meta.BuildID, 36)
	assert.Equal(t, "2025a", meta.TZDataVersion)
	assert.NotEmpty(t, meta.CreatedAt)

	b, err := OpenBundle(path)
	require.NoError(t, err)
	defer b.Close()

	got, err := b.Lookup("UTC")
	require.NoError(t, err)
	assert.Equal(t, blob, got)

	_, err = b.Lookup("Mars/Olympus")
	assert.ErrorIs(t, err, ErrNotFound)

	zones, err := b.Zones()
	require.NoError(t, err)
	assert.Equal(t, []string{"America/Fixture", "UTC"}, zones)

	gotMeta, err := b.Meta()
	require.NoError(t, err)
	assert.Equal(t, meta, gotMeta)
}

func TestPackRejectsUndecodableBlob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bundle")

	_, err := Pack(path, "2025a", map[string][]byte{"Bad/Zone": []byte("not tzif")})
	require.Error(t, err)
	assert.ErrorIs(t, err, tzif.ErrBadData)
}

func TestPackReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tzdata.bundle")
	blob := minimalBlob(t, "TST")

	first, err := Pack(path, "2024b", map[string][]byte{"UTC": blob})
	require.NoError(t, err)
	second, err := Pack(path, "2025a", map[string][]byte{"UTC": blob})
	require.NoError(t, err)
	assert.NotEqual(t, first.BuildID, second.BuildID)

	b, err := OpenBundle(path)
	require.NoError(t, err)
	defer b.Close()

	meta, err := b.Meta()
	require.NoError(t, err)
	assert.Equal(t, "2025a", meta.TZDataVersion)
}

func TestOpenBundleRejectsWrongSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tzdata.bundle")
	_, err := Pack(path, "2025a", map[string][]byte{"UTC": minimalBlob(t, "UTC")})
	require.NoError(t, err)

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec("PRAGMA user_version = 99")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = OpenBundle(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema version 99")
}
