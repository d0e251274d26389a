package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tzfold/tzfold/internal/tzif"
)

// testZoneBytes builds the America/Test fixture: the 2011 slice of a
// US Pacific style zone plus its extrapolation rule.
func testZoneBytes(t *testing.T) []byte {
	t.Helper()
	data, err := tzif.Encode(&tzif.Zone{
		Name:    "America/Test",
		Version: 2,
		Types: []tzif.Type{
			{Offset: -28800, IsDST: false, Abbrev: "PST"},
			{Offset: -25200, IsDST: true, Abbrev: "PDT"},
		},
		Trans: []tzif.Transition{
			{When: 1300010400, Index: 1}, // 2011-03-13T10:00:00Z
			{When: 1320570000, Index: 0}, // 2011-11-06T09:00:00Z
		},
		Extend: "PST8PDT,M3.2.0,M11.1.0",
	})
	require.NoError(t, err)
	return data
}

// writeZoneinfo lays testZoneBytes out as a zoneinfo tree and returns
// its root, ready for --dir.
func writeZoneinfo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "America", "Test")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, testZoneBytes(t), 0o644))
	return dir
}
