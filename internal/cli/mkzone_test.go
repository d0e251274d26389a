package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tzfold/tzfold"
)

const mkzoneFixture = `zone: "America/Test": {
	types: [
		{offset: -28800, abbrev: "PST"},
		{offset: -25200, dst: true, abbrev: "PDT"},
	]
	transitions: [
		{at: "2011-03-13T10:00:00", type: 1},
		{at: "2011-11-06T09:00:00", type: 0},
	]
	extend: "PST8PDT,M3.2.0,M11.1.0"
}
`

func TestMkzoneWritesTree(t *testing.T) {
	fixture := filepath.Join(t.TempDir(), "la.cue")
	require.NoError(t, os.WriteFile(fixture, []byte(mkzoneFixture), 0o644))
	outDir := t.TempDir()

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewMkzoneCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{fixture, "--out-dir", outDir})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "✓ Compiled 1 zone(s) from 1 file(s)")
	assert.Contains(t, output, "America/Test: 2 type(s), 2 transition(s)")

	data, err := os.ReadFile(filepath.Join(outDir, "America", "Test"))
	require.NoError(t, err)
	z, err := tzfold.LoadFromBytes("America/Test", data)
	require.NoError(t, err)
	assert.Equal(t, "PDT", z.At(time.Unix(1309478400, 0).UTC()).Abbrev)
}

func TestMkzoneThenConvert(t *testing.T) {
	fixture := filepath.Join(t.TempDir(), "la.cue")
	require.NoError(t, os.WriteFile(fixture, []byte(mkzoneFixture), 0o644))
	outDir := t.TempDir()

	mkzone := NewMkzoneCommand(&RootOptions{Format: "text"})
	mkzone.SetOut(&bytes.Buffer{})
	mkzone.SetArgs([]string{fixture, "--out-dir", outDir})
	require.NoError(t, mkzone.Execute())

	// The freshly written tree should serve lookups like any zoneinfo dir.
	buf := &bytes.Buffer{}
	convert := NewConvertCommand(&RootOptions{Format: "text", Dirs: []string{outDir}})
	convert.SetOut(buf)
	convert.SetArgs([]string{"America/Test", "--civil", "2011-03-13T02:30:00"})
	require.NoError(t, convert.Execute())

	assert.Contains(t, buf.String(), "skipped")
}

func TestMkzoneBadFixture(t *testing.T) {
	fixture := filepath.Join(t.TempDir(), "bad.cue")
	require.NoError(t, os.WriteFile(fixture, []byte(`zone: "Bad": {}`), 0o644))

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewMkzoneCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{fixture, "--out-dir", t.TempDir()})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compilation failed")

	output := buf.String()
	assert.Contains(t, output, "✗ Compilation failed")
	assert.Contains(t, output, "E005")
	assert.Contains(t, output, "at least one local time type is required")
}

func TestMkzoneMissingFile(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewMkzoneCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "absent.cue")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, buf.String(), "E001")
	assert.Contains(t, buf.String(), "reading")
}

func TestMkzoneJSON(t *testing.T) {
	fixture := filepath.Join(t.TempDir(), "la.cue")
	require.NoError(t, os.WriteFile(fixture, []byte(mkzoneFixture), 0o644))
	outDir := t.TempDir()

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewMkzoneCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{fixture, "--out-dir", outDir})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	zones, ok := resp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, zones, 1)

	zone, ok := zones[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "America/Test", zone["zone"])
	assert.Equal(t, float64(2), zone["types"])
	assert.Equal(t, float64(2), zone["transitions"])
}
