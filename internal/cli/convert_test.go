package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertCivilSkipped(t *testing.T) {
	dir := writeZoneinfo(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Dirs: []string{dir}}
	cmd := NewConvertCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"America/Test", "--civil", "2011-03-13T02:30:00"})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "2011-03-13T02:30:00 in America/Test: skipped")
	assert.Contains(t, output, "pre:   2011-03-13T10:30:00Z")
	assert.Contains(t, output, "trans: 2011-03-13T10:00:00Z")
	assert.Contains(t, output, "post:  2011-03-13T09:30:00Z")
}

func TestConvertCivilRepeatedJSON(t *testing.T) {
	dir := writeZoneinfo(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json", Dirs: []string{dir}}
	cmd := NewConvertCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"America/Test", "--civil", "2011-11-06T01:30:00"})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "repeated", data["kind"])
	assert.Equal(t, "2011-11-06T08:30:00Z", data["pre"])
	assert.Equal(t, "2011-11-06T09:00:00Z", data["trans"])
	assert.Equal(t, "2011-11-06T09:30:00Z", data["post"])
}

func TestConvertInstant(t *testing.T) {
	dir := writeZoneinfo(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Dirs: []string{dir}}
	cmd := NewConvertCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"America/Test", "--at", "2011-07-01T00:00:00Z"})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "2011-07-01T00:00:00Z in America/Test:")
	assert.Contains(t, output, "civil:  2011-06-30T17:00:00")
	assert.Contains(t, output, "offset: -25200")
	assert.Contains(t, output, "abbrev: PDT")
	assert.Contains(t, output, "dst:    true")
}

func TestConvertUnixJSON(t *testing.T) {
	dir := writeZoneinfo(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json", Dirs: []string{dir}}
	cmd := NewConvertCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"America/Test", "--unix", "1295121600"})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "2011-01-15T20:00:00Z", data["at"])
	assert.Equal(t, "2011-01-15T12:00:00", data["civil"])
	assert.Equal(t, "PST", data["abbrev"])
	assert.Equal(t, false, data["dst"])
}

func TestConvertUTCWithoutFixtures(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Dirs: []string{t.TempDir()}}
	cmd := NewConvertCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"UTC", "--unix", "0"})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "civil:  1970-01-01T00:00:00")
	assert.Contains(t, buf.String(), "abbrev: UTC")
}

func TestConvertRequiresOneDirection(t *testing.T) {
	dir := writeZoneinfo(t)

	for _, args := range [][]string{
		{"America/Test"},
		{"America/Test", "--civil", "2011-01-01T00:00:00", "--unix", "0"},
	} {
		buf := &bytes.Buffer{}
		rootOpts := &RootOptions{Format: "text", Dirs: []string{dir}}
		cmd := NewConvertCommand(rootOpts)
		cmd.SetOut(buf)
		cmd.SetArgs(args)

		err := cmd.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "E003")
		assert.Contains(t, buf.String(), "exactly one of")
	}
}

func TestConvertUnknownZone(t *testing.T) {
	dir := writeZoneinfo(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Dirs: []string{dir}}
	cmd := NewConvertCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"Mars/Olympus", "--unix", "0"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E004")
	assert.Contains(t, buf.String(), "not found")
}

func TestConvertBadCivil(t *testing.T) {
	dir := writeZoneinfo(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Dirs: []string{dir}}
	cmd := NewConvertCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"America/Test", "--civil", "next thursday"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E003")
}

func TestConvertVerboseLogsSource(t *testing.T) {
	dir := writeZoneinfo(t)

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Verbose: true, Dirs: []string{dir}}
	cmd := NewConvertCommand(rootOpts)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr) // Verbose output goes to stderr
	cmd.SetArgs([]string{"America/Test", "--unix", "0"})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, stderr.String(), "Resolved zone America/Test")
}
