package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFmtDefaultLayout(t *testing.T) {
	dir := writeZoneinfo(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Dirs: []string{dir}}
	cmd := NewFmtCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"America/Test", "--at", "2011-07-01T00:00:00Z"})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Equal(t, "2011-06-30 17:00:00 PDT\n", buf.String())
}

func TestFmtCustomLayout(t *testing.T) {
	dir := writeZoneinfo(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Dirs: []string{dir}}
	cmd := NewFmtCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"America/Test", "--unix", "1295121600",
		"--layout", "%a %d %b %Y %H:%M %Z"})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Equal(t, "Sat 15 Jan 2011 12:00 PST\n", buf.String())
}

func TestFmtRejectsUnknownDirective(t *testing.T) {
	dir := writeZoneinfo(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Dirs: []string{dir}}
	cmd := NewFmtCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"America/Test", "--unix", "0", "--layout", "%Y %Q"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E003")
	assert.Contains(t, buf.String(), "%Q")
}

func TestFmtRequiresInstant(t *testing.T) {
	dir := writeZoneinfo(t)

	for _, args := range [][]string{
		{"America/Test"},
		{"America/Test", "--at", "2011-07-01T00:00:00Z", "--unix", "0"},
	} {
		buf := &bytes.Buffer{}
		rootOpts := &RootOptions{Format: "text", Dirs: []string{dir}}
		cmd := NewFmtCommand(rootOpts)
		cmd.SetOut(buf)
		cmd.SetArgs(args)

		err := cmd.Execute()
		require.Error(t, err)
		assert.Contains(t, buf.String(), "exactly one of --at or --unix")
	}
}

func TestFmtJSON(t *testing.T) {
	dir := writeZoneinfo(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json", Dirs: []string{dir}}
	cmd := NewFmtCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"America/Test", "--at", "2011-07-01T00:00:00Z"})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "2011-06-30 17:00:00 PDT", data["output"])
	assert.Equal(t, "America/Test", data["zone"])
}
