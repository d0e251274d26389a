package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenarioGoldens runs every scenario under testdata/scenarios and
// compares its snapshot against the checked-in golden file.
func TestScenarioGoldens(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)
			require.NoError(t, RunWithGolden(t, scenario))
		})
	}
}

func TestSnapshotCanonicalMap(t *testing.T) {
	snapshot := Snapshot{
		Scenario: "shape",
		Steps: []StepResult{
			{
				Zone:  "America/Test",
				Civil: "2011-03-13T02:30:00",
				Kind:  KindSkipped,
				Pre:   "2011-03-13T10:30:00Z",
				Trans: "2011-03-13T10:00:00Z",
				Post:  "2011-03-13T09:30:00Z",
			},
			{
				Zone:   "America/Test",
				At:     "2011-07-01T00:00:00Z",
				Civil:  "2011-06-30T17:00:00",
				Offset: -25200,
				Abbrev: "PDT",
				DST:    true,
			},
		},
	}

	m := snapshot.toCanonicalMap()
	assert.Equal(t, "shape", m["scenario"])

	steps, ok := m["steps"].([]any)
	require.True(t, ok)
	require.Len(t, steps, 2)

	civilStep, ok := steps[0].(map[string]any)
	require.True(t, ok)
	assert.Len(t, civilStep, 6)
	assert.Equal(t, KindSkipped, civilStep["kind"])
	assert.NotContains(t, civilStep, "at")
	assert.NotContains(t, civilStep, "offset")

	atStep, ok := steps[1].(map[string]any)
	require.True(t, ok)
	assert.Len(t, atStep, 6)
	assert.Equal(t, -25200, atStep["offset"])
	assert.NotContains(t, atStep, "kind")
	assert.NotContains(t, atStep, "pre")

	// The whole snapshot must serialize canonically.
	data, err := MarshalCanonical(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scenario":"shape"`)
}
