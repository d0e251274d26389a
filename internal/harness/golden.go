package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot captures the complete answer set for a scenario execution.
// It serializes as canonical JSON for deterministic comparison.
type Snapshot struct {
	Scenario string
	Steps    []StepResult
}

// toCanonicalMap converts a Snapshot to a map[string]any for
// MarshalCanonical. Each step keeps a fixed key set per direction so
// goldens can be written and audited by hand.
func (s *Snapshot) toCanonicalMap() map[string]any {
	steps := make([]any, len(s.Steps))
	for i, sr := range s.Steps {
		if sr.At != "" {
			steps[i] = map[string]any{
				"zone":   sr.Zone,
				"at":     sr.At,
				"civil":  sr.Civil,
				"offset": sr.Offset,
				"abbrev": sr.Abbrev,
				"dst":    sr.DST,
			}
			continue
		}
		steps[i] = map[string]any{
			"zone":  sr.Zone,
			"civil": sr.Civil,
			"kind":  sr.Kind,
			"pre":   sr.Pre,
			"trans": sr.Trans,
			"post":  sr.Post,
		}
	}
	return map[string]any{
		"scenario": s.Scenario,
		"steps":    steps,
	}
}

// RunWithGolden executes a scenario, fails the test on any expectation
// mismatch, and compares the snapshot against a golden file stored in
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}

	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an already-computed result against the golden
// file for scenarioName.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := Snapshot{
		Scenario: scenarioName,
		Steps:    result.Steps,
	}
	data, err := MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
