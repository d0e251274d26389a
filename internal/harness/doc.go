// Package harness provides conformance testing for zone conversion
// semantics.
//
// The harness compiles CUE zone fixtures, executes scenario steps in
// both conversion directions, and compares the answers against golden
// snapshots.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	zones:
//	  - path/to/zones.cue
//	steps:
//	  - zone: America/Test
//	    civil: "2011-03-13T02:30:00"
//	    expect:
//	      kind: skipped
//	      pre: "2011-03-13T10:30:00Z"
//	      trans: "2011-03-13T10:00:00Z"
//	      post: "2011-03-13T09:30:00Z"
//	  - zone: America/Test
//	    at: "2011-07-01T00:00:00Z"
//	    expect:
//	      civil: "2011-06-30T17:00:00"
//	      offset: -25200
//	      abbrev: PDT
//	      dst: true
//
// A step carries either civil (a local wall-clock reading, resolved to
// the instants bracketing it) or at (a UTC instant, resolved to the
// local reading). The expect clause is optional; when present, only
// its listed fields are checked. Instants are written in the
// "%Y-%m-%dT%H:%M:%SZ" layout and civil readings drop the Z.
//
// # Deterministic Testing
//
// Zones come from CUE fixtures compiled in-process, never from the
// host's zoneinfo directory, so scenarios produce identical answers on
// every machine. Snapshots are serialized as canonical JSON for
// byte-stable golden comparison.
//
// # Usage
//
// Load a scenario:
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/la_folds.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Execute and compare against the golden snapshot:
//
//	if err := harness.RunWithGolden(t, scenario); err != nil {
//	    t.Fatal(err)
//	}
package harness
