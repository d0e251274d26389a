package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario. Scenarios resolve a
// sequence of conversions against CUE-defined zones and assert on the
// answers.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden
	// snapshot file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Zones lists paths to CUE zone fixture files to compile and load.
	// Paths are relative to the scenario file location.
	Zones []string `yaml:"zones"`

	// Steps contains the conversions to run, in order.
	Steps []Step `yaml:"steps"`
}

// Step is a single conversion. Exactly one of Civil and At must be
// set: Civil resolves a wall-clock reading to the instants bracketing
// it, At resolves a UTC instant to the local reading.
type Step struct {
	// Zone names the zone to convert in. Must be defined by one of the
	// scenario's fixture files.
	Zone string `yaml:"zone"`

	// Civil is a local wall-clock reading, e.g. "2011-03-13T02:30:00".
	Civil string `yaml:"civil,omitempty"`

	// At is a UTC instant, e.g. "2011-07-01T00:00:00Z".
	At string `yaml:"at,omitempty"`

	// Expect specifies the expected answer. If nil, the step only
	// contributes to the snapshot. Listed fields are a subset match.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies expected conversion answers. The civil-direction
// fields apply to steps with civil set, the instant-direction fields
// to steps with at set.
type Expect struct {
	// Kind is the expected resolution kind: "unique", "skipped", or
	// "repeated".
	Kind string `yaml:"kind,omitempty"`

	// Pre, Trans, and Post are the expected bracketing instants.
	Pre   string `yaml:"pre,omitempty"`
	Trans string `yaml:"trans,omitempty"`
	Post  string `yaml:"post,omitempty"`

	// Civil is the expected local reading.
	Civil string `yaml:"civil,omitempty"`

	// Offset is the expected UTC offset in seconds east.
	Offset *int `yaml:"offset,omitempty"`

	// Abbrev is the expected abbreviation, e.g. "PDT".
	Abbrev string `yaml:"abbrev,omitempty"`

	// DST reports whether daylight time is expected to be in effect.
	DST *bool `yaml:"dst,omitempty"`
}

// Resolution kind constants, matching LookupKind.String().
const (
	KindUnique   = "unique"
	KindSkipped  = "skipped"
	KindRepeated = "repeated"
)

// LoadScenario reads and parses a scenario YAML file. Returns an error
// if the file doesn't exist, is malformed, contains unknown fields
// (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving zone fixture paths relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "step:" vs "steps:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, zonePath := range scenario.Zones {
		if !filepath.IsAbs(zonePath) && basePath != "" {
			scenario.Zones[i] = filepath.Join(basePath, zonePath)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Zones) == 0 {
		return fmt.Errorf("zones list is required and must be non-empty")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for _, zonePath := range s.Zones {
		if _, err := os.Stat(zonePath); os.IsNotExist(err) {
			return fmt.Errorf("zone fixture not found: %s", zonePath)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	return nil
}

// validateStep checks one step and its expect clause against the
// step's direction.
func validateStep(index int, step *Step) error {
	if step.Zone == "" {
		return fmt.Errorf("steps[%d]: zone is required", index)
	}

	switch {
	case step.Civil == "" && step.At == "":
		return fmt.Errorf("steps[%d]: one of civil or at is required", index)
	case step.Civil != "" && step.At != "":
		return fmt.Errorf("steps[%d]: civil and at are mutually exclusive", index)
	}

	if step.Expect == nil {
		return nil
	}

	if step.Civil != "" {
		if step.Expect.Civil != "" || step.Expect.Offset != nil ||
			step.Expect.Abbrev != "" || step.Expect.DST != nil {
			return fmt.Errorf("steps[%d].expect: civil/offset/abbrev/dst apply only to at steps", index)
		}
		switch step.Expect.Kind {
		case "", KindUnique, KindSkipped, KindRepeated:
		default:
			return fmt.Errorf("steps[%d].expect: unknown kind %q", index, step.Expect.Kind)
		}
		return nil
	}

	if step.Expect.Kind != "" || step.Expect.Pre != "" ||
		step.Expect.Trans != "" || step.Expect.Post != "" {
		return fmt.Errorf("steps[%d].expect: kind/pre/trans/post apply only to civil steps", index)
	}
	return nil
}
