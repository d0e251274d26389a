package harness

import (
	"fmt"
	"os"
	"time"

	"github.com/tzfold/tzfold"
	"github.com/tzfold/tzfold/civil"
	"github.com/tzfold/tzfold/internal/tzif"
	"github.com/tzfold/tzfold/internal/zonespec"
)

// instantLayout renders instants for scenario files and snapshots.
// %E4Y keeps the year zero-padded so goldens stay byte-stable.
const instantLayout = "%E4Y-%m-%dT%H:%M:%SZ"

// Harness resolves scenario steps against zones compiled from CUE
// fixtures. Build one with newHarness; zones never come from the host
// zoneinfo directory.
type Harness struct {
	zones map[string]tzfold.TimeZone
}

// Result collects the answers and expectation failures of one
// scenario run.
type Result struct {
	Steps  []StepResult
	Errors []string
}

// Pass reports whether every expectation held.
func (r *Result) Pass() bool { return len(r.Errors) == 0 }

// AddError records an expectation failure.
func (r *Result) AddError(msg string) { r.Errors = append(r.Errors, msg) }

// StepResult holds the answer for one step. The civil-direction
// fields are filled for civil steps, the instant-direction fields for
// at steps; Zone and Civil are always set.
type StepResult struct {
	Zone string

	// Civil-to-instant direction.
	Civil string
	Kind  string
	Pre   string
	Trans string
	Post  string

	// Instant-to-civil direction.
	At     string
	Offset int
	Abbrev string
	DST    bool
}

// Run executes a scenario and returns the result. Fixture compile
// failures and malformed step inputs are hard errors; expectation
// mismatches are collected on the result.
func Run(scenario *Scenario) (*Result, error) {
	h, err := newHarness(scenario.Zones)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for i, step := range scenario.Steps {
		sr, err := h.runStep(&step)
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		result.Steps = append(result.Steps, sr)
		checkExpect(result, i, &step, &sr)
	}
	return result, nil
}

// newHarness compiles every fixture file and loads the zones it
// defines. A zone name defined twice is an authoring error.
func newHarness(paths []string) (*Harness, error) {
	h := &Harness{zones: make(map[string]tzfold.TimeZone)}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read zone fixture: %w", err)
		}
		zones, err := zonespec.CompileBytes(data, path)
		if err != nil {
			return nil, fmt.Errorf("failed to compile zone fixture %s: %w", path, err)
		}
		for _, z := range zones {
			if _, ok := h.zones[z.Name]; ok {
				return nil, fmt.Errorf("zone %q defined twice", z.Name)
			}
			encoded, err := tzif.Encode(z)
			if err != nil {
				return nil, fmt.Errorf("failed to encode zone %q: %w", z.Name, err)
			}
			tz, err := tzfold.LoadFromBytes(z.Name, encoded)
			if err != nil {
				return nil, fmt.Errorf("failed to load zone %q: %w", z.Name, err)
			}
			h.zones[z.Name] = tz
		}
	}
	return h, nil
}

func (h *Harness) runStep(step *Step) (StepResult, error) {
	tz, ok := h.zones[step.Zone]
	if !ok {
		return StepResult{}, fmt.Errorf("zone %q not defined by any fixture", step.Zone)
	}

	if step.Civil != "" {
		cs, err := civil.Parse(step.Civil)
		if err != nil {
			return StepResult{}, fmt.Errorf("bad civil time: %w", err)
		}
		cl, err := tz.FromCivil(cs)
		if err != nil {
			return StepResult{}, err
		}
		return StepResult{
			Zone:  step.Zone,
			Civil: cs.String(),
			Kind:  cl.Kind.String(),
			Pre:   formatInstant(cl.Pre),
			Trans: formatInstant(cl.Trans),
			Post:  formatInstant(cl.Post),
		}, nil
	}

	at, err := tzfold.Parse(instantLayout, step.At, tzfold.UTC())
	if err != nil {
		return StepResult{}, fmt.Errorf("bad instant: %w", err)
	}
	lk := tz.At(at)
	return StepResult{
		Zone:   step.Zone,
		At:     formatInstant(at),
		Civil:  lk.Civil.String(),
		Offset: lk.Offset,
		Abbrev: lk.Abbrev,
		DST:    lk.IsDST,
	}, nil
}

// checkExpect compares a step's answer against its expect clause,
// recording every mismatch. Only listed fields are checked.
func checkExpect(result *Result, index int, step *Step, sr *StepResult) {
	e := step.Expect
	if e == nil {
		return
	}

	mismatch := func(field, want, got string) {
		result.AddError(fmt.Sprintf("steps[%d]: expected %s %s, got %s", index, field, want, got))
	}

	if e.Kind != "" && e.Kind != sr.Kind {
		mismatch("kind", e.Kind, sr.Kind)
	}
	if e.Pre != "" && e.Pre != sr.Pre {
		mismatch("pre", e.Pre, sr.Pre)
	}
	if e.Trans != "" && e.Trans != sr.Trans {
		mismatch("trans", e.Trans, sr.Trans)
	}
	if e.Post != "" && e.Post != sr.Post {
		mismatch("post", e.Post, sr.Post)
	}
	if e.Civil != "" && e.Civil != sr.Civil {
		mismatch("civil", e.Civil, sr.Civil)
	}
	if e.Offset != nil && *e.Offset != sr.Offset {
		mismatch("offset", fmt.Sprint(*e.Offset), fmt.Sprint(sr.Offset))
	}
	if e.Abbrev != "" && e.Abbrev != sr.Abbrev {
		mismatch("abbrev", e.Abbrev, sr.Abbrev)
	}
	if e.DST != nil && *e.DST != sr.DST {
		mismatch("dst", fmt.Sprint(*e.DST), fmt.Sprint(sr.DST))
	}
}

func formatInstant(t time.Time) string {
	return tzfold.Format(instantLayout, t, tzfold.UTC())
}
