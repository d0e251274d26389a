package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tzfold/tzfold"
	"github.com/tzfold/tzfold/civil"
)

// ZdumpOptions holds flags for the zdump command.
type ZdumpOptions struct {
	*RootOptions
	At   string // instant for the one-line report
	From int    // first year of the verbose dump range
	To   int    // year the verbose dump range stops before
}

// ZoneState is one side of a transition: the wall clock just before or
// just after it.
type ZoneState struct {
	Civil  string `json:"civil"`
	Offset int    `json:"offset"`
	Abbrev string `json:"abbrev"`
	DST    bool   `json:"dst"`
}

// Transition reports one offset change found in the dump range.
type Transition struct {
	At     string    `json:"at"`
	Unix   int64     `json:"unix"`
	Before ZoneState `json:"before"`
	After  ZoneState `json:"after"`
}

// ZoneDump is the verbose report for one zone.
type ZoneDump struct {
	Zone        string       `json:"zone"`
	Transitions []Transition `json:"transitions"`
}

// NewZdumpCommand creates the zdump command.
func NewZdumpCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ZdumpOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "zdump <zone>...",
		Short: "Dump zone readings and transitions",
		Long: `Print the wall-clock reading of each zone at one instant, or with
--verbose walk the dump range and print every offset transition in the
classic zdump line format.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runZdump(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.At, "at", "", "instant to report (default now)")
	cmd.Flags().IntVar(&opts.From, "from", 1900, "first year of the verbose dump range")
	cmd.Flags().IntVar(&opts.To, "to", 2038, "year the verbose dump range stops before")

	return cmd
}

func runZdump(opts *ZdumpOptions, zoneNames []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	src, closeSources, err := openSources(opts.RootOptions)
	if err != nil {
		return outputCommandError(formatter, ErrCodeBadZone, err.Error())
	}
	defer closeSources()

	type zoneEntry struct {
		name string
		z    tzfold.TimeZone
	}
	entries := make([]zoneEntry, 0, len(zoneNames))
	for _, name := range zoneNames {
		z, err := loadZone(src, name)
		if err != nil {
			return outputCommandError(formatter, zoneErrorCode(err), err.Error())
		}
		entries = append(entries, zoneEntry{name: name, z: z})
	}

	if opts.Verbose {
		if opts.From >= opts.To {
			return outputCommandError(formatter, ErrCodeBadInput,
				fmt.Sprintf("empty dump range: from %d to %d", opts.From, opts.To))
		}
		lo, okLo := civil.Of(int64(opts.From), 1, 1, 0, 0, 0).Unix()
		hi, okHi := civil.Of(int64(opts.To), 1, 1, 0, 0, 0).Unix()
		if !okLo || !okHi {
			return outputCommandError(formatter, ErrCodeBadInput, "dump range out of bounds")
		}

		if formatter.Format == "json" {
			dumps := make([]*ZoneDump, 0, len(entries))
			for _, e := range entries {
				dumps = append(dumps, dumpZone(e.name, e.z, lo, hi))
			}
			return formatter.Success(dumps)
		}

		for _, e := range entries {
			z := e.z
			walkTransitions(z, lo, hi, func(at int64) {
				for _, u := range []int64{at - 1, at} {
					lk := atUnix(z, u)
					fmt.Fprintf(formatter.Writer, "%s  %s UT = %s %s isdst=%d gmtoff=%d\n",
						e.name, asctime(civil.FromUnix(u)), asctime(lk.Civil), lk.Abbrev,
						btoi(lk.IsDST), lk.Offset)
				}
			})
		}
		return nil
	}

	t := time.Now()
	if opts.At != "" {
		t, err = parseInstant(opts.At)
		if err != nil {
			return outputCommandError(formatter, ErrCodeBadInput, err.Error())
		}
	}

	results := make([]*InstantResult, 0, len(entries))
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lk := e.z.At(t)
		results = append(results, &InstantResult{
			Zone:   e.name,
			At:     formatInstant(t),
			Unix:   t.Unix(),
			Civil:  lk.Civil.String(),
			Offset: lk.Offset,
			Abbrev: lk.Abbrev,
			DST:    lk.IsDST,
		})
		lines = append(lines, fmt.Sprintf("%s  %s %s", e.name, asctime(lk.Civil), lk.Abbrev))
	}

	if formatter.Format == "json" {
		return formatter.Success(results)
	}
	for _, line := range lines {
		fmt.Fprintln(formatter.Writer, line)
	}
	return nil
}

// dumpZone collects every transition of z inside [lo, hi).
func dumpZone(name string, z tzfold.TimeZone, lo, hi int64) *ZoneDump {
	dump := &ZoneDump{Zone: name, Transitions: []Transition{}}
	walkTransitions(z, lo, hi, func(at int64) {
		before := atUnix(z, at-1)
		after := atUnix(z, at)
		dump.Transitions = append(dump.Transitions, Transition{
			At:     formatInstant(time.Unix(at, 0).UTC()),
			Unix:   at,
			Before: ZoneState{Civil: before.Civil.String(), Offset: before.Offset, Abbrev: before.Abbrev, DST: before.IsDST},
			After:  ZoneState{Civil: after.Civil.String(), Offset: after.Offset, Abbrev: after.Abbrev, DST: after.IsDST},
		})
	})
	return dump
}

// walkTransitions probes the instant range [lo, hi) in twelve-hour
// steps and bisects every change of (offset, abbrev, dst) down to its
// exact second, visiting the first second of each new rendering.
// Transitions closer together than the probe step hide each other,
// which published zone data never exhibits.
func walkTransitions(z tzfold.TimeZone, lo, hi int64, visit func(at int64)) {
	const step = int64(12 * 60 * 60)
	if hi-1 <= lo {
		return
	}
	prev := lo
	prevLk := atUnix(z, prev)
	for cur := lo + step; ; cur += step {
		if cur > hi-1 {
			cur = hi - 1
		}
		lk := atUnix(z, cur)
		if !sameRendering(lk, prevLk) {
			a, b := prev, cur
			for b-a > 1 {
				mid := a + (b-a)/2
				if sameRendering(atUnix(z, mid), prevLk) {
					a = mid
				} else {
					b = mid
				}
			}
			visit(b)
		}
		prev, prevLk = cur, lk
		if cur == hi-1 {
			return
		}
	}
}

func sameRendering(a, b tzfold.TimeLookup) bool {
	return a.Offset == b.Offset && a.Abbrev == b.Abbrev && a.IsDST == b.IsDST
}

func atUnix(z tzfold.TimeZone, sec int64) tzfold.TimeLookup {
	return z.At(time.Unix(sec, 0).UTC())
}

// asctime renders a civil reading in the classic ctime layout, day of
// month space-padded.
func asctime(cs civil.Time) string {
	return fmt.Sprintf("%.3s %.3s %2d %02d:%02d:%02d %d",
		cs.Weekday().String(), time.Month(cs.Month).String(),
		cs.Day, cs.Hour, cs.Minute, cs.Second, cs.Year)
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
