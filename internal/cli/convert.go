package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tzfold/tzfold/civil"
)

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	*RootOptions
	Civil string // wall-clock reading to resolve
	At    string // absolute instant to project
	Unix  int64  // absolute instant as Unix seconds
}

// CivilResult reports how a wall-clock reading maps onto instants.
type CivilResult struct {
	Zone  string `json:"zone"`
	Civil string `json:"civil"`
	Kind  string `json:"kind"`
	Pre   string `json:"pre"`
	Trans string `json:"trans"`
	Post  string `json:"post"`
}

// InstantResult reports how a zone renders one absolute instant.
type InstantResult struct {
	Zone   string `json:"zone"`
	At     string `json:"at"`
	Unix   int64  `json:"unix"`
	Civil  string `json:"civil"`
	Offset int    `json:"offset"`
	Abbrev string `json:"abbrev"`
	DST    bool   `json:"dst"`
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "convert <zone>",
		Short: "Convert between absolute and civil time",
		Long: `Convert a single timestamp between absolute and civil time.

With --civil the wall-clock reading is resolved to the instants that
display it and classified as unique, skipped or repeated. With --at or
--unix the instant is projected onto the zone's wall clock.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Civil, "civil", "", "wall-clock reading, like 2011-03-13T02:30:00")
	cmd.Flags().StringVar(&opts.At, "at", "", "absolute instant, like 2011-03-13T10:00:00Z")
	cmd.Flags().Int64Var(&opts.Unix, "unix", 0, "absolute instant as Unix seconds")

	return cmd
}

func runConvert(opts *ConvertOptions, zoneName string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	directions := 0
	for _, name := range []string{"civil", "at", "unix"} {
		if cmd.Flags().Changed(name) {
			directions++
		}
	}
	if directions != 1 {
		return outputCommandError(formatter, ErrCodeBadInput, "exactly one of --civil, --at or --unix is required")
	}

	src, closeSources, err := openSources(opts.RootOptions)
	if err != nil {
		return outputCommandError(formatter, ErrCodeBadZone, err.Error())
	}
	defer closeSources()

	z, err := loadZone(src, zoneName)
	if err != nil {
		return outputCommandError(formatter, zoneErrorCode(err), err.Error())
	}
	formatter.VerboseLog("Resolved zone %s against %s", zoneName, src)

	if cmd.Flags().Changed("civil") {
		cs, err := civil.Parse(opts.Civil)
		if err != nil {
			return outputCommandError(formatter, ErrCodeBadInput, err.Error())
		}
		cl, err := z.FromCivil(cs)
		if err != nil {
			return outputCommandError(formatter, ErrCodeBadInput, err.Error())
		}
		return outputCivilResult(formatter, &CivilResult{
			Zone:  zoneName,
			Civil: cs.Normalize().String(),
			Kind:  cl.Kind.String(),
			Pre:   formatInstant(cl.Pre),
			Trans: formatInstant(cl.Trans),
			Post:  formatInstant(cl.Post),
		})
	}

	t := time.Unix(opts.Unix, 0).UTC()
	if cmd.Flags().Changed("at") {
		t, err = parseInstant(opts.At)
		if err != nil {
			return outputCommandError(formatter, ErrCodeBadInput, err.Error())
		}
	}
	lk := z.At(t)
	return outputInstantResult(formatter, &InstantResult{
		Zone:   zoneName,
		At:     formatInstant(t),
		Unix:   t.Unix(),
		Civil:  lk.Civil.String(),
		Offset: lk.Offset,
		Abbrev: lk.Abbrev,
		DST:    lk.IsDST,
	})
}

// outputCivilResult reports a civil-to-absolute resolution.
func outputCivilResult(formatter *OutputFormatter, result *CivilResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%s in %s: %s\n", result.Civil, result.Zone, result.Kind)
	fmt.Fprintf(formatter.Writer, "  pre:   %s\n", result.Pre)
	fmt.Fprintf(formatter.Writer, "  trans: %s\n", result.Trans)
	fmt.Fprintf(formatter.Writer, "  post:  %s\n", result.Post)
	return nil
}

// outputInstantResult reports an absolute-to-civil projection.
func outputInstantResult(formatter *OutputFormatter, result *InstantResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%s in %s:\n", result.At, result.Zone)
	fmt.Fprintf(formatter.Writer, "  civil:  %s\n", result.Civil)
	fmt.Fprintf(formatter.Writer, "  offset: %d\n", result.Offset)
	fmt.Fprintf(formatter.Writer, "  abbrev: %s\n", result.Abbrev)
	fmt.Fprintf(formatter.Writer, "  dst:    %t\n", result.DST)
	return nil
}
