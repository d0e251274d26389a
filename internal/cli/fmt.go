package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tzfold/tzfold"
)

// FmtOptions holds flags for the fmt command.
type FmtOptions struct {
	*RootOptions
	Layout string // strftime-style layout
	At     string // absolute instant to format
	Unix   int64  // absolute instant as Unix seconds
}

// FmtResult reports a formatted instant.
type FmtResult struct {
	Zone   string `json:"zone"`
	At     string `json:"at"`
	Layout string `json:"layout"`
	Output string `json:"output"`
}

// NewFmtCommand creates the fmt command.
func NewFmtCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FmtOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fmt <zone>",
		Short: "Format an instant as wall-clock text",
		Long: `Format an absolute instant as the wall-clock text a zone displays.

The layout uses strftime-style directives. Unrecognized directives are
rejected rather than copied through, so typos surface as errors.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Layout, "layout", "%Y-%m-%d %H:%M:%S %Z", "strftime-style layout")
	cmd.Flags().StringVar(&opts.At, "at", "", "absolute instant, like 2011-03-13T10:00:00Z")
	cmd.Flags().Int64Var(&opts.Unix, "unix", 0, "absolute instant as Unix seconds")

	return cmd
}

func runFmt(opts *FmtOptions, zoneName string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if cmd.Flags().Changed("at") == cmd.Flags().Changed("unix") {
		return outputCommandError(formatter, ErrCodeBadInput, "exactly one of --at or --unix is required")
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

	t := time.Unix(opts.Unix, 0).UTC()
	if cmd.Flags().Changed("at") {
		t, err = parseInstant(opts.At)
		if err != nil {
			return outputCommandError(formatter, ErrCodeBadInput, err.Error())
		}
	}

	out, err := tzfold.Formatter{Strict: true}.Format(opts.Layout, t, z)
	if err != nil {
		return outputCommandError(formatter, ErrCodeBadInput, err.Error())
	}

	if formatter.Format == "json" {
		return formatter.Success(&FmtResult{
			Zone:   zoneName,
			At:     formatInstant(t),
			Layout: opts.Layout,
			Output: out,
		})
	}
	fmt.Fprintln(formatter.Writer, out)
	return nil
}
