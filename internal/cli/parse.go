package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tzfold/tzfold"
)

// ParseOptions holds flags for the parse command.
type ParseOptions struct {
	*RootOptions
	Layout string // strftime-style layout
}

// ParseResult reports a parsed timestamp.
type ParseResult struct {
	Zone  string `json:"zone"`
	Value string `json:"value"`
	At    string `json:"at"`
	Unix  int64  `json:"unix"`
	Civil string `json:"civil"`
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ParseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "parse <zone> <value>",
		Short: "Parse wall-clock text into an instant",
		Long: `Parse wall-clock text against a layout and resolve it to an absolute
instant in the zone. Skipped readings resolve to the transition instant
and repeated readings to their earlier occurrence; an explicit %z
offset in the input overrides the zone.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Layout, "layout", "%Y-%m-%d %H:%M:%S", "strftime-style layout")

	return cmd
}

func runParse(opts *ParseOptions, zoneName, value string, cmd *cobra.Command) error {
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

	z, err := loadZone(src, zoneName)
	if err != nil {
		return outputCommandError(formatter, zoneErrorCode(err), err.Error())
	}

	t, err := tzfold.Formatter{Strict: true}.Parse(opts.Layout, value, z)
	if err != nil {
		return outputCommandError(formatter, ErrCodeBadInput, err.Error())
	}

	result := &ParseResult{
		Zone:  zoneName,
		Value: value,
		At:    formatInstant(t),
		Unix:  t.Unix(),
		Civil: tzfold.Convert(t, z).String(),
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%s in %s:\n", result.Value, result.Zone)
	fmt.Fprintf(formatter.Writer, "  at:    %s\n", result.At)
	fmt.Fprintf(formatter.Writer, "  unix:  %d\n", result.Unix)
	fmt.Fprintf(formatter.Writer, "  civil: %s\n", result.Civil)
	return nil
}
