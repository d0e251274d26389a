package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string   // "json" | "text"
	Dirs    []string // zoneinfo trees searched before the system path
	Bundles []string // packed bundles searched after Dirs
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the tzfold CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "tzfold",
		Short: "tzfold - time zone rules, folds and gaps",
		Long: `Inspect compiled time zone rules, convert between absolute and civil
time, and format or parse timestamps with the DST folds and gaps made
explicit.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringArrayVar(&opts.Dirs, "dir", nil, "zoneinfo directory to resolve zones against (repeatable)")
	cmd.PersistentFlags().StringArrayVar(&opts.Bundles, "bundle", nil, "packed zone bundle to resolve zones against (repeatable)")

	// Add subcommands
	cmd.AddCommand(NewZdumpCommand(opts))
	cmd.AddCommand(NewConvertCommand(opts))
	cmd.AddCommand(NewFmtCommand(opts))
	cmd.AddCommand(NewParseCommand(opts))
	cmd.AddCommand(NewZonesCommand(opts))
	cmd.AddCommand(NewPackCommand(opts))
	cmd.AddCommand(NewMkzoneCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
