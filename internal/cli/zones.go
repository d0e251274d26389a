package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ZonesResult lists the zone names a source chain carries.
type ZonesResult struct {
	Zones []string `json:"zones"`
	Count int      `json:"count"`
}

// NewZonesCommand creates the zones command.
func NewZonesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "zones",
		Short: "List the zones the configured sources carry",
		Long: `List every zone name the configured sources carry, sorted. With no
--dir or --bundle flags the system zoneinfo directories are scanned.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runZones(rootOpts, cmd)
		},
	}

	return cmd
}

func runZones(opts *RootOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	src, closeSources, err := openSources(opts)
	if err != nil {
		return outputCommandError(formatter, ErrCodeBadZone, err.Error())
	}
	defer closeSources()

	names, err := src.Zones()
	if err != nil {
		return outputCommandError(formatter, ErrCodeGeneric, err.Error())
	}
	formatter.VerboseLog("%d zone(s) from %s", len(names), src)

	if formatter.Format == "json" {
		if names == nil {
			names = []string{}
		}
		return formatter.Success(&ZonesResult{Zones: names, Count: len(names)})
	}
	for _, name := range names {
		fmt.Fprintln(formatter.Writer, name)
	}
	return nil
}
