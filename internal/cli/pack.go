package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tzfold/tzfold/internal/source"
)

// PackOptions holds flags for the pack command.
type PackOptions struct {
	*RootOptions
	Out           string   // bundle file to write
	TZDataVersion string   // tzdata release stamped into the metadata
	Zones         []string // subset of zones to pack
}

// PackResult reports a written bundle.
type PackResult struct {
	Path          string `json:"path"`
	Zones         int    `json:"zones"`
	BuildID       string `json:"build_id"`
	TZDataVersion string `json:"tzdata_version,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// NewPackCommand creates the pack command.
func NewPackCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PackOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "pack <zoneinfo-dir>",
		Short: "Pack a zoneinfo tree into a bundle",
		Long: `Pack compiled zones from a zoneinfo tree into a single bundle file
with provenance metadata. Every blob is decoded before it is admitted,
so a bundle never carries data its readers would reject.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPack(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "bundle file to write (required)")
	cmd.Flags().StringVar(&opts.TZDataVersion, "tzdata-version", "", "tzdata release the tree came from, like 2025a")
	cmd.Flags().StringArrayVar(&opts.Zones, "zone", nil, "pack only this zone (repeatable)")
	cmd.MarkFlagRequired("out")

	return cmd
}

func runPack(opts *PackOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	src := source.NewDir(dir)
	names := opts.Zones
	if len(names) == 0 {
		var err error
		names, err = src.Zones()
		if err != nil {
			return outputCommandError(formatter, ErrCodeNotFound, err.Error())
		}
	}
	if len(names) == 0 {
		return outputCommandError(formatter, ErrCodeNotFound, fmt.Sprintf("no zones found in %s", dir))
	}

	zones := make(map[string][]byte, len(names))
	for _, name := range names {
		data, err := src.Lookup(name)
		if err != nil {
			return outputCommandError(formatter, zoneErrorCode(err), err.Error())
		}
		zones[name] = data
		formatter.VerboseLog("Packing zone: %s", name)
	}

	meta, err := source.Pack(opts.Out, opts.TZDataVersion, zones)
	if err != nil {
		return outputCommandError(formatter, ErrCodeWriteFailed, err.Error())
	}

	result := &PackResult{
		Path:          opts.Out,
		Zones:         len(zones),
		BuildID:       meta.BuildID,
		TZDataVersion: meta.TZDataVersion,
		CreatedAt:     meta.CreatedAt,
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Packed %d zone(s) into %s\n", result.Zones, result.Path)
	fmt.Fprintf(formatter.Writer, "  build id:       %s\n", result.BuildID)
	if result.TZDataVersion != "" {
		fmt.Fprintf(formatter.Writer, "  tzdata version: %s\n", result.TZDataVersion)
	}
	return nil
}
