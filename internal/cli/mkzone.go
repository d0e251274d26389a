package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tzfold/tzfold/internal/tzif"
	"github.com/tzfold/tzfold/internal/zonespec"
)

// MkzoneOptions holds flags for the mkzone command.
type MkzoneOptions struct {
	*RootOptions
	OutDir string // root of the zoneinfo tree to write
}

// CompiledZone reports one zone written by mkzone.
type CompiledZone struct {
	Zone        string `json:"zone"`
	Path        string `json:"path"`
	Version     int    `json:"version"`
	Types       int    `json:"types"`
	Transitions int    `json:"transitions"`
}

// NewMkzoneCommand creates the mkzone command.
func NewMkzoneCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MkzoneOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "mkzone <fixture.cue>...",
		Short: "Compile CUE zone definitions to TZif files",
		Long: `Compile CUE zone definitions into binary TZif files laid out as a
zoneinfo tree under the output directory, ready for --dir, pack or
$TZDIR.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMkzone(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.OutDir, "out-dir", "o", ".", "directory to write the zoneinfo tree into")

	return cmd
}

func runMkzone(opts *MkzoneOptions, files []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	var compiled []*CompiledZone
	var errs []error
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			errs = append(errs, fmt.Errorf("reading %s: %w", file, err))
			continue
		}
		zones, err := zonespec.CompileBytes(data, filepath.Base(file))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, z := range zones {
			formatter.VerboseLog("Compiling zone: %s", z.Name)
			blob, err := tzif.Encode(z)
			if err != nil {
				errs = append(errs, fmt.Errorf("encoding %s: %w", z.Name, err))
				continue
			}
			path := filepath.Join(opts.OutDir, filepath.FromSlash(z.Name))
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return outputCommandError(formatter, ErrCodeWriteFailed, err.Error())
			}
			if err := os.WriteFile(path, blob, 0o644); err != nil {
				return outputCommandError(formatter, ErrCodeWriteFailed, err.Error())
			}
			compiled = append(compiled, &CompiledZone{
				Zone:        z.Name,
				Path:        path,
				Version:     z.Version,
				Types:       len(z.Types),
				Transitions: len(z.Trans),
			})
		}
	}

	if len(errs) > 0 {
		return outputMkzoneErrors(formatter, errs)
	}

	if formatter.Format == "json" {
		return formatter.Success(compiled)
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled %d zone(s) from %d file(s)\n", len(compiled), len(files))
	for _, c := range compiled {
		fmt.Fprintf(formatter.Writer, "  %s: %d type(s), %d transition(s) → %s\n",
			c.Zone, c.Types, c.Transitions, c.Path)
	}
	return nil
}

// outputMkzoneErrors outputs every compilation error, with source
// positions where the definition supplied them.
func outputMkzoneErrors(formatter *OutputFormatter, errs []error) error {
	if formatter.Format == "json" {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := parseMkzoneError(err)
			cliErrors[i] = CLIError{
				Code:    code,
				Message: message,
			}
		}

		response := CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors, // Include all errors in data
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		code, message := parseMkzoneError(err)
		var compileErr *zonespec.CompileError
		if errors.As(err, &compileErr) && compileErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				compileErr.Pos.Filename(),
				compileErr.Pos.Line(),
				compileErr.Pos.Column())
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", code, message)
	}

	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// parseMkzoneError extracts error code and message from an error.
func parseMkzoneError(err error) (string, string) {
	var compileErr *zonespec.CompileError
	if errors.As(err, &compileErr) {
		return ErrCodeCompile, fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message)
	}
	return ErrCodeGeneric, err.Error()
}
