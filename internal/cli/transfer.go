package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/rollcall/internal/store"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	Out string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all data as JSON",
		Long: `Export all data as indented JSON.

Writes attendance_backup_YYYY-MM-DD.json in the current directory unless
--out names another file. Use --out - to write to stdout.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(a *app) error {
				return runExport(a, cmd, opts)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output file (default attendance_backup_<date>.json, - for stdout)")

	return cmd
}

func runExport(a *app, cmd *cobra.Command, opts *ExportOptions) error {
	if opts.Out == "-" {
		return a.store.Export(cmd.Context(), a.out.Writer)
	}

	path := opts.Out
	if path == "" {
		path = store.ExportFileName(time.Now())
	}

	var buf bytes.Buffer
	if err := a.store.Export(cmd.Context(), &buf); err != nil {
		return commandError(a.out, ErrCodeStorage, "export failed", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return commandError(a.out, ErrCodeStorage, "failed to write export", err)
	}

	if a.out.Format == "json" {
		return a.out.Success(map[string]interface{}{"path": path, "bytes": buf.Len()})
	}
	fmt.Fprintf(a.out.Writer, "Data exported to %s\n", path)
	return nil
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Replace all data with an exported JSON file",
		Long: `Replace all data with the contents of an exported JSON file.

The current data is backed up first. If the file is invalid or cannot be
saved, the backup is restored and the command exits with status 1.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(a *app) error {
				return runImport(a, cmd, args[0])
			})
		},
	}
}

func runImport(a *app, cmd *cobra.Command, path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return commandError(a.out, ErrCodeArgs, "failed to read import file", err)
	}

	err = a.store.Import(cmd.Context(), path, payload)

	var ie *store.ImportError
	switch {
	case err == nil:
		return a.mutation(true, map[string]string{"imported": path})
	case errors.Is(err, store.ErrNotJSONFile):
		return commandError(a.out, ErrCodeArgs, err.Error(), nil)
	case errors.As(err, &ie) && ie.Critical():
		return rejected(a.out, ErrCodeCritical, err.Error(), nil)
	case errors.As(err, &ie):
		return rejected(a.out, ErrCodeImport, err.Error(), nil)
	default:
		return rejected(a.out, ErrCodeStorage, err.Error(), nil)
	}
}
