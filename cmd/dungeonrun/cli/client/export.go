package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mwantia/dungeonrun/internal/export"
	"github.com/mwantia/dungeonrun/internal/tracker"
	"github.com/spf13/cobra"
)

func NewExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export runs",
	}

	cmd.AddCommand(newExportCSVCommand())

	return cmd
}

func newExportCSVCommand() *cobra.Command {
	var vf viewFlags
	var output string
	var totals bool

	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Export the listed runs as CSV",
		Long: `Export the runs shown by 'run ls' with the same filters and sorting as CSV.

The file is written atomically; a failed export leaves any existing file untouched.
Use '--output -' to write to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTracker(cmd, func(ctx context.Context, t *tracker.Tracker) error {
				if err := vf.apply(t); err != nil {
					return err
				}

				if output == "-" {
					return t.ExportCSV(cmd.OutOrStdout(), totals)
				}

				filename := output
				if filename == "" {
					filename = export.Filename(time.Now())
				}

				if err := writeFileAtomic(filename, func(w io.Writer) error {
					return t.ExportCSV(w, totals)
				}); err != nil {
					return fmt.Errorf("failed to export csv: %w", err)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d runs to %s\n", len(t.View()), filename)
				return nil
			})
		},
	}

	vf.register(cmd, true)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default is dungeon_runs_<date>.csv)")
	cmd.Flags().BoolVar(&totals, "totals", false, "append a totals row")

	return cmd
}

// writeFileAtomic writes to a temporary file next to filename and renames it
// into place once write succeeded.
func writeFileAtomic(filename string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), ".dungeonrun-export-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), filename)
}
