package client

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/mwantia/dungeonrun/internal/tracker"
	"github.com/spf13/cobra"
)

func NewStatsCommand() *cobra.Command {
	var vf viewFlags
	var all bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show run analytics",
		Long: `Show totals and per-dungeon, per-character and per-drop breakdowns.

By default the selected character and filters apply; --all aggregates every run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTracker(cmd, func(ctx context.Context, t *tracker.Tracker) error {
				if err := vf.apply(t); err != nil {
					return err
				}

				report := t.Report(all)
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

				fmt.Fprintf(w, "Runs:\t%d\n", report.Totals.Count)
				fmt.Fprintf(w, "Total cost:\t%s\n", formatAmount(report.Totals.Cost))
				fmt.Fprintf(w, "Total profit:\t%s\n", formatAmount(report.Totals.Profit))
				fmt.Fprintf(w, "Profit/Loss:\t%s\n", formatAmount(report.Totals.Net))
				fmt.Fprintf(w, "Profit/Loss per run:\t%s\n", formatAverage(report.Totals))

				fmt.Fprintln(w, "\nDUNGEON\tRUNS\tCOST\tPROFIT\tAVG PROFIT")
				for _, b := range report.Dungeons {
					fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", b.Key, b.Count, formatAmount(b.Cost), formatAmount(b.Profit), formatAmount(b.AverageProfit))
				}

				fmt.Fprintln(w, "\nCHARACTER\tRUNS\tCOST\tPROFIT\tAVG PROFIT")
				for _, b := range report.Characters {
					fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", b.Key, b.Count, formatAmount(b.Cost), formatAmount(b.Profit), formatAmount(b.AverageProfit))
				}

				if len(report.Drops) > 0 {
					fmt.Fprintln(w, "\nDROP\tRUNS")
					for _, d := range report.Drops {
						fmt.Fprintf(w, "%s\t%d\n", d.Drop, d.Count)
					}
				}

				return w.Flush()
			})
		},
	}

	vf.register(cmd, false)
	cmd.Flags().BoolVarP(&all, "all", "a", false, "aggregate every run, ignoring selection and filters")

	return cmd
}
