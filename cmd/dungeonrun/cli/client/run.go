package client

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/mwantia/dungeonrun/internal/runs"
	"github.com/mwantia/dungeonrun/internal/tracker"
	"github.com/spf13/cobra"
)

func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Record and manage dungeon runs",
		Long:  "Add, list, edit and delete dungeon runs of the selected character.",
	}

	cmd.AddCommand(newRunAddCommand())
	cmd.AddCommand(newRunListCommand())
	cmd.AddCommand(newRunRemoveCommand())
	cmd.AddCommand(newRunUndoCommand())
	cmd.AddCommand(newRunSetCommand())

	return cmd
}

func newRunAddCommand() *cobra.Command {
	var dungeon, cost, profit, date string
	var drops []string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a dungeon run",
		Long: `Record a dungeon run for the selected character.

The cost defaults to the dungeon's catalog cost and the date to today.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			draft := runs.Draft{
				Dungeon: dungeon,
				Drops:   drops,
				Date:    date,
			}

			var err error
			if draft.Cost, err = runs.ParseAmount(cost); err != nil {
				return err
			}
			if draft.Profit, err = runs.ParseAmount(profit); err != nil {
				return err
			}

			return withTracker(cmd, func(ctx context.Context, t *tracker.Tracker) error {
				run, ok, err := t.AddRun(ctx, draft)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "No run added")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added run %d\n", run.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&dungeon, "dungeon", "d", "", "dungeon name")
	cmd.Flags().StringArrayVar(&drops, "drop", nil, "item drop (repeatable)")
	cmd.Flags().StringVar(&cost, "cost", "", "run cost (default is the catalog cost)")
	cmd.Flags().StringVar(&profit, "profit", "", "run profit")
	cmd.Flags().StringVar(&date, "date", time.Now().Format(time.DateOnly), "run date (YYYY-MM-DD)")
	cmd.MarkFlagRequired("dungeon")

	return cmd
}

func newRunListCommand() *cobra.Command {
	var vf viewFlags

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List runs",
		Long:  "List the runs of the selected character, filtered and sorted, followed by their totals.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTracker(cmd, func(ctx context.Context, t *tracker.Tracker) error {
				if err := vf.apply(t); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				rs := t.View()
				if len(rs) == 0 {
					fmt.Fprintln(out, "No runs yet. Add your first dungeon run!")
					return nil
				}

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tCHARACTER\tDATE\tDUNGEON\tDROPS\tCOST\tPROFIT")
				for _, r := range rs {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
						r.ID, r.Character, r.Date, r.Dungeon, displayDrops(r), displayAmount(r.Cost), displayAmount(r.Profit))
				}

				totals := t.Totals()
				fmt.Fprintf(w, "TOTALS\t%d\t\t\t\t%s\t%s\n", totals.Count, formatAmount(totals.Cost), formatAmount(totals.Profit))
				if err := w.Flush(); err != nil {
					return err
				}

				fmt.Fprintf(out, "\nProfit/Loss: %s\nProfit/Loss per Run: %s\n", formatAmount(totals.Net), formatAverage(totals))
				if deleted, ok := t.Deleted(); ok {
					fmt.Fprintf(out, "Last deleted run %d can be restored with 'run undo'\n", deleted.ID)
				}
				return nil
			})
		},
	}

	vf.register(cmd, true)

	return cmd
}

func newRunRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a run",
		Long:  "Delete a run. The most recently deleted run can be restored with 'run undo'.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return withTracker(cmd, func(ctx context.Context, t *tracker.Tracker) error {
				_, ok, err := t.DeleteRun(ctx, id)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintf(cmd.OutOrStdout(), "No run with id %d\n", id)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %d\n", id)
				return nil
			})
		},
	}
}

func newRunUndoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Restore the last deleted run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTracker(cmd, func(ctx context.Context, t *tracker.Tracker) error {
				run, ok, err := t.UndoDelete(ctx)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing to undo")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Restored run %d\n", run.ID)
				return nil
			})
		},
	}
}

func newRunSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <id> <profit|cost|drops> [value]",
		Short: "Edit a run",
		Long: `Edit the profit, cost or drops of a run.

An omitted value clears the field. Drops are separated by commas or semicolons.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			field, err := runs.ParseField(args[1])
			if err != nil {
				return err
			}

			value := ""
			if len(args) == 3 {
				value = args[2]
			}

			return withTracker(cmd, func(ctx context.Context, t *tracker.Tracker) error {
				ok, err := t.UpdateRun(ctx, id, field, value)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintf(cmd.OutOrStdout(), "No run with id %d\n", id)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s of run %d\n", field, id)
				return nil
			})
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid run id '%s'", s)
	}
	return id, nil
}
