package client

import (
	"context"
	"fmt"
	"math"

	"github.com/mwantia/dungeonrun/internal/analytics"
	"github.com/mwantia/dungeonrun/internal/app"
	"github.com/mwantia/dungeonrun/internal/runs"
	"github.com/mwantia/dungeonrun/internal/tracker"
	"github.com/mwantia/dungeonrun/internal/view"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	config "github.com/mwantia/dungeonrun/internal/config/tracker"
)

var printer = message.NewPrinter(language.English)

// withTracker loads the configuration, opens the tracker for the duration of
// fn and closes it again.
func withTracker(cmd *cobra.Command, fn func(ctx context.Context, t *tracker.Tracker) error) error {
	cfg, err := config.LoadTrackerConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a := app.NewApp(cfg)
	if err := a.Open(ctx); err != nil {
		return err
	}

	t, err := a.Tracker(ctx)
	if err == nil {
		err = fn(ctx, t)
	}
	if err != nil {
		a.Close(ctx)
		return err
	}

	return a.Close(ctx)
}

// viewFlags are the transient filter and sort settings of listing commands.
type viewFlags struct {
	dungeon string
	drop    string
	sort    string
	asc     bool
	desc    bool
}

func (vf *viewFlags) register(cmd *cobra.Command, withSort bool) {
	cmd.Flags().StringVarP(&vf.dungeon, "dungeon", "d", "", "only runs of this dungeon")
	cmd.Flags().StringVar(&vf.drop, "drop", view.AllRuns, "drop filter: a drop name, "+view.AllDrops+" or "+view.AllRuns)
	if withSort {
		cmd.Flags().StringVarP(&vf.sort, "sort", "s", "", "sort field (character, date, dungeon, drops, cost, profit)")
		cmd.Flags().BoolVar(&vf.asc, "asc", false, "sort ascending")
		cmd.Flags().BoolVar(&vf.desc, "desc", false, "sort descending")
		cmd.MarkFlagsMutuallyExclusive("asc", "desc")
	}
}

func (vf *viewFlags) apply(t *tracker.Tracker) error {
	if err := t.SetDungeonFilter(vf.dungeon); err != nil {
		return err
	}
	if err := t.SetDropFilter(vf.drop); err != nil {
		return err
	}

	switch {
	case vf.sort != "":
		field, err := runs.ParseField(vf.sort)
		if err != nil {
			return err
		}
		t.SetSort(field, !vf.desc)
	case vf.asc:
		t.SetSort(t.State().Sort.Field, true)
	case vf.desc:
		t.SetSort(t.State().Sort.Field, false)
	}

	return nil
}

// maxExactInt bounds the values that print as whole numbers.
const maxExactInt = 1 << 53

func formatAmount(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < maxExactInt {
		return printer.Sprintf("%d", int64(v))
	}
	return printer.Sprintf("%.2f", v)
}

func formatAverage(t analytics.Totals) string {
	if !t.HasAverage() {
		return "n/a"
	}
	return printer.Sprintf("%.2f", t.AverageNet)
}

func displayAmount(a runs.Amount) string {
	if a.IsBlank() {
		return "-"
	}
	return a.String()
}

func displayDrops(r runs.Run) string {
	if !r.HasDrops() {
		return "None"
	}
	return r.DropText()
}
