package tracker

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/mwantia/dungeonrun/internal/catalog"
	config "github.com/mwantia/dungeonrun/internal/config/tracker"
	"github.com/mwantia/dungeonrun/internal/persist"
	"github.com/mwantia/dungeonrun/internal/runs"
	"github.com/mwantia/dungeonrun/internal/view"
	"github.com/mwantia/dungeonrun/pkg/db/store"
	"github.com/mwantia/dungeonrun/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	ctx     context.Context
	store   *store.MemoryStore
	adapter *persist.Adapter
	catalog *catalog.Catalog
	clock   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := store.NewMemoryStore()
	return &fixture{
		ctx:     context.Background(),
		store:   s,
		adapter: persist.NewAdapter(s, log.Discard()),
		catalog: catalog.FromConfig(config.GetTrackerDefault().Catalog),
		clock:   time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// load opens a fresh tracker over the fixture's store, like a restart would.
func (f *fixture) load(t *testing.T) *Tracker {
	t.Helper()
	tr, err := Load(f.ctx, f.adapter, f.catalog, log.Discard(), runs.WithClock(func() time.Time { return f.clock }))
	require.NoError(t, err)
	return tr
}

func goblin(date string) runs.Draft {
	return runs.Draft{Dungeon: "Goblin Den", Date: date}
}

func TestLoadDefaults(t *testing.T) {
	f := newFixture(t)
	tr := f.load(t)

	assert.Equal(t, []string{"Main"}, tr.Characters())
	assert.Equal(t, "Main", tr.Selected())
	assert.Empty(t, tr.Runs())
	assert.Equal(t, view.DefaultSort(), tr.State().Sort)
	assert.Equal(t, view.AllRuns, tr.State().Drop)
}

func TestAddRunScenario(t *testing.T) {
	f := newFixture(t)
	tr := f.load(t)

	run, ok, err := tr.AddRun(f.ctx, goblin("2024-01-01"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Main", run.Character)
	assert.Equal(t, 150.0, run.Cost.Float(), "blank cost takes the catalog cost")

	ok, err = tr.UpdateRun(f.ctx, run.ID, runs.FieldProfit, "200")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Len(t, tr.View(), 1)
	totals := tr.Totals()
	assert.Equal(t, 1, totals.Count)
	assert.Equal(t, 150.0, totals.Cost)
	assert.Equal(t, 200.0, totals.Profit)
	assert.Equal(t, 50.0, totals.Net)
	assert.Equal(t, 50.0, totals.AverageNet)
}

func TestAddRunKeepsExplicitCostSnapshot(t *testing.T) {
	f := newFixture(t)
	tr := f.load(t)

	draft := goblin("2024-01-01")
	draft.Cost = runs.Text("99")
	run, ok, err := tr.AddRun(f.ctx, draft)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "99", run.Cost.String())
}

func TestAddRunSoftValidation(t *testing.T) {
	f := newFixture(t)
	tr := f.load(t)

	_, ok, err := tr.AddRun(f.ctx, runs.Draft{Date: "2024-01-01"})
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = tr.AddRun(f.ctx, goblin(""))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, tr.SelectCharacter(f.ctx, view.AllCharacters))
	_, ok, err = tr.AddRun(f.ctx, goblin("2024-01-01"))
	require.NoError(t, err)
	assert.False(t, ok, "no run without an active character")

	assert.Empty(t, tr.Runs())
}

func TestAddRunRejectsUnknownCatalogEntries(t *testing.T) {
	f := newFixture(t)
	tr := f.load(t)

	_, _, err := tr.AddRun(f.ctx, runs.Draft{Dungeon: "Goblin Dem", Date: "2024-01-01"})
	assert.ErrorIs(t, err, catalog.ErrUnknownDungeon)

	_, _, err = tr.AddRun(f.ctx, runs.Draft{Dungeon: "Goblin Den", Date: "2024-01-01", Drops: []string{"Spoon"}})
	assert.ErrorIs(t, err, catalog.ErrUnknownDrop)

	_, _, err = tr.AddRun(f.ctx, goblin("01/02/2024"))
	assert.ErrorIs(t, err, ErrInvalidDate)

	assert.Empty(t, tr.Runs())
}

func TestMutationsArePersistedImmediately(t *testing.T) {
	f := newFixture(t)
	tr := f.load(t)

	added, err := tr.AddCharacter(f.ctx, "  Alt  ")
	require.NoError(t, err)
	require.True(t, added)

	run, ok, err := tr.AddRun(f.ctx, runs.Draft{Dungeon: "The Nexus", Date: "2024-01-02", Drops: []string{"Fortune", "Excalibur"}})
	require.NoError(t, err)
	require.True(t, ok)
	_, err = tr.UpdateRun(f.ctx, run.ID, runs.FieldDrops, "Moonlance; Colossus")
	require.NoError(t, err)

	reloaded := f.load(t)
	assert.Equal(t, []string{"Main", "Alt"}, reloaded.Characters())
	assert.Equal(t, "Alt", reloaded.Selected())
	require.Len(t, reloaded.Runs(), 1)
	assert.Equal(t, "Alt", reloaded.Runs()[0].Character)
	assert.Equal(t, []string{"Moonlance", "Colossus"}, reloaded.Runs()[0].Drops)
	assert.Equal(t, tr.Runs(), reloaded.Runs())
}

func TestDeleteAndUndoAcrossReload(t *testing.T) {
	f := newFixture(t)
	tr := f.load(t)

	first, _, err := tr.AddRun(f.ctx, goblin("2024-01-01"))
	require.NoError(t, err)
	second, _, err := tr.AddRun(f.ctx, goblin("2024-01-02"))
	require.NoError(t, err)

	_, ok, err := tr.DeleteRun(f.ctx, first.ID)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = tr.DeleteRun(f.ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	reloaded := f.load(t)
	staged, ok := reloaded.Deleted()
	require.True(t, ok)
	assert.Equal(t, first.ID, staged.ID)

	restored, ok, err := reloaded.UndoDelete(f.ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first.ID, restored.ID)

	final := f.load(t)
	runsAfter := final.Runs()
	require.Len(t, runsAfter, 2)
	assert.Equal(t, second.ID, runsAfter[0].ID)
	assert.Equal(t, first.ID, runsAfter[1].ID)

	_, ok = final.Deleted()
	assert.False(t, ok)
	_, ok, err = final.UndoDelete(f.ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

type batchFailingStore struct {
	*store.MemoryStore
	fail bool
}

func (s *batchFailingStore) Batch(ctx context.Context, changes ...store.Change) error {
	if s.fail {
		return errors.New("write failed")
	}
	return s.MemoryStore.Batch(ctx, changes...)
}

func TestDeleteAndUndoKeepStateOnWriteFailure(t *testing.T) {
	f := newFixture(t)
	s := &batchFailingStore{MemoryStore: f.store}
	f.adapter = persist.NewAdapter(s, log.Discard())
	tr := f.load(t)

	first, _, err := tr.AddRun(f.ctx, goblin("2024-01-01"))
	require.NoError(t, err)
	_, _, err = tr.AddRun(f.ctx, goblin("2024-01-02"))
	require.NoError(t, err)
	before := tr.Runs()

	s.fail = true
	_, ok, err := tr.DeleteRun(f.ctx, first.ID)
	require.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, before, tr.Runs())
	_, staged := tr.Deleted()
	assert.False(t, staged)

	reloaded := f.load(t)
	assert.Equal(t, before, reloaded.Runs())
	_, staged = reloaded.Deleted()
	assert.False(t, staged)

	s.fail = false
	_, ok, err = tr.DeleteRun(f.ctx, first.ID)
	require.NoError(t, err)
	require.True(t, ok)
	afterDelete := tr.Runs()

	s.fail = true
	_, ok, err = tr.UndoDelete(f.ctx)
	require.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, afterDelete, tr.Runs())
	deleted, staged := tr.Deleted()
	require.True(t, staged)
	assert.Equal(t, first.ID, deleted.ID)

	reloaded = f.load(t)
	assert.Equal(t, afterDelete, reloaded.Runs())
	deleted, staged = reloaded.Deleted()
	require.True(t, staged)
	assert.Equal(t, first.ID, deleted.ID)
}

func TestCharacterManagement(t *testing.T) {
	f := newFixture(t)
	tr := f.load(t)

	for _, name := range []string{"", "   ", "Main", "ThisNameIsFarTooLongToKeep", view.AllCharacters} {
		added, err := tr.AddCharacter(f.ctx, name)
		require.NoError(t, err)
		assert.False(t, added, "name %q accepted", name)
	}

	removed, err := tr.RemoveCharacter(f.ctx, "Main")
	require.NoError(t, err)
	assert.False(t, removed, "last character cannot be removed")

	_, err = tr.AddCharacter(f.ctx, "Alt")
	require.NoError(t, err)
	_, _, err = tr.AddRun(f.ctx, goblin("2024-01-01"))
	require.NoError(t, err)

	removed, err = tr.RemoveCharacter(f.ctx, "Alt")
	require.NoError(t, err)
	require.True(t, removed)
	assert.Equal(t, "Main", tr.Selected())

	// the orphaned run stays, visible under all characters only
	assert.Len(t, tr.Runs(), 1)
	assert.Empty(t, tr.View())
	require.NoError(t, tr.SelectCharacter(f.ctx, view.AllCharacters))
	assert.Len(t, tr.View(), 1)

	err = tr.SelectCharacter(f.ctx, "Alt")
	assert.ErrorIs(t, err, ErrUnknownCharacter)

	report := tr.Report(true)
	require.Len(t, report.Characters, 1)
	assert.Equal(t, "Main", report.Characters[0].Key)
	assert.Zero(t, report.Characters[0].Count)
	assert.Equal(t, 1, report.Totals.Count)
}

func TestFiltersAndSorting(t *testing.T) {
	f := newFixture(t)
	tr := f.load(t)

	a, _, _ := tr.AddRun(f.ctx, runs.Draft{Dungeon: "Goblin Den", Date: "2024-01-01"})
	b, _, _ := tr.AddRun(f.ctx, runs.Draft{Dungeon: "The Nexus", Date: "2024-01-03", Drops: []string{"Fortune"}})
	c, _, _ := tr.AddRun(f.ctx, runs.Draft{Dungeon: "The Nexus", Date: "2024-01-02"})

	// default: date descending
	assert.Equal(t, []int64{b.ID, c.ID, a.ID}, idsOf(tr.View()))

	require.NoError(t, tr.SetDungeonFilter("The Nexus"))
	assert.Equal(t, []int64{b.ID, c.ID}, idsOf(tr.View()))

	require.NoError(t, tr.SetDropFilter(view.AllDrops))
	assert.Equal(t, []int64{b.ID}, idsOf(tr.View()))

	assert.ErrorIs(t, tr.SetDropFilter("Spoon"), ErrUnknownFilter)
	assert.ErrorIs(t, tr.SetDungeonFilter("Nowhere"), catalog.ErrUnknownDungeon)

	tr.ClearFilters()
	assert.Len(t, tr.View(), 3)

	tr.SortBy(runs.FieldDrops)
	assert.Equal(t, b.ID, tr.View()[0].ID)
	tr.SortBy(runs.FieldDrops)
	assert.False(t, tr.State().Sort.Ascending)
	assert.Equal(t, b.ID, tr.View()[0].ID, "runs with drops lead in both directions")

	tr.SetSort(runs.FieldCost, true)
	assert.Equal(t, a.ID, tr.View()[0].ID)
}

func TestReportScopes(t *testing.T) {
	f := newFixture(t)
	tr := f.load(t)

	tr.AddRun(f.ctx, runs.Draft{Dungeon: "Goblin Den", Date: "2024-01-01", Drops: []string{"Fortune"}})
	tr.AddRun(f.ctx, runs.Draft{Dungeon: "The Nexus", Date: "2024-01-02"})
	require.NoError(t, tr.SetDungeonFilter("Goblin Den"))

	all := tr.Report(true)
	filtered := tr.Report(false)
	assert.Equal(t, 2, all.Totals.Count)
	assert.Equal(t, 1, filtered.Totals.Count)
	assert.Len(t, all.Dungeons, 5)
	assert.Equal(t, []string{"Fortune"}, []string{filtered.Drops[0].Drop})

	require.NoError(t, tr.SetDropFilter("Excalibur"))
	assert.True(t, math.IsNaN(tr.Totals().AverageNet))
}

func TestUpdateRunValidation(t *testing.T) {
	f := newFixture(t)
	tr := f.load(t)
	run, _, _ := tr.AddRun(f.ctx, goblin("2024-01-01"))

	_, err := tr.UpdateRun(f.ctx, run.ID, runs.FieldProfit, "lots")
	assert.Error(t, err)

	_, err = tr.UpdateRun(f.ctx, run.ID, runs.FieldDungeon, "The Nexus")
	assert.ErrorIs(t, err, runs.ErrImmutableField)

	_, err = tr.UpdateRun(f.ctx, run.ID, runs.FieldDrops, "Fortun")
	assert.ErrorIs(t, err, catalog.ErrUnknownDrop)

	ok, err := tr.UpdateRun(f.ctx, 12345, runs.FieldProfit, "1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = tr.UpdateRun(f.ctx, run.ID, runs.FieldProfit, "")
	require.NoError(t, err)
	assert.True(t, ok)
	got := tr.Runs()[0]
	assert.True(t, got.Profit.IsBlank())
}

func TestUpdateRunRejectsNonFiniteAmounts(t *testing.T) {
	f := newFixture(t)
	tr := f.load(t)
	run, _, _ := tr.AddRun(f.ctx, goblin("2024-01-01"))
	_, err := tr.UpdateRun(f.ctx, run.ID, runs.FieldProfit, "200")
	require.NoError(t, err)

	for _, value := range []string{"Inf", "-inf", "NaN", "0x1p4"} {
		ok, err := tr.UpdateRun(f.ctx, run.ID, runs.FieldProfit, value)
		assert.Error(t, err, value)
		assert.False(t, ok, value)

		ok, err = tr.UpdateRun(f.ctx, run.ID, runs.FieldCost, value)
		assert.Error(t, err, value)
		assert.False(t, ok, value)
	}

	reloaded := f.load(t)
	assert.Equal(t, "200", reloaded.Runs()[0].Profit.String())

	totals := reloaded.Totals()
	assert.False(t, math.IsInf(totals.Net, 0))
	assert.Equal(t, totals.Profit-totals.Cost, totals.Net)
}

func TestExportCSVUsesView(t *testing.T) {
	f := newFixture(t)
	tr := f.load(t)

	tr.AddRun(f.ctx, runs.Draft{Dungeon: "Goblin Den", Date: "2024-01-01", Drops: []string{"Fortune", "Excalibur"}})
	tr.AddRun(f.ctx, runs.Draft{Dungeon: "The Nexus", Date: "2024-01-02"})
	tr.SetSort(runs.FieldDate, true)

	var buf bytes.Buffer
	require.NoError(t, tr.ExportCSV(&buf, true))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "Fortune, Excalibur", records[1][3])
	assert.Equal(t, "The Nexus", records[2][2])
	assert.Equal(t, []string{"Totals", "", "", "", "650", "0"}, records[3])
}

func TestSplitDrops(t *testing.T) {
	assert.Equal(t, []string{"Fortune", "Fists of Fury"}, SplitDrops(" Fortune ;, Fists of Fury,"))
	assert.Empty(t, SplitDrops(""))
}

func idsOf(rs []runs.Run) []int64 {
	out := make([]int64, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}
