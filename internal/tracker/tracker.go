package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mwantia/dungeonrun/internal/analytics"
	"github.com/mwantia/dungeonrun/internal/catalog"
	"github.com/mwantia/dungeonrun/internal/export"
	"github.com/mwantia/dungeonrun/internal/persist"
	"github.com/mwantia/dungeonrun/internal/runs"
	"github.com/mwantia/dungeonrun/internal/view"
	"github.com/mwantia/dungeonrun/pkg/log"
)

// MaxCharacterName limits the length of a character name in runes.
const MaxCharacterName = 20

var (
	ErrUnknownCharacter = errors.New("unknown character")
	ErrInvalidDate      = errors.New("invalid date")
	ErrUnknownFilter    = errors.New("unknown drop filter")
)

// State is the session-wide selection, filter and sort state.
type State struct {
	Characters []string
	Selected   string
	Dungeon    string
	Drop       string
	Sort       view.Sort
}

// Filter returns the filter described by the current state.
func (s State) Filter() view.Filter {
	return view.Filter{
		Character: s.Selected,
		Dungeon:   s.Dungeon,
		Drop:      s.Drop,
	}
}

// Tracker owns the run repository and the session state. Every mutation is
// written through to the adapter before the method returns.
type Tracker struct {
	state   State
	repo    *runs.Repository
	adapter *persist.Adapter
	catalog *catalog.Catalog
	log     log.LoggerService
}

// Load restores the tracker from the adapter.
func Load(ctx context.Context, adapter *persist.Adapter, cat *catalog.Catalog, logger log.LoggerService, opts ...runs.Option) (*Tracker, error) {
	characters, err := adapter.LoadCharacters(ctx)
	if err != nil {
		return nil, err
	}

	selected, err := adapter.LoadSelected(ctx, characters, func(name string) bool {
		return name == view.AllCharacters || slices.Contains(characters, name)
	})
	if err != nil {
		return nil, err
	}

	loaded, err := adapter.LoadRuns(ctx)
	if err != nil {
		return nil, err
	}

	deleted, err := adapter.LoadDeleted(ctx)
	if err != nil {
		return nil, err
	}

	t := &Tracker{
		state: State{
			Characters: characters,
			Selected:   selected,
			Drop:       view.AllRuns,
			Sort:       view.DefaultSort(),
		},
		repo:    runs.NewRepository(loaded, append(slices.Clone(opts), runs.WithDeleted(deleted))...),
		adapter: adapter,
		catalog: cat,
		log:     logger,
	}

	logger.Debug("Loaded %d runs for %d characters (selected: '%s')", len(loaded), len(characters), selected)
	return t, nil
}

func (t *Tracker) State() State {
	s := t.state
	s.Characters = slices.Clone(s.Characters)
	return s
}

// Characters

func (t *Tracker) Characters() []string {
	return slices.Clone(t.state.Characters)
}

func (t *Tracker) Selected() string {
	return t.state.Selected
}

// AddCharacter appends a new character and selects it. Blank, overlong or
// duplicate names are ignored.
func (t *Tracker) AddCharacter(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxCharacterName || name == view.AllCharacters {
		return false, nil
	}
	if slices.Contains(t.state.Characters, name) {
		return false, nil
	}

	t.state.Characters = append(t.state.Characters, name)
	t.state.Selected = name

	if err := t.adapter.SaveCharacters(ctx, t.state.Characters); err != nil {
		return false, err
	}
	if err := t.adapter.SaveSelected(ctx, t.state.Selected); err != nil {
		return false, err
	}

	t.log.Info("Added character '%s'", name)
	return true, nil
}

// RemoveCharacter drops name from the character list. Its runs are kept
// unchanged. The last remaining character cannot be removed.
func (t *Tracker) RemoveCharacter(ctx context.Context, name string) (bool, error) {
	i := slices.Index(t.state.Characters, name)
	if i < 0 || len(t.state.Characters) <= 1 {
		return false, nil
	}

	t.state.Characters = slices.Delete(t.state.Characters, i, i+1)
	if err := t.adapter.SaveCharacters(ctx, t.state.Characters); err != nil {
		return false, err
	}

	if t.state.Selected == name {
		t.state.Selected = t.state.Characters[0]
		if err := t.adapter.SaveSelected(ctx, t.state.Selected); err != nil {
			return false, err
		}
	}

	t.log.Info("Removed character '%s'", name)
	return true, nil
}

// SelectCharacter activates a listed character or view.AllCharacters.
func (t *Tracker) SelectCharacter(ctx context.Context, name string) error {
	if name != view.AllCharacters && !slices.Contains(t.state.Characters, name) {
		return fmt.Errorf("%w '%s'", ErrUnknownCharacter, name)
	}

	t.state.Selected = name
	return t.adapter.SaveSelected(ctx, name)
}

// Runs

// AddRun records a run for the selected character. The dungeon and drops
// must exist in the catalog; a blank cost takes the dungeon's catalog cost.
// A draft missing its dungeon or date, or added without an active character,
// is ignored and ok is false.
func (t *Tracker) AddRun(ctx context.Context, draft runs.Draft) (runs.Run, bool, error) {
	draft.Character = t.activeCharacter()

	if draft.Dungeon != "" {
		dungeon, err := t.catalog.ResolveDungeon(draft.Dungeon)
		if err != nil {
			return runs.Run{}, false, err
		}
		if draft.Cost.IsBlank() {
			draft.Cost = runs.Number(dungeon.Cost)
		}
	}

	drops, err := t.catalog.ResolveDrops(draft.Drops)
	if err != nil {
		return runs.Run{}, false, err
	}
	draft.Drops = drops

	if draft.Date != "" {
		if _, err := time.Parse(time.DateOnly, draft.Date); err != nil {
			return runs.Run{}, false, fmt.Errorf("%w '%s': expected YYYY-MM-DD", ErrInvalidDate, draft.Date)
		}
	}

	run, ok := t.repo.Add(draft)
	if !ok {
		t.log.Debug("Ignoring incomplete run draft")
		return runs.Run{}, false, nil
	}

	if err := t.saveRuns(ctx); err != nil {
		return runs.Run{}, false, err
	}

	t.log.Info("Added run %d (%s, %s)", run.ID, run.Character, run.Dungeon)
	return run, true, nil
}

// DeleteRun removes a run and stages it for UndoDelete.
func (t *Tracker) DeleteRun(ctx context.Context, id int64) (runs.Run, bool, error) {
	snap := t.repo.Snapshot()
	removed, ok := t.repo.Remove(id)
	if !ok {
		return runs.Run{}, false, nil
	}

	if err := t.adapter.SaveRunsAndDeleted(ctx, t.repo.All(), &removed); err != nil {
		t.repo.Reset(snap)
		return runs.Run{}, false, err
	}

	t.log.Info("Deleted run %d", id)
	return removed, true, nil
}

// UndoDelete appends the most recently deleted run back to the list.
func (t *Tracker) UndoDelete(ctx context.Context) (runs.Run, bool, error) {
	snap := t.repo.Snapshot()
	restored, ok := t.repo.RestoreLast()
	if !ok {
		return runs.Run{}, false, nil
	}

	if err := t.adapter.SaveRunsAndDeleted(ctx, t.repo.All(), nil); err != nil {
		t.repo.Reset(snap)
		return runs.Run{}, false, err
	}

	t.log.Info("Restored run %d", restored.ID)
	return restored, true, nil
}

// UpdateRun sets a mutable field from its text form. Profit and cost accept a
// number or blank, drops accept a comma or semicolon separated list.
func (t *Tracker) UpdateRun(ctx context.Context, id int64, field runs.Field, value string) (bool, error) {
	var parsed any

	switch field {
	case runs.FieldProfit, runs.FieldCost:
		amount, err := runs.ParseAmount(value)
		if err != nil {
			return false, err
		}
		parsed = amount
	case runs.FieldDrops:
		drops, err := t.catalog.ResolveDrops(SplitDrops(value))
		if err != nil {
			return false, err
		}
		parsed = drops
	default:
		parsed = value
	}

	ok, err := t.repo.UpdateField(id, field, parsed)
	if err != nil || !ok {
		return false, err
	}

	if err := t.saveRuns(ctx); err != nil {
		return false, err
	}

	t.log.Info("Updated %s of run %d", field, id)
	return true, nil
}

func (t *Tracker) Runs() []runs.Run {
	return t.repo.All()
}

func (t *Tracker) Deleted() (runs.Run, bool) {
	return t.repo.Deleted()
}

// Filters and sorting

func (t *Tracker) SetDungeonFilter(name string) error {
	if name != "" {
		if _, err := t.catalog.ResolveDungeon(name); err != nil {
			return err
		}
	}
	t.state.Dungeon = name
	return nil
}

func (t *Tracker) SetDropFilter(drop string) error {
	switch drop {
	case "", view.AllRuns:
		drop = view.AllRuns
	case view.AllDrops:
	default:
		if !t.catalog.HasDrop(drop) {
			_, err := t.catalog.ResolveDrops([]string{drop})
			return fmt.Errorf("%w: %w", ErrUnknownFilter, err)
		}
	}
	t.state.Drop = drop
	return nil
}

func (t *Tracker) ClearFilters() {
	t.state.Dungeon = ""
	t.state.Drop = view.AllRuns
}

// SortBy toggles the direction for the active field or starts a new field
// ascending.
func (t *Tracker) SortBy(field runs.Field) {
	t.state.Sort = t.state.Sort.Toggle(field)
}

func (t *Tracker) SetSort(field runs.Field, ascending bool) {
	t.state.Sort = view.Sort{Field: field, Ascending: ascending}
}

// Derived views

// Filtered returns the runs matching the current filter in insertion order.
func (t *Tracker) Filtered() []runs.Run {
	return t.state.Filter().Apply(t.repo.All())
}

// View returns the filtered runs in display order.
func (t *Tracker) View() []runs.Run {
	return t.state.Sort.Apply(t.Filtered())
}

func (t *Tracker) Totals() analytics.Totals {
	return analytics.Summarize(t.Filtered())
}

// Report aggregates either every run or only the filtered ones.
func (t *Tracker) Report(all bool) analytics.Report {
	rs := t.repo.All()
	if !all {
		rs = t.Filtered()
	}

	dungeons := t.catalog.Dungeons()
	names := make([]string, 0, len(dungeons))
	for _, d := range dungeons {
		names = append(names, d.Name)
	}

	return analytics.BuildReport(rs, names, t.state.Characters, t.catalog.Drops())
}

// ExportCSV writes the current view as CSV.
func (t *Tracker) ExportCSV(w io.Writer, totals bool) error {
	return export.WriteCSV(w, t.View(), export.DefaultColumns(), totals)
}

func (t *Tracker) activeCharacter() string {
	if t.state.Selected == view.AllCharacters {
		return ""
	}
	return t.state.Selected
}

func (t *Tracker) saveRuns(ctx context.Context) error {
	return t.adapter.SaveRuns(ctx, t.repo.All())
}

// SplitDrops splits a drop list on commas and semicolons, dropping blanks.
func SplitDrops(value string) []string {
	parts := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ';'
	})

	drops := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			drops = append(drops, part)
		}
	}
	return drops
}
