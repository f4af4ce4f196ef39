package runs

import (
	"fmt"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
)

// Repository is the ordered in-memory collection of runs. Insertion order is
// kept regardless of how runs are displayed. The most recently removed run is
// held in a single undo slot.
type Repository struct {
	runs     []Run
	deleted  *Run
	ids      *IDSource
	validate *validator.Validate
}

type Option func(*Repository)

// WithClock sets the clock used to derive new ids.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.ids = NewIDSource(now)
	}
}

// WithDeleted restores a previously staged undo slot.
func WithDeleted(run *Run) Option {
	return func(r *Repository) {
		if run != nil {
			staged := run.clone()
			r.deleted = &staged
		}
	}
}

func NewRepository(runs []Run, opts ...Option) *Repository {
	r := &Repository{
		ids:      NewIDSource(time.Now),
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.runs = make([]Run, 0, len(runs))
	for _, run := range runs {
		r.runs = append(r.runs, run.clone())
		r.ids.Observe(run.ID)
	}
	if r.deleted != nil {
		r.ids.Observe(r.deleted.ID)
	}

	return r
}

func (r *Repository) Len() int {
	return len(r.runs)
}

// All returns a copy of every run in insertion order.
func (r *Repository) All() []Run {
	out := make([]Run, 0, len(r.runs))
	for _, run := range r.runs {
		out = append(out, run.clone())
	}
	return out
}

func (r *Repository) Get(id int64) (Run, bool) {
	i := r.indexOf(id)
	if i < 0 {
		return Run{}, false
	}
	return r.runs[i].clone(), true
}

// Deleted returns the run staged for undo, if any.
func (r *Repository) Deleted() (Run, bool) {
	if r.deleted == nil {
		return Run{}, false
	}
	return r.deleted.clone(), true
}

// Add records a new run from draft and appends it. A draft missing any of its
// required fields is ignored and ok is false.
func (r *Repository) Add(draft Draft) (Run, bool) {
	if err := r.validate.Struct(draft); err != nil {
		return Run{}, false
	}

	run := Run{
		ID:        r.ids.Next(),
		Character: draft.Character,
		Dungeon:   draft.Dungeon,
		Drops:     slices.Clone(draft.Drops),
		Cost:      draft.Cost,
		Profit:    draft.Profit,
		Date:      draft.Date,
	}
	if run.Drops == nil {
		run.Drops = []string{}
	}

	r.runs = append(r.runs, run)
	return run.clone(), true
}

// Remove deletes the run and stages it for undo, replacing whatever was
// staged before.
func (r *Repository) Remove(id int64) (Run, bool) {
	i := r.indexOf(id)
	if i < 0 {
		return Run{}, false
	}

	removed := r.runs[i]
	r.runs = slices.Delete(r.runs, i, i+1)
	r.deleted = &removed

	return removed.clone(), true
}

// RestoreLast appends the staged run back to the end of the collection and
// empties the undo slot.
func (r *Repository) RestoreLast() (Run, bool) {
	if r.deleted == nil {
		return Run{}, false
	}

	restored := *r.deleted
	r.deleted = nil
	r.runs = append(r.runs, restored)

	return restored.clone(), true
}

// Snapshot is a copy of the runs and the undo slot taken by Snapshot.
type Snapshot struct {
	runs    []Run
	deleted *Run
}

func (r *Repository) Snapshot() Snapshot {
	snap := Snapshot{runs: r.All()}
	if r.deleted != nil {
		staged := r.deleted.clone()
		snap.deleted = &staged
	}
	return snap
}

// Reset returns the repository to a snapshot. Ids handed out since then are
// not reused.
func (r *Repository) Reset(snap Snapshot) {
	r.runs = make([]Run, 0, len(snap.runs))
	for _, run := range snap.runs {
		r.runs = append(r.runs, run.clone())
	}
	r.deleted = nil
	if snap.deleted != nil {
		staged := snap.deleted.clone()
		r.deleted = &staged
	}
}

// UpdateField changes one mutable field of a run. Profit and cost take an
// Amount, drops take a []string. A missing id is not an error, ok is false.
func (r *Repository) UpdateField(id int64, field Field, value any) (bool, error) {
	if !slices.Contains(fields, field) {
		return false, fmt.Errorf("%w '%s'", ErrUnknownField, field)
	}
	if !field.Mutable() {
		return false, fmt.Errorf("%w '%s'", ErrImmutableField, field)
	}

	i := r.indexOf(id)
	if i < 0 {
		return false, nil
	}

	switch field {
	case FieldProfit, FieldCost:
		amount, ok := value.(Amount)
		if !ok {
			return false, fmt.Errorf("field '%s' expects an amount, got %T", field, value)
		}
		if field == FieldProfit {
			r.runs[i].Profit = amount
		} else {
			r.runs[i].Cost = amount
		}
	case FieldDrops:
		drops, ok := value.([]string)
		if !ok {
			return false, fmt.Errorf("field '%s' expects a list of drops, got %T", field, value)
		}
		r.runs[i].Drops = slices.Clone(drops)
		if r.runs[i].Drops == nil {
			r.runs[i].Drops = []string{}
		}
	}

	return true, nil
}

func (r *Repository) indexOf(id int64) int {
	return slices.IndexFunc(r.runs, func(run Run) bool {
		return run.ID == id
	})
}
