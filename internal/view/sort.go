package view

import (
	"cmp"
	"slices"
	"strings"

	"github.com/mwantia/dungeonrun/internal/runs"
	"golang.org/x/text/cases"
)

type Sort struct {
	Field     runs.Field
	Ascending bool
}

// DefaultSort shows the newest runs first.
func DefaultSort() Sort {
	return Sort{Field: runs.FieldDate, Ascending: false}
}

// Toggle flips the direction when field is already active, otherwise it
// switches to field in ascending order.
func (s Sort) Toggle(field runs.Field) Sort {
	if s.Field == field {
		return Sort{Field: field, Ascending: !s.Ascending}
	}
	return Sort{Field: field, Ascending: true}
}

// Apply returns a sorted copy of rs.
//
// Runs without drops always come last when sorting by drops, in both
// directions. Character compares case-insensitively, cost and profit compare
// numerically with non-numeric values as 0, and every other field compares
// its raw text. Dates are ISO formatted so text order is chronological.
func (s Sort) Apply(rs []runs.Run) []runs.Run {
	out := slices.Clone(rs)
	fold := cases.Fold()

	slices.SortStableFunc(out, func(a, b runs.Run) int {
		var c int

		switch s.Field {
		case runs.FieldDrops:
			switch {
			case !a.HasDrops() && !b.HasDrops():
				return 0
			case !a.HasDrops():
				return 1
			case !b.HasDrops():
				return -1
			}
			c = strings.Compare(a.DropText(), b.DropText())
		case runs.FieldCharacter:
			c = strings.Compare(fold.String(a.Character), fold.String(b.Character))
		case runs.FieldCost:
			c = cmp.Compare(a.Cost.Float(), b.Cost.Float())
		case runs.FieldProfit:
			c = cmp.Compare(a.Profit.Float(), b.Profit.Float())
		case runs.FieldDungeon:
			c = strings.Compare(a.Dungeon, b.Dungeon)
		default:
			c = strings.Compare(a.Date, b.Date)
		}

		if !s.Ascending {
			c = -c
		}
		return c
	})

	return out
}

// SortRuns is shorthand for building a Sort and applying it.
func SortRuns(rs []runs.Run, field runs.Field, ascending bool) []runs.Run {
	return Sort{Field: field, Ascending: ascending}.Apply(rs)
}
