package view

import "github.com/mwantia/dungeonrun/internal/runs"

const (
	// AllCharacters disables the character filter.
	AllCharacters = "__allchars"
	// AllRuns disables the drop filter.
	AllRuns = "__allruns"
	// AllDrops keeps runs with at least one drop.
	AllDrops = "__alldrops"
)

// Filter narrows runs by character, dungeon and drop. Empty values match
// everything.
type Filter struct {
	Character string
	Dungeon   string
	Drop      string
}

func DefaultFilter() Filter {
	return Filter{Character: AllCharacters, Drop: AllRuns}
}

// Apply returns the runs matching every criterion, keeping their order. The
// input slice is not modified.
func (f Filter) Apply(rs []runs.Run) []runs.Run {
	out := make([]runs.Run, 0, len(rs))
	for _, r := range rs {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

func (f Filter) Match(r runs.Run) bool {
	if f.Character != "" && f.Character != AllCharacters && r.Character != f.Character {
		return false
	}
	if f.Dungeon != "" && r.Dungeon != f.Dungeon {
		return false
	}

	switch f.Drop {
	case "", AllRuns:
		return true
	case AllDrops:
		return r.HasDrops()
	default:
		return r.HasDrop(f.Drop)
	}
}

// FilterRuns is shorthand for building a Filter and applying it.
func FilterRuns(rs []runs.Run, character, dungeon, drop string) []runs.Run {
	return Filter{Character: character, Dungeon: dungeon, Drop: drop}.Apply(rs)
}
