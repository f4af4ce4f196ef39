package analytics

import (
	"math"

	"github.com/mwantia/dungeonrun/internal/runs"
)

// Totals summarizes a sequence of runs. AverageNet is NaN for an empty
// sequence, check HasAverage before presenting it as a number.
type Totals struct {
	Count      int
	Cost       float64
	Profit     float64
	Net        float64
	AverageNet float64
}

func (t Totals) HasAverage() bool {
	return t.Count > 0 && !math.IsNaN(t.AverageNet)
}

func Summarize(rs []runs.Run) Totals {
	t := Totals{Count: len(rs)}
	for _, r := range rs {
		t.Cost += r.Cost.Float()
		t.Profit += r.Profit.Float()
	}

	t.Net = t.Profit - t.Cost
	if t.Count == 0 {
		t.AverageNet = math.NaN()
	} else {
		t.AverageNet = t.Net / float64(t.Count)
	}

	return t
}

// Breakdown aggregates the runs sharing one key.
type Breakdown struct {
	Key           string
	Count         int
	Cost          float64
	Profit        float64
	AverageProfit float64
}

// ByDungeon returns one entry per dungeon name, in the given order, including
// dungeons without runs.
func ByDungeon(rs []runs.Run, dungeons []string) []Breakdown {
	return breakdown(rs, dungeons, func(r runs.Run) string { return r.Dungeon })
}

// ByCharacter returns one entry per listed character. Runs of characters not
// in the list are left out.
func ByCharacter(rs []runs.Run, characters []string) []Breakdown {
	return breakdown(rs, characters, func(r runs.Run) string { return r.Character })
}

func breakdown(rs []runs.Run, keys []string, keyOf func(runs.Run) string) []Breakdown {
	index := make(map[string]int, len(keys))
	out := make([]Breakdown, 0, len(keys))
	for _, key := range keys {
		if _, ok := index[key]; ok {
			continue
		}
		index[key] = len(out)
		out = append(out, Breakdown{Key: key})
	}

	for _, r := range rs {
		i, ok := index[keyOf(r)]
		if !ok {
			continue
		}
		out[i].Count++
		out[i].Cost += r.Cost.Float()
		out[i].Profit += r.Profit.Float()
	}

	for i := range out {
		if out[i].Count > 0 {
			out[i].AverageProfit = out[i].Profit / float64(out[i].Count)
		}
	}

	return out
}

type DropCount struct {
	Drop  string
	Count int
}

// ByDrop counts the runs containing each drop. Drops that never occur are
// omitted.
func ByDrop(rs []runs.Run, drops []string) []DropCount {
	out := make([]DropCount, 0, len(drops))
	for _, drop := range drops {
		count := 0
		for _, r := range rs {
			if r.HasDrop(drop) {
				count++
			}
		}
		if count > 0 {
			out = append(out, DropCount{Drop: drop, Count: count})
		}
	}
	return out
}

// Report bundles every aggregate for one run sequence.
type Report struct {
	Totals     Totals
	Dungeons   []Breakdown
	Characters []Breakdown
	Drops      []DropCount
}

func BuildReport(rs []runs.Run, dungeons, characters, drops []string) Report {
	return Report{
		Totals:     Summarize(rs),
		Dungeons:   ByDungeon(rs, dungeons),
		Characters: ByCharacter(rs, characters),
		Drops:      ByDrop(rs, drops),
	}
}
