package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/mwantia/dungeonrun/internal/analytics"
	"github.com/mwantia/dungeonrun/internal/runs"
)

// Column describes one exported column. Total is nil for columns left blank
// in the totals row.
type Column struct {
	Header string
	Value  func(runs.Run) string
	Total  func(analytics.Totals) string
}

func DefaultColumns() []Column {
	return []Column{
		{Header: "Character", Value: func(r runs.Run) string { return r.Character }},
		{Header: "Date", Value: func(r runs.Run) string { return r.Date }},
		{Header: "Dungeon", Value: func(r runs.Run) string { return r.Dungeon }},
		{Header: "Drops", Value: func(r runs.Run) string { return r.DropText() }},
		{
			Header: "Cost",
			Value:  func(r runs.Run) string { return r.Cost.String() },
			Total:  func(t analytics.Totals) string { return FormatNumber(t.Cost) },
		},
		{
			Header: "Profit",
			Value:  func(r runs.Run) string { return r.Profit.String() },
			Total:  func(t analytics.Totals) string { return FormatNumber(t.Profit) },
		},
	}
}

// TotalsLabel fills the first cell of the totals row.
const TotalsLabel = "Totals"

// WriteCSV writes a header and one row per run, in the order given. Cells are
// quoted whenever they contain the delimiter, a quote or a line break. With
// totals set a summary row follows the runs.
func WriteCSV(w io.Writer, rs []runs.Run, columns []Column, totals bool) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(columns))
	for _, col := range columns {
		header = append(header, col.Header)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, r := range rs {
		row := make([]string, 0, len(columns))
		for _, col := range columns {
			row = append(row, col.Value(r))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write run %d: %w", r.ID, err)
		}
	}

	if totals {
		sum := analytics.Summarize(rs)
		row := make([]string, len(columns))
		for i, col := range columns {
			if col.Total != nil {
				row[i] = col.Total(sum)
			}
		}
		if len(row) > 0 && row[0] == "" {
			row[0] = TotalsLabel
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write totals: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Filename returns the export file name for the given day.
func Filename(now time.Time) string {
	return fmt.Sprintf("dungeon_runs_%s.csv", now.Format(time.DateOnly))
}

func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
