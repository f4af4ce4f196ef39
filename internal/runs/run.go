package runs

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrUnknownField   = errors.New("unknown run field")
	ErrImmutableField = errors.New("run field cannot be changed")
)

type Field string

const (
	FieldCharacter Field = "character"
	FieldDate      Field = "date"
	FieldDungeon   Field = "dungeon"
	FieldDrops     Field = "drops"
	FieldCost      Field = "cost"
	FieldProfit    Field = "profit"
)

var fields = []Field{FieldCharacter, FieldDate, FieldDungeon, FieldDrops, FieldCost, FieldProfit}

func Fields() []Field {
	return slices.Clone(fields)
}

func ParseField(s string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(fields, f) {
		return "", fmt.Errorf("%w '%s'", ErrUnknownField, s)
	}
	return f, nil
}

// Mutable reports whether the field may change after the run was recorded.
func (f Field) Mutable() bool {
	return f == FieldProfit || f == FieldCost || f == FieldDrops
}

// Run is one recorded dungeon attempt.
type Run struct {
	ID        int64    `json:"id"`
	Character string   `json:"character"`
	Dungeon   string   `json:"dungeon"`
	Drops     []string `json:"drops"`
	Cost      Amount   `json:"cost"`
	Profit    Amount   `json:"profit,omitzero"`
	Date      string   `json:"date"`
}

func (r Run) HasDrops() bool {
	return len(r.Drops) > 0
}

func (r Run) HasDrop(drop string) bool {
	return slices.Contains(r.Drops, drop)
}

// DropText joins the drops the way they are displayed.
func (r Run) DropText() string {
	return strings.Join(r.Drops, ", ")
}

func (r Run) clone() Run {
	r.Drops = slices.Clone(r.Drops)
	if r.Drops == nil {
		r.Drops = []string{}
	}
	return r
}

// Draft holds the values of a run that has not been recorded yet.
type Draft struct {
	Character string `validate:"required"`
	Dungeon   string `validate:"required"`
	Drops     []string
	Cost      Amount
	Profit    Amount
	Date      string `validate:"required"`
}
