package runs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Amount is a cost or profit value. It keeps the value exactly as recorded,
// either a JSON number or free text, so that a blank profit stays distinct
// from zero.
type Amount struct {
	raw    string
	number bool
}

func Number(v float64) Amount {
	return Amount{raw: strconv.FormatFloat(v, 'f', -1, 64), number: true}
}

func Text(s string) Amount {
	return Amount{raw: s}
}

// ParseAmount accepts a blank value or a finite decimal number such as
// "150", "-2.5" or "1e3".
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, nil
	}
	if strings.ContainsFunc(s, notDecimal) {
		return Amount{}, fmt.Errorf("invalid amount '%s'", s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return Amount{}, fmt.Errorf("invalid amount '%s'", s)
	}
	return Text(s), nil
}

func notDecimal(r rune) bool {
	return !strings.ContainsRune("0123456789+-.eE", r)
}

func (a Amount) IsBlank() bool {
	return a.raw == ""
}

func (a Amount) IsZero() bool {
	return a.IsBlank()
}

// Float coerces the amount to a number. Blank, non-numeric and non-finite
// values are 0.
func (a Amount) Float() float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(a.raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func (a Amount) String() string {
	return a.raw
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if a.number {
		return []byte(a.raw), nil
	}
	return json.Marshal(a.raw)
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = Amount{}
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Text(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("amount must be a number or string: %w", err)
		}
		*a = Amount{raw: n.String(), number: true}
	}
	return nil
}
