// Package columns maps inconsistently named spreadsheet headers onto the
// canonical fields of an observation row.
//
// Matching is a case-insensitive substring test against a fixed keyword
// table. When several headers qualify for a field, the first one in column
// order wins, unless the resolver is configured to ask.
package columns

import (
	"fmt"
	"strings"
)

// Field is a canonical column role.
type Field string

const (
	Timestamp Field = "timestamp"
	UV        Field = "uv"
	Speed     Field = "speed"
	Direction Field = "direction"
	// Date and Clock are used when date and time of day live in separate columns.
	Date  Field = "date"
	Clock Field = "clock"
)

// Keywords is the declarative matching table, field -> ordered keyword list.
var Keywords = map[Field][]string{
	Timestamp: {"fecha", "date", "tiempo", "time"},
	UV:        {"uv", "eri", "irradiance"},
	Speed:     {"vel", "speed"},
	Direction: {"dir", "direction"},
	Date:      {"fecha", "date"},
	Clock:     {"hora", "time", "tiempo"},
}

var labels = map[Field]string{
	Timestamp: "date/time",
	UV:        "UV irradiance",
	Speed:     "wind speed",
	Direction: "wind direction",
	Date:      "date",
	Clock:     "time of day",
}

// Label returns a human readable name for the field.
func (f Field) Label() string {
	if l, ok := labels[f]; ok {
		return l
	}
	return string(f)
}

// ParseField accepts a field name as used in flags and forms.
func ParseField(s string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := Keywords[f]; !ok {
		return "", fmt.Errorf("unknown field %q", s)
	}
	return f, nil
}

// Matches reports whether a header qualifies for the field.
func Matches(f Field, header string) bool {
	h := strings.ToLower(strings.TrimSpace(header))
	if h == "" {
		return false
	}
	for _, kw := range Keywords[f] {
		if strings.Contains(h, kw) {
			return true
		}
	}
	return false
}

// Column is a resolved header position.
type Column struct {
	Index int
	Name  string
}

// Candidates lists the headers that qualify for f, in column order.
func Candidates(header []string, f Field) []Column {
	var out []Column
	for i, h := range header {
		if Matches(f, h) {
			out = append(out, Column{Index: i, Name: strings.TrimSpace(h)})
		}
	}
	return out
}

// HeaderHint returns a predicate accepting a header row only when every
// field has at least one candidate. It is used to skip file preambles.
func HeaderHint(fields ...Field) func([]string) bool {
	return func(cells []string) bool {
		for _, f := range fields {
			if len(Candidates(cells, f)) == 0 {
				return false
			}
		}
		return len(fields) > 0
	}
}
