package columns

import (
	"fmt"
	"strings"
)

// Policy decides what happens when more than one header qualifies.
type Policy string

const (
	// PickFirst takes the first qualifying column in dataset order.
	PickFirst Policy = "first"
	// Ask hands the candidates to a Chooser.
	Ask Policy = "ask"
)

// ParsePolicy accepts "first" or "ask".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first", "auto":
		return PickFirst, nil
	case "ask", "choose":
		return Ask, nil
	}
	return "", fmt.Errorf("invalid column policy %q (use first or ask)", s)
}

// Chooser lets the user disambiguate between candidate columns.
type Chooser interface {
	Choose(f Field, candidates []Column) (Column, error)
}

// ChooserFunc adapts a function to Chooser.
type ChooserFunc func(f Field, candidates []Column) (Column, error)

func (fn ChooserFunc) Choose(f Field, candidates []Column) (Column, error) {
	return fn(f, candidates)
}

// Mapping is the resolved field -> column assignment.
type Mapping map[Field]Column

// Has reports whether f was resolved.
func (m Mapping) Has(f Field) bool {
	_, ok := m[f]
	return ok
}

// Resolver assigns columns to fields.
type Resolver struct {
	Policy  Policy
	Chooser Chooser
	// Overrides name the column to use for a field, bypassing keyword matching.
	Overrides map[Field]string
}

// Resolve assigns a column to every requested field, in the order given.
// A column claimed by an earlier field is not offered to later ones.
func (r Resolver) Resolve(header []string, fields ...Field) (Mapping, error) {
	m := Mapping{}
	claimed := map[int]bool{}
	for _, f := range fields {
		if name, ok := r.Overrides[f]; ok && strings.TrimSpace(name) != "" {
			col, err := lookup(header, f, name)
			if err != nil {
				return nil, err
			}
			m[f] = col
			claimed[col.Index] = true
			continue
		}
		var cands []Column
		for _, c := range Candidates(header, f) {
			if !claimed[c.Index] {
				cands = append(cands, c)
			}
		}
		if len(cands) == 0 {
			return nil, &MissingColumnError{Field: f, Header: header}
		}
		pick := cands[0]
		if len(cands) > 1 && r.Policy == Ask {
			if r.Chooser == nil {
				return nil, &AmbiguousColumnError{Field: f, Candidates: cands}
			}
			c, err := r.Chooser.Choose(f, cands)
			if err != nil {
				return nil, fmt.Errorf("choose %s column: %w", f.Label(), err)
			}
			if !contains(cands, c) {
				return nil, fmt.Errorf("choose %s column: %q is not a candidate", f.Label(), c.Name)
			}
			pick = c
		}
		m[f] = pick
		claimed[pick.Index] = true
	}
	return m, nil
}

func lookup(header []string, f Field, name string) (Column, error) {
	want := strings.TrimSpace(name)
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), want) {
			return Column{Index: i, Name: strings.TrimSpace(h)}, nil
		}
	}
	return Column{}, &MissingColumnError{Field: f, Header: header, Requested: want}
}

func contains(cands []Column, c Column) bool {
	for _, x := range cands {
		if x.Index == c.Index {
			return true
		}
	}
	return false
}
