package med

import (
	"fmt"
	"strings"
)

// SkinType is a phototype with its minimal erythemal dose in J/m².
type SkinType struct {
	Label     string  `json:"label" yaml:"label"`
	Threshold float64 `json:"med_j_m2" yaml:"med_j_m2"`
}

// SkinTypes is the reference MED table, phototypes I to VI.
var SkinTypes = []SkinType{
	{Label: "Tipo I", Threshold: 200},
	{Label: "Tipo II", Threshold: 250},
	{Label: "Tipo III", Threshold: 300},
	{Label: "Tipo IV", Threshold: 450},
	{Label: "Tipo V", Threshold: 600},
	{Label: "Tipo VI", Threshold: 1000},
}

var numerals = []string{"i", "ii", "iii", "iv", "v", "vi"}

// UnknownSkinTypeError reports a label that is not in the table.
type UnknownSkinTypeError struct {
	Value string
}

func (e *UnknownSkinTypeError) Error() string {
	labels := make([]string, len(SkinTypes))
	for i, s := range SkinTypes {
		labels[i] = s.Label
	}
	return fmt.Sprintf("unknown skin type %q (use one of: %s)", e.Value, strings.Join(labels, ", "))
}

// LookupSkin accepts "Tipo II", "II", "2", "type 2" or "tipo ii", case-insensitively.
func LookupSkin(s string) (SkinType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, prefix := range []string{"skin", "type", "tipo"} {
		key = strings.TrimSpace(strings.TrimPrefix(key, prefix))
	}
	for i, n := range numerals {
		if key == n || key == fmt.Sprint(i+1) {
			return SkinTypes[i], nil
		}
	}
	return SkinType{}, &UnknownSkinTypeError{Value: s}
}

// LookupSkins resolves a list, dropping duplicates while keeping order.
func LookupSkins(values []string) ([]SkinType, error) {
	var out []SkinType
	seen := map[string]bool{}
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		s, err := LookupSkin(v)
		if err != nil {
			return nil, err
		}
		if seen[s.Label] {
			continue
		}
		seen[s.Label] = true
		out = append(out, s)
	}
	return out, nil
}
