package table

import (
	"math"
	"strconv"
	"strings"
)

// NumberFormat fixes the locale separators. Zero values auto-detect per value.
type NumberFormat struct {
	Decimal   rune
	Thousands rune
}

// ParseNumber coerces a spreadsheet cell to float64. Blank, non-numeric,
// NaN and infinite values report ok=false.
func ParseNumber(s string, nf NumberFormat) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.ReplaceAll(raw, "%", "")
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := nf.Decimal
	thou := nf.Thousands
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0:
			if cpos > dpos {
				dec, thou = ',', '.'
			} else {
				dec, thou = '.', ','
			}
		case cpos >= 0:
			dec = ','
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseSeparator maps a config/flag value to a separator rune.
func ParseSeparator(s string) (rune, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return 0, true
	case ",", "comma":
		return ',', true
	case ".", "dot":
		return '.', true
	case ";", "semicolon":
		return ';', true
	case "\t", "tab":
		return '\t', true
	case " ", "space":
		return ' ', true
	}
	return 0, false
}
