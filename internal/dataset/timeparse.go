package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DisplayLayout is the day-first layout used in user-facing messages.
const DisplayLayout = "02/01/2006 15:04"

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
}

var dayFirstLayouts = []string{
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006 3:04:05 PM",
	"2/1/2006 3:04 PM",
	"2/1/2006",
	"2/1/06 15:04:05",
	"2/1/06 15:04",
	"2/1/06",
}

var monthFirstLayouts = []string{
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"1/2/2006",
	"1/2/06 15:04:05",
	"1/2/06 15:04",
	"1/2/06",
}

// Excel serial day 0 for workbooks in the 1900 date system.
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// ParseTimestamp parses a date/time cell. Slash, dash and dot separated
// dates are read day-first unless dayFirst is false; ISO dates are always
// year-first. Any zone is dropped and the wall clock kept.
func ParseTimestamp(s string, dayFirst bool) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range isoLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return naive(t), true
		}
	}
	if t, ok := parseExcelSerial(s); ok {
		return t, true
	}
	norm := normalizeDate(s)
	layouts := dayFirstLayouts
	if !dayFirst {
		layouts = monthFirstLayouts
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, norm); err == nil {
			return naive(t), true
		}
	}
	return time.Time{}, false
}

// LooksLikeTimestamp is ParseTimestamp for kind inference.
func LooksLikeTimestamp(s string) bool {
	_, ok := ParseTimestamp(s, true)
	return ok
}

// naive strips the zone, keeping the wall clock.
func naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// normalizeDate turns "02-01-2024 10:00" and "02.01.2024" into slash form.
func normalizeDate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	date, rest, found := strings.Cut(s, " ")
	date = strings.NewReplacer("-", "/", ".", "/").Replace(date)
	if !found {
		return date
	}
	return date + " " + rest
}

func parseExcelSerial(s string) (time.Time, bool) {
	if strings.ContainsAny(s, "/-:") {
		return time.Time{}, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 61 || v > 2958465 {
		return time.Time{}, false
	}
	secs := math.Round(v * 86400)
	return excelEpoch.Add(time.Duration(secs) * time.Second), true
}

// ClockEncoding is how a time-of-day column stores its values.
type ClockEncoding int

const (
	// ClockHMS is HH:MM[:SS].
	ClockHMS ClockEncoding = iota
	// ClockFractionalMinutes is minutes.fraction, e.g. 36.18 -> 00:36:11.
	ClockFractionalMinutes
)

// DetectClockEncoding picks fractional minutes when values carry a decimal
// point and none carries a colon.
func DetectClockEncoding(values []string) ClockEncoding {
	dotted := false
	for _, v := range values {
		v = strings.TrimSpace(v)
		if strings.Contains(v, ":") {
			return ClockHMS
		}
		if strings.Contains(v, ".") {
			dotted = true
		}
	}
	if dotted {
		return ClockFractionalMinutes
	}
	return ClockHMS
}

// ParseClock returns the offset from midnight for a time-of-day cell.
func ParseClock(s string, enc ClockEncoding) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if enc == ClockFractionalMinutes {
		return FractionalMinutes(s)
	}
	for _, l := range []string{"15:04:05", "15:04", "3:04:05 PM", "3:04 PM"} {
		if t, err := time.Parse(l, s); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second +
				time.Duration(t.Nanosecond()), true
		}
	}
	return 0, false
}

// FractionalMinutes decodes "minutes.fraction": minutes = floor(v),
// seconds = round((v - minutes) * 60).
func FractionalMinutes(s string) (time.Duration, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	minutes := math.Floor(v)
	seconds := math.Round((v - minutes) * 60)
	return time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second, true
}

// SplitUsable reports whether a date column and a time-of-day column can be
// combined into timestamps: no date cell already carries a time of day, and
// every non-empty clock cell parses under the detected encoding.
func SplitUsable(dates, clocks []string) bool {
	enc := DetectClockEncoding(clocks)
	parsed := 0
	for i, c := range clocks {
		if i < len(dates) && strings.Contains(dates[i], ":") {
			return false
		}
		if strings.TrimSpace(c) == "" {
			continue
		}
		if _, ok := ParseClock(c, enc); !ok {
			return false
		}
		parsed++
	}
	return parsed > 0
}
