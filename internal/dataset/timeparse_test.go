package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d, hh, mm, ss int) time.Time {
	return time.Date(y, m, d, hh, mm, ss, 0, time.UTC)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in       string
		dayFirst bool
		want     time.Time
	}{
		{"05/01/2024 10:30", true, date(2024, 1, 5, 10, 30, 0)},
		{"05/01/2024 10:30", false, date(2024, 5, 1, 10, 30, 0)},
		{"5/1/2024", true, date(2024, 1, 5, 0, 0, 0)},
		{"05-01-2024 10:30:15", true, date(2024, 1, 5, 10, 30, 15)},
		{"05.01.24 10:30", true, date(2024, 1, 5, 10, 30, 0)},
		{"5/1/2024 3:30 PM", true, date(2024, 1, 5, 15, 30, 0)},
		{"2024-01-05 10:30:00", false, date(2024, 1, 5, 10, 30, 0)},
		{"2024-01-05T10:30:00-03:00", true, date(2024, 1, 5, 10, 30, 0)},
		{"2024/01/05 10:30", true, date(2024, 1, 5, 10, 30, 0)},
		{"45296.5", true, date(2024, 1, 5, 12, 0, 0)},
	}
	for _, tt := range tests {
		got, ok := ParseTimestamp(tt.in, tt.dayFirst)
		require.True(t, ok, tt.in)
		assert.True(t, tt.want.Equal(got), "%s: got %s", tt.in, got)
		assert.Equal(t, time.UTC, got.Location(), tt.in)
	}
	for _, bad := range []string{"", "mañana", "31/31/2024", "12.5", "10:30"} {
		_, ok := ParseTimestamp(bad, true)
		assert.False(t, ok, bad)
	}
	assert.True(t, LooksLikeTimestamp("05/01/2024"))
	assert.False(t, LooksLikeTimestamp("0.25"))
}

func TestFractionalMinutes(t *testing.T) {
	d, ok := FractionalMinutes("36.18")
	require.True(t, ok)
	assert.Equal(t, 36*time.Minute+11*time.Second, d)

	d, ok = FractionalMinutes("0.5")
	require.True(t, ok)
	assert.Equal(t, 30*time.Second, d)

	_, ok = FractionalMinutes("-1")
	assert.False(t, ok)
	_, ok = FractionalMinutes("abc")
	assert.False(t, ok)
}

func TestDetectClockEncoding(t *testing.T) {
	assert.Equal(t, ClockFractionalMinutes, DetectClockEncoding([]string{"36.18", "", "37"}))
	assert.Equal(t, ClockHMS, DetectClockEncoding([]string{"36.18", "10:00"}))
	assert.Equal(t, ClockHMS, DetectClockEncoding([]string{"10", "11"}))
}

func TestParseClock(t *testing.T) {
	d, ok := ParseClock("10:30:15", ClockHMS)
	require.True(t, ok)
	assert.Equal(t, 10*time.Hour+30*time.Minute+15*time.Second, d)

	d, ok = ParseClock("3:04 PM", ClockHMS)
	require.True(t, ok)
	assert.Equal(t, 15*time.Hour+4*time.Minute, d)

	d, ok = ParseClock("36.18", ClockFractionalMinutes)
	require.True(t, ok)
	assert.Equal(t, 36*time.Minute+11*time.Second, d)

	_, ok = ParseClock("", ClockHMS)
	assert.False(t, ok)
	_, ok = ParseClock("noon", ClockHMS)
	assert.False(t, ok)
}

func TestSplitUsable(t *testing.T) {
	tests := []struct {
		name   string
		dates  []string
		clocks []string
		want   bool
	}{
		{"hh:mm", []string{"05/01/2024", "05/01/2024"}, []string{"10:00", "10:10"}, true},
		{"fractional minutes", []string{"05/01/2024", "05/01/2024"}, []string{"36.18", ""}, true},
		{"integer seconds column", []string{"05/01/2024 12:00", "05/01/2024 12:01"}, []string{"60", "60"}, false},
		{"date carries a time", []string{"05/01/2024 12:00"}, []string{"1.5"}, false},
		{"unparseable clock", []string{"05/01/2024"}, []string{"noon"}, false},
		{"all clocks empty", []string{"05/01/2024"}, []string{""}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitUsable(tt.dates, tt.clocks))
		})
	}
}
