// Package dataset builds the canonical, time-sorted observation series from
// a loaded table and restricts it to a user-selected interval.
package dataset

import (
	"fmt"
	"sort"
	"time"

	"github.com/KaramelBytes/uvmed-cli/internal/columns"
	"github.com/KaramelBytes/uvmed-cli/internal/table"
)

// maxSamples bounds the unparseable timestamps kept for reporting.
const maxSamples = 5

// Observation is one row of the canonical dataset.
type Observation struct {
	Time time.Time
	// Values holds one measurement per Dataset.Fields entry.
	Values []float64
	// Row is the index of the source row in Dataset.Table.Rows.
	Row int
}

// Dataset is an ordered observation series tied to its source table.
type Dataset struct {
	Table   *table.Table
	Mapping columns.Mapping
	Fields  []columns.Field
	Rows    []Observation
	Dropped Drops
	// Range is the interval applied by Filter; zero when unfiltered.
	Range Range
	// Clock is the time-of-day encoding detected in split date/time uploads.
	Clock ClockEncoding
}

// Drops counts rows removed while building the dataset.
type Drops struct {
	Timestamp   int
	Measurement int
	Samples     []*UnparseableTimestampError
}

// Total is the number of discarded rows.
func (d Drops) Total() int { return d.Timestamp + d.Measurement }

// Options controls parsing.
type Options struct {
	DayFirst bool
	Number   table.NumberFormat
}

// DefaultOptions reads dates day-first and auto-detects number separators.
func DefaultOptions() Options {
	return Options{DayFirst: true}
}

// Build parses timestamps and measurements, drops incomplete rows and sorts
// by time. The timestamp comes from the Timestamp column, or from the Date
// and Clock columns when both are mapped.
func Build(t *table.Table, m columns.Mapping, fields []columns.Field, opt Options) (*Dataset, error) {
	split := m.Has(columns.Date) && m.Has(columns.Clock)
	if !split && !m.Has(columns.Timestamp) {
		return nil, &columns.MissingColumnError{Field: columns.Timestamp, Header: t.Header}
	}
	for _, f := range fields {
		if !m.Has(f) {
			return nil, &columns.MissingColumnError{Field: f, Header: t.Header}
		}
	}
	if err := checkNumeric(t, m, fields, opt); err != nil {
		return nil, err
	}

	ds := &Dataset{Table: t, Mapping: m, Fields: fields}
	if split {
		vals := make([]string, len(t.Rows))
		for i := range t.Rows {
			vals[i] = t.Cell(i, m[columns.Clock].Index)
		}
		ds.Clock = DetectClockEncoding(vals)
	}

	for i := range t.Rows {
		ts, ok := ds.rowTime(i, split, opt)
		if !ok {
			ds.Dropped.Timestamp++
			if len(ds.Dropped.Samples) < maxSamples {
				ds.Dropped.Samples = append(ds.Dropped.Samples, &UnparseableTimestampError{Row: i, Value: ds.rawTime(i, split)})
			}
			continue
		}
		values := make([]float64, len(fields))
		complete := true
		for k, f := range fields {
			x, ok := table.ParseNumber(t.Cell(i, m[f].Index), opt.Number)
			if !ok {
				complete = false
				break
			}
			values[k] = x
		}
		if !complete {
			ds.Dropped.Measurement++
			continue
		}
		ds.Rows = append(ds.Rows, Observation{Time: ts, Values: values, Row: i})
	}
	if len(ds.Rows) == 0 {
		return nil, &NoObservationsError{Dropped: ds.Dropped}
	}
	sort.SliceStable(ds.Rows, func(a, b int) bool { return ds.Rows[a].Time.Before(ds.Rows[b].Time) })
	return ds, nil
}

func (ds *Dataset) rowTime(i int, split bool, opt Options) (time.Time, bool) {
	t := ds.Table
	if !split {
		return ParseTimestamp(t.Cell(i, ds.Mapping[columns.Timestamp].Index), opt.DayFirst)
	}
	day, ok := ParseTimestamp(t.Cell(i, ds.Mapping[columns.Date].Index), opt.DayFirst)
	if !ok {
		return time.Time{}, false
	}
	off, ok := ParseClock(t.Cell(i, ds.Mapping[columns.Clock].Index), ds.Clock)
	if !ok {
		return time.Time{}, false
	}
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.Add(off), true
}

func (ds *Dataset) rawTime(i int, split bool) string {
	t := ds.Table
	if !split {
		return t.Cell(i, ds.Mapping[columns.Timestamp].Index)
	}
	return t.Cell(i, ds.Mapping[columns.Date].Index) + " " + t.Cell(i, ds.Mapping[columns.Clock].Index)
}

// checkNumeric fails when a measurement column has no numeric cell at all.
func checkNumeric(t *table.Table, m columns.Mapping, fields []columns.Field, opt Options) error {
	for _, f := range fields {
		col := m[f]
		sample := ""
		numeric := false
		for i := range t.Rows {
			v := t.Cell(i, col.Index)
			if v == "" {
				continue
			}
			if _, ok := table.ParseNumber(v, opt.Number); ok {
				numeric = true
				break
			}
			if sample == "" {
				sample = v
			}
		}
		if !numeric {
			return &NonNumericMeasurementError{Field: f, Column: col.Name, Sample: sample}
		}
	}
	return nil
}

// TimeColumn names the source of the timestamp for display.
func (ds *Dataset) TimeColumn() string {
	if ds.Mapping.Has(columns.Date) && ds.Mapping.Has(columns.Clock) {
		return fmt.Sprintf("%s + %s", ds.Mapping[columns.Date].Name, ds.Mapping[columns.Clock].Name)
	}
	return ds.Mapping[columns.Timestamp].Name
}

// Series returns the measurement values for field f in row order.
func (ds *Dataset) Series(f columns.Field) []float64 {
	k := -1
	for i, x := range ds.Fields {
		if x == f {
			k = i
			break
		}
	}
	if k < 0 {
		return nil
	}
	out := make([]float64, len(ds.Rows))
	for i, o := range ds.Rows {
		out[i] = o.Values[k]
	}
	return out
}

// Times returns the timestamps in row order.
func (ds *Dataset) Times() []time.Time {
	out := make([]time.Time, len(ds.Rows))
	for i, o := range ds.Rows {
		out[i] = o.Time
	}
	return out
}
