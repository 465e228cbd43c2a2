package dataset

import "time"

// Range is an inclusive timestamp interval. A zero bound means "dataset edge".
type Range struct {
	Start time.Time
	End   time.Time
}

// IsZero reports whether neither bound is set.
func (r Range) IsZero() bool { return r.Start.IsZero() && r.End.IsZero() }

// Contains reports start <= t <= end.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Bounds returns the dataset's own min/max timestamps.
func (ds *Dataset) Bounds() Range {
	if len(ds.Rows) == 0 {
		return Range{}
	}
	return Range{Start: ds.Rows[0].Time, End: ds.Rows[len(ds.Rows)-1].Time}
}

// Filter keeps rows with start <= timestamp <= end. Missing bounds default
// to the dataset's own edges. An empty result is an EmptyRangeError.
func (ds *Dataset) Filter(r Range) (*Dataset, error) {
	b := ds.Bounds()
	eff := r
	if eff.Start.IsZero() {
		eff.Start = b.Start
	}
	if eff.End.IsZero() {
		eff.End = b.End
	}
	out := *ds
	out.Rows = nil
	for _, o := range ds.Rows {
		if eff.Contains(o.Time) {
			out.Rows = append(out.Rows, o)
		}
	}
	if len(out.Rows) == 0 {
		return nil, &EmptyRangeError{Range: eff}
	}
	if !r.IsZero() {
		out.Range = eff
	}
	return &out, nil
}

// Filtered reports whether a user range was applied.
func (ds *Dataset) Filtered() bool { return !ds.Range.IsZero() }
