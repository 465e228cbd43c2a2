package dataset

import (
	"fmt"

	"github.com/KaramelBytes/uvmed-cli/internal/columns"
)

// UnparseableTimestampError describes a row dropped for its date/time cell.
// It is collected for reporting, never returned as a failure.
type UnparseableTimestampError struct {
	Row   int
	Value string
}

func (e *UnparseableTimestampError) Error() string {
	return fmt.Sprintf("row %d: unparseable date/time %q", e.Row+1, e.Value)
}

// NonNumericMeasurementError indicates a measurement column without numbers.
type NonNumericMeasurementError struct {
	Field  columns.Field
	Column string
	Sample string
}

func (e *NonNumericMeasurementError) Error() string {
	if e.Sample == "" {
		return fmt.Sprintf("%s column %q is empty", e.Field.Label(), e.Column)
	}
	return fmt.Sprintf("%s column %q is not numeric (e.g. %q)", e.Field.Label(), e.Column, e.Sample)
}

// NoObservationsError indicates every row was dropped.
type NoObservationsError struct {
	Dropped Drops
}

func (e *NoObservationsError) Error() string {
	return fmt.Sprintf("no usable rows (%d without a valid date/time, %d without a valid measurement)",
		e.Dropped.Timestamp, e.Dropped.Measurement)
}

// EmptyRangeError indicates the range filter left nothing to convert.
type EmptyRangeError struct {
	Range Range
}

func (e *EmptyRangeError) Error() string {
	return fmt.Sprintf("no data in range %s to %s",
		e.Range.Start.Format(DisplayLayout), e.Range.End.Format(DisplayLayout))
}
