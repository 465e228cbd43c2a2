package dataset

import (
	"testing"
	"time"

	"github.com/KaramelBytes/uvmed-cli/internal/columns"
	"github.com/KaramelBytes/uvmed-cli/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uvTable(rows ...[]string) *table.Table {
	return &table.Table{Name: "uv.csv", Header: []string{"Fecha", "UV"}, Rows: rows}
}

func resolve(t *testing.T, tbl *table.Table, fields ...columns.Field) columns.Mapping {
	t.Helper()
	m, err := columns.Resolver{}.Resolve(tbl.Header, fields...)
	require.NoError(t, err)
	return m
}

func TestBuild_SortsAndDrops(t *testing.T) {
	tbl := uvTable(
		[]string{"05/01/2024 10:20", "0,3"},
		[]string{"05/01/2024 10:00", "0.1"},
		[]string{"not a date", "0.2"},
		[]string{"05/01/2024 10:10", ""},
		[]string{"05/01/2024 10:30", "n/a"},
		[]string{"05/01/2024 10:10", "0.2"},
	)
	ds, err := Build(tbl, resolve(t, tbl, columns.Timestamp, columns.UV), []columns.Field{columns.UV}, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, ds.Rows, 3)
	assert.Equal(t, []time.Time{date(2024, 1, 5, 10, 0, 0), date(2024, 1, 5, 10, 10, 0), date(2024, 1, 5, 10, 20, 0)}, ds.Times())
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, ds.Series(columns.UV))
	assert.Nil(t, ds.Series(columns.Speed))
	assert.Equal(t, 1, ds.Rows[0].Row)
	assert.Equal(t, 1, ds.Dropped.Timestamp)
	assert.Equal(t, 2, ds.Dropped.Measurement)
	assert.Equal(t, 3, ds.Dropped.Total())
	require.Len(t, ds.Dropped.Samples, 1)
	assert.Equal(t, `row 3: unparseable date/time "not a date"`, ds.Dropped.Samples[0].Error())
	assert.Equal(t, "Fecha", ds.TimeColumn())
}

func TestBuild_SplitDateAndFractionalMinutes(t *testing.T) {
	tbl := &table.Table{
		Header: []string{"Fecha", "Hora", "UV"},
		Rows: [][]string{
			{"05/01/2024", "36.18", "0.2"},
			{"05/01/2024", "37.5", "0.3"},
		},
	}
	m := resolve(t, tbl, columns.Date, columns.Clock, columns.UV)
	ds, err := Build(tbl, m, []columns.Field{columns.UV}, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, ClockFractionalMinutes, ds.Clock)
	assert.Equal(t, date(2024, 1, 5, 0, 36, 11), ds.Rows[0].Time)
	assert.Equal(t, date(2024, 1, 5, 0, 37, 30), ds.Rows[1].Time)
	assert.Equal(t, "Fecha + Hora", ds.TimeColumn())
}

func TestBuild_Errors(t *testing.T) {
	t.Run("non numeric column", func(t *testing.T) {
		tbl := uvTable([]string{"05/01/2024 10:00", "alto"}, []string{"05/01/2024 10:10", "bajo"})
		_, err := Build(tbl, resolve(t, tbl, columns.Timestamp, columns.UV), []columns.Field{columns.UV}, DefaultOptions())
		var nn *NonNumericMeasurementError
		require.ErrorAs(t, err, &nn)
		assert.Equal(t, "UV", nn.Column)
		assert.Equal(t, "alto", nn.Sample)
	})
	t.Run("every row dropped", func(t *testing.T) {
		tbl := uvTable([]string{"ayer", "0.1"}, []string{"hoy", "0.2"})
		_, err := Build(tbl, resolve(t, tbl, columns.Timestamp, columns.UV), []columns.Field{columns.UV}, DefaultOptions())
		var no *NoObservationsError
		require.ErrorAs(t, err, &no)
		assert.Equal(t, 2, no.Dropped.Timestamp)
	})
	t.Run("unmapped field", func(t *testing.T) {
		tbl := uvTable([]string{"05/01/2024 10:00", "0.1"})
		_, err := Build(tbl, resolve(t, tbl, columns.Timestamp), []columns.Field{columns.UV}, DefaultOptions())
		var missing *columns.MissingColumnError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, columns.UV, missing.Field)
	})
	t.Run("no time column", func(t *testing.T) {
		tbl := uvTable([]string{"05/01/2024 10:00", "0.1"})
		_, err := Build(tbl, resolve(t, tbl, columns.UV), []columns.Field{columns.UV}, DefaultOptions())
		var missing *columns.MissingColumnError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, columns.Timestamp, missing.Field)
	})
}

func fixture(t *testing.T) *Dataset {
	t.Helper()
	tbl := uvTable(
		[]string{"05/01/2024 10:00", "0.1"},
		[]string{"05/01/2024 11:00", "0.2"},
		[]string{"05/01/2024 12:00", "0.3"},
		[]string{"06/01/2024 10:00", "0.4"},
	)
	ds, err := Build(tbl, resolve(t, tbl, columns.Timestamp, columns.UV), []columns.Field{columns.UV}, DefaultOptions())
	require.NoError(t, err)
	return ds
}

func TestFilter(t *testing.T) {
	ds := fixture(t)
	assert.Equal(t, Range{Start: date(2024, 1, 5, 10, 0, 0), End: date(2024, 1, 6, 10, 0, 0)}, ds.Bounds())

	all, err := ds.Filter(Range{})
	require.NoError(t, err)
	assert.Len(t, all.Rows, 4)
	assert.False(t, all.Filtered())

	mid, err := ds.Filter(Range{Start: date(2024, 1, 5, 11, 0, 0), End: date(2024, 1, 5, 12, 0, 0)})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.2, 0.3}, mid.Series(columns.UV))
	assert.True(t, mid.Filtered())
	assert.Len(t, ds.Rows, 4, "source untouched")

	open, err := ds.Filter(Range{Start: date(2024, 1, 5, 11, 30, 0)})
	require.NoError(t, err)
	assert.Len(t, open.Rows, 2)
	assert.Equal(t, date(2024, 1, 6, 10, 0, 0), open.Range.End)
}

func TestFilter_SingleInstant(t *testing.T) {
	ds := fixture(t)
	at := date(2024, 1, 5, 11, 0, 0)
	one, err := ds.Filter(Range{Start: at, End: at})
	require.NoError(t, err)
	require.Len(t, one.Rows, 1)
	assert.Equal(t, 0.2, one.Rows[0].Values[0])
}

func TestFilter_Empty(t *testing.T) {
	ds := fixture(t)
	_, err := ds.Filter(Range{Start: date(2024, 2, 1, 0, 0, 0), End: date(2024, 2, 2, 0, 0, 0)})
	var empty *EmptyRangeError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, "no data in range 01/02/2024 00:00 to 02/02/2024 00:00", err.Error())
}
