package windrose

import (
	"testing"

	"github.com/KaramelBytes/uvmed-cli/internal/columns"
	"github.com/KaramelBytes/uvmed-cli/internal/dataset"
	"github.com/KaramelBytes/uvmed-cli/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectorOf(t *testing.T) {
	tests := map[float64]string{
		0: "N", 44.9: "N", 45: "NE", 89.99: "NE", 90: "E", 135: "SE",
		180: "S", 225: "SW", 270: "W", 315: "NW", 359.9: "NW",
		360: "N", 405: "NE", -10: "NW",
	}
	for deg, want := range tests {
		assert.Equal(t, want, SectorOf(deg), "%v°", deg)
	}
}

func TestSpeedEdges(t *testing.T) {
	assert.Equal(t, []float64{0, 2, 4, 6, 8, 10}, SpeedEdges([]float64{4, 0, 10}, 6))
	assert.Equal(t, []float64{3}, SpeedEdges([]float64{3, 3}, 6))
	assert.Nil(t, SpeedEdges(nil, 6))
	assert.Len(t, SpeedEdges([]float64{1, 2}, 0), DefaultSpeedBins)

	edges := []float64{0, 2, 4}
	assert.Equal(t, 0, SpeedClass(edges, 1.9))
	assert.Equal(t, 1, SpeedClass(edges, 2))
	assert.Equal(t, 2, SpeedClass(edges, 99))
}

func TestAggregate(t *testing.T) {
	dir := []float64{10, 20, 50, 180, 200, 359, 360, 91}
	speed := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	r, err := Aggregate(speed, dir, 3)
	require.NoError(t, err)

	assert.Equal(t, 8, r.Total)
	assert.Equal(t, []int{3, 1, 1, 0, 2, 0, 0, 1}, r.Counts)
	assert.Equal(t, []float64{37.5, 12.5, 12.5, 0, 25, 0, 0, 12.5}, r.Percent)

	var sum, freq float64
	for k := range Sectors {
		sum += r.Percent[k]
		for _, f := range r.Freq[k] {
			freq += f
		}
	}
	assert.InDelta(t, 100, sum, 1e-9)
	assert.InDelta(t, 100, freq, 1e-9)

	assert.Equal(t, []float64{1, 4.5, 8}, r.SpeedEdges)
	assert.Equal(t, "[1.0 : 4.5)", r.ClassLabel(0))
	assert.Equal(t, ">=8.0", r.ClassLabel(2))
	assert.Equal(t, "37.5%", r.PercentLabel(0))
}

func TestAggregate_RoundedSharesSumToHundred(t *testing.T) {
	tests := []struct {
		name string
		dir  []float64
		want []float64
	}{
		{"sevenths", []float64{0, 45, 90, 135, 180, 225, 270}, []float64{14.3, 14.3, 14.3, 14.3, 14.3, 14.3, 14.2, 0}},
		{"sixths", []float64{0, 45, 90, 135, 180, 225}, []float64{16.7, 16.7, 16.7, 16.7, 16.6, 16.6, 0, 0}},
		{"thirds", []float64{0, 90, 91}, []float64{33.3, 0, 66.7, 0, 0, 0, 0, 0}},
		{"largest remainder wins", []float64{0, 0, 0, 90, 90, 90, 180}, []float64{42.9, 0, 42.8, 0, 14.3, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Aggregate(make([]float64, len(tt.dir)), tt.dir, 6)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Percent)
			var sum float64
			for _, p := range r.Percent {
				sum += p
			}
			assert.InDelta(t, 100, sum, 1e-9)
		})
	}
}

func TestAggregate_Errors(t *testing.T) {
	_, err := Aggregate(nil, nil, 6)
	assert.ErrorIs(t, err, ErrNoObservations)
	_, err = Aggregate([]float64{1}, []float64{1, 2}, 6)
	assert.Error(t, err)
}

func TestFromDataset(t *testing.T) {
	tbl := &table.Table{
		Header: []string{"Fecha", "Velocidad", "Dirección"},
		Rows: [][]string{
			{"05/01/2024 10:00", "3", "44.9"},
			{"05/01/2024 10:10", "4", "45"},
			{"05/01/2024 10:20", "x", "90"},
		},
	}
	fields := []columns.Field{columns.Speed, columns.Direction}
	m, err := columns.Resolver{}.Resolve(tbl.Header, append([]columns.Field{columns.Timestamp}, fields...)...)
	require.NoError(t, err)
	ds, err := dataset.Build(tbl, m, fields, dataset.DefaultOptions())
	require.NoError(t, err)

	r, err := FromDataset(ds, 6)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Total)
	assert.Equal(t, 1, r.Counts[0])
	assert.Equal(t, 1, r.Counts[1])

	ds.Fields = []columns.Field{columns.Speed}
	_, err = FromDataset(ds, 6)
	var missing *columns.MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, columns.Direction, missing.Field)
}
