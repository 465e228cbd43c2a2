package pipeline

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/uvmed-cli/internal/columns"
	"github.com/KaramelBytes/uvmed-cli/internal/dataset"
	"github.com/KaramelBytes/uvmed-cli/internal/med"
	"github.com/KaramelBytes/uvmed-cli/internal/observability"
	"github.com/KaramelBytes/uvmed-cli/internal/table"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var frozen = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func freezeClock(t *testing.T) {
	t.Helper()
	SetClock(clockwork.NewFakeClockAt(frozen))
	t.Cleanup(func() { SetClock(nil) })
}

func uvTable() *table.Table {
	return &table.Table{
		Name:    "uv.csv",
		Header:  []string{"Fecha", "UV Irradiance (W/m2)", "Temp"},
		Skipped: 7,
		Rows: [][]string{
			{"05/01/2024 12:00", "10", "20"},
			{"05/01/2024 12:10", "100", "21"},
			{"fecha rota", "50", "21"},
			{"05/01/2024 12:30", "50", "22"},
			{"06/01/2024 09:00", "5", "18"},
		},
	}
}

func windTable() *table.Table {
	return &table.Table{
		Name:   "viento.csv",
		Header: []string{"Fecha", "Hora", "Velocidad (m/s)", "Dirección"},
		Rows: [][]string{
			{"05/01/2024", "36.18", "2", "10"},
			{"05/01/2024", "46.5", "4", "100"},
			{"05/01/2024", "56.0", "6", "350"},
			{"05/01/2024", "58.25", "", "200"},
		},
	}
}

func TestRunUV(t *testing.T) {
	freezeClock(t)
	metrics := observability.NewMetrics()
	p := New(nil, metrics)

	req := UVRequest{
		Dataset: dataset.DefaultOptions(),
		Range:   dataset.Range{Start: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 1, 5, 23, 59, 59, 0, time.UTC)},
		MED:     med.DefaultOptions(),
	}
	res, err := p.RunUV(context.Background(), uvTable(), req)
	require.NoError(t, err)

	assert.Equal(t, ToolUV, res.Tool)
	assert.Equal(t, 5, res.Loaded)
	assert.Equal(t, 3, res.Kept)
	assert.Equal(t, 1, res.OutOfRange)
	assert.Equal(t, 1, res.Dropped.Timestamp)
	assert.Equal(t, "Fecha", res.TimeColumn)
	assert.Equal(t, frozen, res.GeneratedAt)
	assert.Equal(t, []Resolved{{columns.Timestamp, "Fecha"}, {columns.UV, "UV Irradiance (W/m2)"}}, res.Columns)
	assert.InDeltaSlice(t, []float64{144, 1440, 720}, res.MED.Columns[0].Values, 1e-9)
	assert.Equal(t, "Mostrando datos desde 05/01/2024 00:00 hasta 05/01/2024 23:59", res.InfoLine())
	assert.Equal(t, []string{"Mode: rate", "MED/h (Tipo II, 250 J/m²): peak 1440.000"}, res.Result)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RowsDropped.WithLabelValues("timestamp")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RowsDropped.WithLabelValues("range")))

	md := res.Markdown()
	for _, want := range []string{
		"[UPLOAD SUMMARY]\nTool: uv\nFile: uv.csv\n",
		"Rows loaded: 5 (preamble lines skipped: 7)",
		"Rows dropped: 1 timestamp, 0 measurement, 1 outside range",
		"Rows used: 3",
		"Generated: 2024-03-01T12:00:00Z",
		"| UV irradiance | UV Irradiance (W/m2) |",
		"Available: 05/01/2024 12:00 to 06/01/2024 09:00",
		"[RESULT]\nMode: rate\n",
		"[NOTES]\n- 1 rows dropped: unparseable date/time\n  - row 3: unparseable date/time \"fecha rota\"\n",
	} {
		assert.Contains(t, md, want)
	}
}

func TestRunUV_UnfilteredAndIntervalDrop(t *testing.T) {
	freezeClock(t)
	opt := med.DefaultOptions()
	opt.Mode = med.ModeInterval
	opt.FirstInterval = med.DropFirst

	res, err := New(nil, nil).RunUV(context.Background(), uvTable(), UVRequest{Dataset: dataset.DefaultOptions(), MED: opt})
	require.NoError(t, err)
	assert.False(t, res.Filtered())
	assert.Equal(t, "Mostrando todos los datos del archivo.", res.InfoLine())
	assert.Len(t, res.MED.Rows, 3)
	assert.Contains(t, res.Notes, "first row dropped by the drop interval policy")
	assert.True(t, strings.HasPrefix(res.Result[1], "MED (Tipo II, 250 J/m²): peak "))
	assert.Contains(t, res.Result[1], "cumulative")
}

func TestRunUV_Errors(t *testing.T) {
	p := New(nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.RunUV(ctx, uvTable(), UVRequest{MED: med.DefaultOptions()})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = p.RunUV(context.Background(), uvTable(), UVRequest{
		Dataset: dataset.DefaultOptions(),
		Range:   dataset.Range{Start: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)},
		MED:     med.DefaultOptions(),
	})
	var empty *dataset.EmptyRangeError
	assert.ErrorAs(t, err, &empty)

	tbl := uvTable()
	tbl.Header[1] = "Radiación"
	_, err = p.RunUV(context.Background(), tbl, UVRequest{MED: med.DefaultOptions()})
	var missing *columns.MissingColumnError
	assert.ErrorAs(t, err, &missing)
}

func TestRunWind_SplitTimeColumns(t *testing.T) {
	freezeClock(t)
	res, err := New(nil, nil).RunWind(context.Background(), windTable(), WindRequest{Dataset: dataset.DefaultOptions(), SpeedBins: 3})
	require.NoError(t, err)

	assert.Equal(t, "Fecha + Hora", res.TimeColumn)
	assert.Equal(t, 3, res.Rose.Total)
	assert.Equal(t, 1, res.Dropped.Measurement)
	assert.Equal(t, []int{1, 0, 1, 0, 0, 0, 0, 1}, res.Rose.Counts)
	assert.Contains(t, res.Notes, "time-of-day column read as fractional minutes")
	assert.Equal(t, "Observations: 3", res.Result[0])
	assert.Contains(t, res.Result, "| N | 33.4% |")
	assert.Equal(t, time.Date(2024, 1, 5, 0, 36, 11, 0, time.UTC), res.Available.Start)
}

func TestTimeFields(t *testing.T) {
	tests := []struct {
		name     string
		header   []string
		row      []string
		override map[columns.Field]string
		want     []columns.Field
	}{
		{"single timestamp", []string{"Fecha", "UV"}, []string{"05/01/2024 12:00", "1"}, nil, []columns.Field{columns.Timestamp}},
		{"date and hour", []string{"Fecha", "Hora", "UV"}, []string{"05/01/2024", "12:00", "1"}, nil, []columns.Field{columns.Date, columns.Clock}},
		{"date and time", []string{"Date", "Time", "UV"}, []string{"2024-01-05", "12:00:00", "1"}, nil, []columns.Field{columns.Date, columns.Clock}},
		{"fractional minutes", []string{"Fecha", "Hora", "UV"}, []string{"05/01/2024", "36.18", "1"}, nil, []columns.Field{columns.Date, columns.Clock}},
		{"combined header only", []string{"Date time", "UV"}, []string{"05/01/2024 12:00", "1"}, nil, []columns.Field{columns.Timestamp}},
		{"unrelated time column", []string{"Fecha", "UV", "Time step (s)"}, []string{"05/01/2024 12:00", "100", "60"}, nil, []columns.Field{columns.Timestamp}},
		{"date already has a time", []string{"Fecha", "Tiempo de exposición", "UV"}, []string{"05/01/2024 12:00", "1.5", "1"}, nil, []columns.Field{columns.Timestamp}},
		{"timestamp override wins", []string{"Fecha", "Hora"}, []string{"05/01/2024", "12:00"}, map[columns.Field]string{columns.Timestamp: "Fecha"}, []columns.Field{columns.Timestamp}},
		{"split override", []string{"Dia", "Reloj"}, []string{"05/01/2024", "12:00"}, map[columns.Field]string{columns.Date: "Dia", columns.Clock: "Reloj"}, []columns.Field{columns.Date, columns.Clock}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := &table.Table{Header: tt.header, Rows: [][]string{tt.row}}
			got := TimeFields(columns.Resolver{Overrides: tt.override}, tbl)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunUV_TimestampWithUnrelatedTimeColumn(t *testing.T) {
	freezeClock(t)
	tbl := &table.Table{
		Name:   "uv.csv",
		Header: []string{"Fecha", "UV", "Time step (s)"},
		Rows: [][]string{
			{"05/01/2024 12:00", "100", "60"},
			{"05/01/2024 12:01", "100", "60"},
		},
	}
	res, err := New(nil, nil).RunUV(context.Background(), tbl, UVRequest{Dataset: dataset.DefaultOptions(), MED: med.DefaultOptions()})
	require.NoError(t, err)

	assert.Equal(t, "Fecha", res.TimeColumn)
	assert.Equal(t, 2, res.Kept)
	assert.Zero(t, res.Dropped.Total())
	assert.Equal(t, time.Date(2024, 1, 5, 12, 1, 0, 0, time.UTC), res.Available.End)
}
