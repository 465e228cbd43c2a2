// Package chart renders PNG images of MED time series and wind roses.
package chart

import (
	"fmt"
	"io"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/KaramelBytes/uvmed-cli/internal/med"
)

// Options sizes the rendered image.
type Options struct {
	Width  int
	Height int
	// Subtitle is drawn under the title when set, e.g. the displayed range.
	Subtitle string
}

// DefaultOptions matches the usual figure size of the tools.
func DefaultOptions() Options {
	return Options{Width: 1000, Height: 800}
}

func (o Options) size() (int, int) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = 1000
	}
	if h <= 0 {
		h = 800
	}
	return w, h
}

// MEDSeries plots every derived column of res against time.
func MEDSeries(w io.Writer, res *med.Result, opt Options) error {
	if len(res.Rows) == 0 || len(res.Columns) == 0 {
		return fmt.Errorf("nothing to plot")
	}
	times := make([]time.Time, len(res.Rows))
	for i, o := range res.Rows {
		times[i] = o.Time
	}

	series := make([]gochart.Series, 0, len(res.Columns))
	for i, c := range res.Columns {
		st := gochart.Style{StrokeColor: gochart.GetDefaultColor(i), StrokeWidth: 2}
		xs, ys := times, c.Values
		// go-chart needs two distinct X values
		if len(xs) == 1 {
			xs = []time.Time{xs[0], xs[0].Add(time.Second)}
			ys = []float64{ys[0], ys[0]}
			st.DotWidth = 6
			st.DotColor = st.StrokeColor
		}
		series = append(series, gochart.TimeSeries{Name: c.Name, XValues: xs, YValues: ys, Style: st})
	}

	unit := med.ColumnRate
	if res.Mode == med.ModeInterval {
		unit = med.ColumnInterval
	}
	title := unit
	if opt.Subtitle != "" {
		title = unit + " | " + opt.Subtitle
	}
	width, height := opt.size()
	ch := gochart.Chart{
		Title:      title,
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: gochart.XAxis{
			Name:           "Fecha",
			ValueFormatter: gochart.TimeValueFormatterWithFormat("02/01 15:04"),
		},
		YAxis:  gochart.YAxis{Name: unit},
		Series: series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	if err := ch.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
