package chart

import (
	"fmt"
	"io"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/uvmed-cli/internal/windrose"
)

// Palette colors the speed classes from calm to strong.
var Palette = []drawing.Color{
	{R: 128, G: 0, B: 128, A: 255}, // purple
	{R: 0, G: 0, B: 255, A: 255},   // blue
	{R: 0, G: 128, B: 0, A: 255},   // green
	{R: 255, G: 255, B: 0, A: 255}, // yellow
	{R: 255, G: 165, B: 0, A: 255}, // orange
	{R: 255, G: 0, B: 0, A: 255},   // red
}

// Wind rose labels.
const (
	RoseTitle   = "ROSA DE VIENTO"
	LegendTitle = "Velocidad (m/s)"
)

var (
	black = drawing.Color{R: 0, G: 0, B: 0, A: 255}
	grey  = drawing.Color{R: 190, G: 190, B: 190, A: 255}
	white = drawing.Color{R: 255, G: 255, B: 255, A: 255}
)

// ClassColor picks the palette entry for speed class j of n, spreading the
// palette when there are fewer classes than colors.
func ClassColor(j, n int) drawing.Color {
	if n <= 1 {
		return Palette[0]
	}
	k := int(math.Round(float64(j) * float64(len(Palette)-1) / float64(n-1)))
	if k >= len(Palette) {
		k = len(Palette) - 1
	}
	return Palette[k]
}

// WindRose draws stacked wedges per sector and speed class, compass labels,
// a speed legend and the sector percentage table.
func WindRose(w io.Writer, rose *windrose.Rose, opt Options) error {
	width, height := opt.size()
	r, err := gochart.PNG(width, height)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	font, err := gochart.GetDefaultFont()
	if err != nil {
		return fmt.Errorf("load font: %w", err)
	}
	r.SetFont(font)

	// background
	r.SetFillColor(white)
	r.SetStrokeColor(white)
	r.MoveTo(0, 0)
	r.LineTo(width, 0)
	r.LineTo(width, height)
	r.LineTo(0, height)
	r.Close()
	r.FillStroke()

	// the plot takes the left two thirds, legend and table the rest
	plotW := width * 2 / 3
	cx, cy := plotW/2, height/2+20
	radius := math.Min(float64(plotW), float64(height-120)) / 2 * 0.8

	maxShare := 0.0
	for k := range windrose.Sectors {
		s := 0.0
		for _, v := range rose.Freq[k] {
			s += v
		}
		maxShare = math.Max(maxShare, s)
	}
	if maxShare == 0 {
		maxShare = 1
	}
	scale := radius / maxShare

	drawGrid(r, cx, cy, radius, maxShare)

	n := len(rose.SpeedEdges)
	for k := range windrose.Sectors {
		inner := 0.0
		for j, v := range rose.Freq[k] {
			if v <= 0 {
				continue
			}
			outer := inner + v*scale
			wedge(r, cx, cy, inner, outer, float64(k)*windrose.SectorWidth, ClassColor(j, n))
			inner = outer
		}
	}

	drawCompass(r, cx, cy, radius)

	r.SetFontColor(black)
	r.SetFontSize(18)
	title := RoseTitle
	tb := r.MeasureText(title)
	r.Text(title, width/2-tb.Width()/2, 36)
	if opt.Subtitle != "" {
		r.SetFontSize(11)
		sb := r.MeasureText(opt.Subtitle)
		r.Text(opt.Subtitle, width/2-sb.Width()/2, 58)
	}

	drawLegend(r, rose, plotW+10, 100)
	drawTable(r, rose, plotW+10, 140+22*(n+1))

	if err := r.Save(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// screen converts a compass bearing in degrees to renderer radians: 0 at
// north, clockwise, with y growing downwards.
func screen(bearing float64) float64 {
	return (bearing - 90) * math.Pi / 180
}

func polar(cx, cy int, rad, bearing float64) (int, int) {
	a := screen(bearing)
	return cx + int(math.Round(rad*math.Cos(a))), cy + int(math.Round(rad*math.Sin(a)))
}

// wedge fills the ring segment between inner and outer radius centered on bearing.
func wedge(r gochart.Renderer, cx, cy int, inner, outer, bearing float64, c drawing.Color) {
	half := windrose.SectorWidth/2 - 2
	start, delta := screen(bearing-half), 2*half*math.Pi/180

	r.SetFillColor(c)
	r.SetStrokeColor(white)
	r.SetStrokeWidth(1)
	x, y := polar(cx, cy, inner, bearing-half)
	r.MoveTo(x, y)
	r.ArcTo(cx, cy, outer, outer, start, delta)
	if inner > 0 {
		r.ArcTo(cx, cy, inner, inner, start+delta, -delta)
	} else {
		r.LineTo(cx, cy)
	}
	r.Close()
	r.FillStroke()
}

func drawGrid(r gochart.Renderer, cx, cy int, radius, maxShare float64) {
	r.SetStrokeColor(grey)
	r.SetStrokeWidth(1)
	r.SetFillColor(drawing.ColorTransparent)
	r.SetFontColor(grey)
	r.SetFontSize(9)
	for i := 1; i <= 4; i++ {
		rad := radius * float64(i) / 4
		r.Circle(rad, cx, cy)
		r.Stroke()
		label := fmt.Sprintf("%.1f%%", maxShare*float64(i)/4)
		x, y := polar(cx, cy, rad, 22.5)
		r.Text(label, x+2, y)
	}
	for k := range windrose.Sectors {
		x, y := polar(cx, cy, radius, float64(k)*windrose.SectorWidth)
		r.MoveTo(cx, cy)
		r.LineTo(x, y)
		r.Stroke()
	}
}

func drawCompass(r gochart.Renderer, cx, cy int, radius float64) {
	r.SetFontColor(black)
	r.SetFontSize(13)
	for k, s := range windrose.Sectors {
		x, y := polar(cx, cy, radius+22, float64(k)*windrose.SectorWidth)
		b := r.MeasureText(s)
		r.Text(s, x-b.Width()/2, y+b.Height()/2)
	}
}

func drawLegend(r gochart.Renderer, rose *windrose.Rose, x, y int) {
	r.SetFontColor(black)
	r.SetFontSize(12)
	r.Text(LegendTitle, x, y)
	n := len(rose.SpeedEdges)
	for j := range rose.SpeedEdges {
		top := y + 10 + 22*j
		r.SetFillColor(ClassColor(j, n))
		r.SetStrokeColor(black)
		r.SetStrokeWidth(1)
		r.MoveTo(x, top)
		r.LineTo(x+16, top)
		r.LineTo(x+16, top+14)
		r.LineTo(x, top+14)
		r.Close()
		r.FillStroke()
		r.SetFontSize(11)
		r.Text(rose.ClassLabel(j), x+24, top+12)
	}
}

func drawTable(r gochart.Renderer, rose *windrose.Rose, x, y int) {
	r.SetFontColor(black)
	r.SetFontSize(12)
	r.Text("Dirección", x, y)
	r.Text("% Dirección", x+90, y)
	r.SetStrokeColor(black)
	r.SetStrokeWidth(1)
	r.MoveTo(x, y+6)
	r.LineTo(x+180, y+6)
	r.Stroke()
	r.SetFontSize(11)
	for k, s := range windrose.Sectors {
		row := y + 24 + 18*k
		r.Text(s, x, row)
		r.Text(rose.PercentLabel(k), x+90, row)
	}
}
