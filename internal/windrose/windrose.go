// Package windrose buckets wind directions into compass sectors and
// computes the frequency table behind a wind rose.
package windrose

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/uvmed-cli/internal/columns"
	"github.com/KaramelBytes/uvmed-cli/internal/dataset"
)

// Sectors are the compass labels, clockwise from north. Sector k covers
// [k*45, k*45+45) degrees.
var Sectors = []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// SectorWidth is the angular width of a sector in degrees.
const SectorWidth = 360.0 / 8

// DefaultSpeedBins matches the usual six speed classes of a wind rose.
const DefaultSpeedBins = 6

// ErrNoObservations indicates an empty input.
var ErrNoObservations = errors.New("no wind observations")

// Rose is the aggregated direction/speed frequency table.
type Rose struct {
	Total int
	// Counts and Percent are indexed like Sectors. Percent is rounded to one decimal.
	Counts  []int
	Percent []float64
	// SpeedEdges are the lower bounds of the speed classes; the last class is open-ended.
	SpeedEdges []float64
	// Freq[sector][class] is the share of all observations, in percent, unrounded.
	Freq [][]float64
}

// SectorIndex maps a direction in degrees to its sector. Values outside
// [0, 360) wrap around, so 360 falls in N.
func SectorIndex(deg float64) int {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	i := int(math.Floor(d / SectorWidth))
	if i >= len(Sectors) || i < 0 {
		i = 0
	}
	return i
}

// SectorOf returns the label of the sector containing deg.
func SectorOf(deg float64) string { return Sectors[SectorIndex(deg)] }

// SpeedEdges returns n equally spaced lower bounds from min to max speed.
func SpeedEdges(speeds []float64, n int) []float64 {
	if len(speeds) == 0 {
		return nil
	}
	if n <= 0 {
		n = DefaultSpeedBins
	}
	lo, hi := speeds[0], speeds[0]
	for _, s := range speeds[1:] {
		lo = math.Min(lo, s)
		hi = math.Max(hi, s)
	}
	if hi == lo || n == 1 {
		return []float64{lo}
	}
	edges := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range edges {
		edges[i] = lo + step*float64(i)
	}
	return edges
}

// SpeedClass returns the index of the speed class containing s.
func SpeedClass(edges []float64, s float64) int {
	k := 0
	for i, e := range edges {
		if s >= e {
			k = i
		}
	}
	return k
}

// Aggregate builds the rose from parallel speed and direction series.
func Aggregate(speed, direction []float64, speedBins int) (*Rose, error) {
	if len(direction) == 0 {
		return nil, ErrNoObservations
	}
	if len(speed) != len(direction) {
		return nil, fmt.Errorf("speed and direction lengths differ: %d != %d", len(speed), len(direction))
	}
	r := &Rose{
		Total:      len(direction),
		Counts:     make([]int, len(Sectors)),
		Percent:    make([]float64, len(Sectors)),
		SpeedEdges: SpeedEdges(speed, speedBins),
		Freq:       make([][]float64, len(Sectors)),
	}
	for i := range r.Freq {
		r.Freq[i] = make([]float64, len(r.SpeedEdges))
	}
	for i, d := range direction {
		k := SectorIndex(d)
		r.Counts[k]++
		r.Freq[k][SpeedClass(r.SpeedEdges, speed[i])]++
	}
	r.Percent = roundShares(r.Counts, r.Total)
	total := float64(r.Total)
	for k := range r.Counts {
		for j := range r.Freq[k] {
			r.Freq[k][j] = r.Freq[k][j] / total * 100
		}
	}
	return r, nil
}

// roundShares converts counts into percentages with one decimal that add up
// to exactly 100.0. Tenths lost to truncation go to the largest remainders,
// ties resolved in sector order.
func roundShares(counts []int, total int) []float64 {
	tenths := make([]int, len(counts))
	rem := make([]int, len(counts))
	left := 1000
	for k, c := range counts {
		tenths[k] = c * 1000 / total
		rem[k] = c * 1000 % total
		left -= tenths[k]
	}
	order := make([]int, len(counts))
	for k := range order {
		order[k] = k
	}
	sort.SliceStable(order, func(a, b int) bool { return rem[order[a]] > rem[order[b]] })
	for _, k := range order[:left] {
		tenths[k]++
	}
	out := make([]float64, len(counts))
	for k, v := range tenths {
		out[k] = float64(v) / 10
	}
	return out
}

// FromDataset aggregates a wind dataset mapped with Speed and Direction.
func FromDataset(ds *dataset.Dataset, speedBins int) (*Rose, error) {
	speed := ds.Series(columns.Speed)
	dir := ds.Series(columns.Direction)
	if dir == nil {
		return nil, &columns.MissingColumnError{Field: columns.Direction, Header: ds.Table.Header}
	}
	if speed == nil {
		return nil, &columns.MissingColumnError{Field: columns.Speed, Header: ds.Table.Header}
	}
	return Aggregate(speed, dir, speedBins)
}

// ClassLabel renders the speed class bounds, e.g. "[2.0 : 4.0)" or ">=10.0".
func (r *Rose) ClassLabel(j int) string {
	if j == len(r.SpeedEdges)-1 {
		return fmt.Sprintf(">=%.1f", r.SpeedEdges[j])
	}
	return fmt.Sprintf("[%.1f : %.1f)", r.SpeedEdges[j], r.SpeedEdges[j+1])
}

// PercentLabel renders a sector share the way the summary table shows it.
func (r *Rose) PercentLabel(k int) string {
	return fmt.Sprintf("%.1f%%", r.Percent[k])
}
