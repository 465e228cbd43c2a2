// Package med converts erythemal UV irradiance (W/m²) into Minimal
// Erythemal Dose units.
//
// Four modes are supported and none is treated as the canonical one:
// rate (instantaneous MED/h), interval (dose per sampling interval),
// fixed (rate with a constant threshold) and multi (rate per skin type).
package med

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/uvmed-cli/internal/columns"
	"github.com/KaramelBytes/uvmed-cli/internal/dataset"
)

// Mode selects the conversion formula.
type Mode string

const (
	ModeRate     Mode = "rate"
	ModeInterval Mode = "interval"
	ModeFixed    Mode = "fixed"
	ModeMulti    Mode = "multi"
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeRate, ModeInterval, ModeFixed, ModeMulti}

// ParseMode accepts the mode names and their long forms.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rate":
		return ModeRate, nil
	case "interval", "integration", "interval-integration":
		return ModeInterval, nil
	case "fixed", "fixed-constant", "constant":
		return ModeFixed, nil
	case "multi", "multi-skin":
		return ModeMulti, nil
	}
	return "", fmt.Errorf("invalid uv mode %q (use rate, interval, fixed or multi)", s)
}

// FirstInterval decides the first row's Δt in interval mode.
type FirstInterval string

const (
	// Backfill copies the second row's Δt; a single row gets Δt = 0.
	Backfill FirstInterval = "backfill"
	// DropFirst removes the first row from the result.
	DropFirst FirstInterval = "drop"
	// ZeroFirst assigns Δt = 0.
	ZeroFirst FirstInterval = "zero"
)

// ParseFirstInterval accepts backfill, drop or zero.
func ParseFirstInterval(s string) (FirstInterval, error) {
	switch FirstInterval(strings.ToLower(strings.TrimSpace(s))) {
	case "", Backfill:
		return Backfill, nil
	case DropFirst:
		return DropFirst, nil
	case ZeroFirst:
		return ZeroFirst, nil
	}
	return "", fmt.Errorf("invalid first interval policy %q (use backfill, drop or zero)", s)
}

// DefaultFixedThreshold is the constant used by fixed mode (skin type II, J/m²).
const DefaultFixedThreshold = 210.0

// Output column names.
const (
	ColumnRate     = "MED/h"
	ColumnInterval = "MED"
)

// ErrTooFewRows indicates interval mode cannot drop the only row.
var ErrTooFewRows = errors.New("interval mode with drop policy needs at least two rows")

// Options configures a conversion.
type Options struct {
	Mode Mode
	// Skin is used by rate and interval modes.
	Skin SkinType
	// Skins are used by multi mode, one output column each.
	Skins          []SkinType
	FixedThreshold float64
	FirstInterval  FirstInterval
}

// DefaultOptions is rate mode for skin type II.
func DefaultOptions() Options {
	return Options{
		Mode:           ModeRate,
		Skin:           SkinTypes[1],
		FixedThreshold: DefaultFixedThreshold,
		FirstInterval:  Backfill,
	}
}

// Column is one derived output column.
type Column struct {
	Name      string
	Skin      string
	Threshold float64
	Values    []float64
}

// Peak returns the largest value.
func (c Column) Peak() float64 {
	var p float64
	for i, v := range c.Values {
		if i == 0 || v > p {
			p = v
		}
	}
	return p
}

// Sum returns the total of all values (cumulative dose in interval mode).
func (c Column) Sum() float64 {
	var s float64
	for _, v := range c.Values {
		s += v
	}
	return s
}

// Result holds the converted rows and derived columns, aligned by index.
type Result struct {
	Mode    Mode
	Rows    []dataset.Observation
	UV      []float64
	Columns []Column
	// Intervals holds Δt per row in interval mode.
	Intervals []time.Duration
}

// Rate is uv × 3600 / threshold, in MED/h.
func Rate(uv, threshold float64) float64 {
	return uv * 3600 / threshold
}

// Dose is uv × Δt / threshold, in MED.
func Dose(uv float64, dt time.Duration, threshold float64) float64 {
	return uv * dt.Seconds() / threshold
}

// Convert applies the configured mode to the dataset's UV series.
func Convert(ds *dataset.Dataset, opt Options) (*Result, error) {
	uv := ds.Series(columns.UV)
	if uv == nil {
		return nil, &columns.MissingColumnError{Field: columns.UV, Header: ds.Table.Header}
	}
	res := &Result{Mode: opt.Mode, Rows: ds.Rows, UV: uv}
	switch opt.Mode {
	case ModeRate, "":
		res.Mode = ModeRate
		if err := checkThreshold(opt.Skin.Threshold); err != nil {
			return nil, err
		}
		res.Columns = []Column{rateColumn(ColumnRate, opt.Skin.Label, opt.Skin.Threshold, uv)}
	case ModeFixed:
		thr := opt.FixedThreshold
		if thr == 0 {
			thr = DefaultFixedThreshold
		}
		if err := checkThreshold(thr); err != nil {
			return nil, err
		}
		res.Columns = []Column{rateColumn(ColumnRate, "", thr, uv)}
	case ModeMulti:
		if len(opt.Skins) == 0 {
			return nil, fmt.Errorf("multi mode needs at least one skin type")
		}
		for _, s := range opt.Skins {
			if err := checkThreshold(s.Threshold); err != nil {
				return nil, err
			}
			res.Columns = append(res.Columns, rateColumn(ColumnRate+" - "+s.Label, s.Label, s.Threshold, uv))
		}
	case ModeInterval:
		if err := checkThreshold(opt.Skin.Threshold); err != nil {
			return nil, err
		}
		dts, start, err := Intervals(ds.Times(), opt.FirstInterval)
		if err != nil {
			return nil, err
		}
		res.Rows = ds.Rows[start:]
		res.UV = uv[start:]
		res.Intervals = dts[start:]
		col := Column{Name: ColumnInterval, Skin: opt.Skin.Label, Threshold: opt.Skin.Threshold, Values: make([]float64, len(res.UV))}
		for i, v := range res.UV {
			col.Values[i] = Dose(v, res.Intervals[i], opt.Skin.Threshold)
		}
		res.Columns = []Column{col}
	default:
		return nil, fmt.Errorf("invalid uv mode %q", opt.Mode)
	}
	return res, nil
}

// Intervals returns Δt_i = t_i − t_{i−1} and the index of the first row to keep.
func Intervals(times []time.Time, policy FirstInterval) ([]time.Duration, int, error) {
	dts := make([]time.Duration, len(times))
	for i := 1; i < len(times); i++ {
		dts[i] = times[i].Sub(times[i-1])
	}
	switch policy {
	case DropFirst:
		if len(times) < 2 {
			return nil, 0, ErrTooFewRows
		}
		return dts, 1, nil
	case ZeroFirst:
		return dts, 0, nil
	default:
		if len(times) > 1 {
			dts[0] = dts[1]
		}
		return dts, 0, nil
	}
}

func rateColumn(name, skin string, threshold float64, uv []float64) Column {
	c := Column{Name: name, Skin: skin, Threshold: threshold, Values: make([]float64, len(uv))}
	for i, v := range uv {
		c.Values[i] = Rate(v, threshold)
	}
	return c
}

func checkThreshold(t float64) error {
	if t <= 0 {
		return fmt.Errorf("MED threshold must be positive, got %g", t)
	}
	return nil
}
