package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/uvmed-cli/internal/columns"
	"github.com/KaramelBytes/uvmed-cli/internal/config"
	"github.com/KaramelBytes/uvmed-cli/internal/dataset"
	"github.com/KaramelBytes/uvmed-cli/internal/med"
	"github.com/KaramelBytes/uvmed-cli/internal/table"
)

// Settings are the user-facing options shared by the CLI flags and the
// upload form. Zero values fall back to the configuration defaults.
type Settings struct {
	Skin           string
	Skins          []string
	Mode           string
	FixedThreshold float64
	FirstInterval  string

	SkipRows  int
	Delimiter string
	Decimal   string
	Thousands string
	DayFirst  bool
	Sheet     string
	MaxRows   int

	Policy string
	// Column overrides by field.
	Columns map[columns.Field]string

	From string
	To   string

	SpeedBins int
}

// SettingsFromConfig seeds Settings for tool from the loaded configuration.
func SettingsFromConfig(c *config.Global, tool string) Settings {
	s := Settings{
		Skin:           c.SkinType,
		Skins:          append([]string{}, c.SkinTypes...),
		Mode:           c.UVMode,
		FixedThreshold: c.FixedThreshold,
		FirstInterval:  c.FirstInterval,
		SkipRows:       c.UVSkipRows,
		Delimiter:      c.Delimiter,
		Decimal:        c.Decimal,
		Thousands:      c.Thousands,
		DayFirst:       c.DayFirst,
		MaxRows:        c.MaxRows,
		Policy:         c.ColumnPolicy,
		Columns:        map[columns.Field]string{},
		SpeedBins:      c.SpeedBins,
	}
	if tool == ToolWind {
		s.SkipRows = c.WindSkipRows
	}
	return s
}

// InvalidSettingError reports a user option that cannot be interpreted.
type InvalidSettingError struct {
	Name string
	Err  error
}

func (e *InvalidSettingError) Error() string { return fmt.Sprintf("invalid %s: %v", e.Name, e.Err) }
func (e *InvalidSettingError) Unwrap() error  { return e.Err }

func invalid(name string, err error) error { return &InvalidSettingError{Name: name, Err: err} }

// TableOptions returns the loader options for the given measurement fields.
func (s Settings) TableOptions(fields ...columns.Field) (table.Options, error) {
	opt := table.DefaultOptions()
	opt.SkipRows = s.SkipRows
	opt.SheetName = s.Sheet
	opt.MaxRows = s.MaxRows
	opt.HeaderHint = columns.HeaderHint(append([]columns.Field{columns.Timestamp}, fields...)...)
	if s.Delimiter != "" {
		d, ok := table.ParseSeparator(s.Delimiter)
		if !ok {
			return opt, invalid("delimiter", fmt.Errorf("%q", s.Delimiter))
		}
		opt.Delimiter = d
	}
	return opt, nil
}

// DatasetOptions returns the timestamp and number parsing options.
func (s Settings) DatasetOptions() (dataset.Options, error) {
	opt := dataset.Options{DayFirst: s.DayFirst}
	if s.Decimal != "" {
		d, ok := table.ParseSeparator(s.Decimal)
		if !ok {
			return opt, invalid("decimal separator", fmt.Errorf("%q", s.Decimal))
		}
		opt.Number.Decimal = d
	}
	if s.Thousands != "" {
		t, ok := table.ParseSeparator(s.Thousands)
		if !ok {
			return opt, invalid("thousands separator", fmt.Errorf("%q", s.Thousands))
		}
		opt.Number.Thousands = t
	}
	return opt, nil
}

// Resolver builds the column resolver. chooser may be nil.
func (s Settings) Resolver(chooser columns.Chooser) (columns.Resolver, error) {
	p, err := columns.ParsePolicy(s.Policy)
	if err != nil {
		return columns.Resolver{}, invalid("column policy", err)
	}
	r := columns.Resolver{Policy: p, Chooser: chooser, Overrides: map[columns.Field]string{}}
	for f, name := range s.Columns {
		if strings.TrimSpace(name) != "" {
			r.Overrides[f] = name
		}
	}
	return r, nil
}

// Range parses From and To. A date-only To covers the whole day.
func (s Settings) Range() (dataset.Range, error) {
	return ParseRange(s.From, s.To, s.DayFirst)
}

// ParseRange parses user-entered bounds. Empty bounds stay zero.
func ParseRange(from, to string, dayFirst bool) (dataset.Range, error) {
	var r dataset.Range
	if strings.TrimSpace(from) != "" {
		t, ok := dataset.ParseTimestamp(from, dayFirst)
		if !ok {
			return r, invalid("start date", fmt.Errorf("%q is not a date (use dd/mm/yyyy [HH:MM])", from))
		}
		r.Start = t
	}
	if strings.TrimSpace(to) != "" {
		t, ok := dataset.ParseTimestamp(to, dayFirst)
		if !ok {
			return r, invalid("end date", fmt.Errorf("%q is not a date (use dd/mm/yyyy [HH:MM])", to))
		}
		if !strings.ContainsAny(strings.TrimSpace(to), ": T") {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		r.End = t
	}
	if !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start) {
		return r, invalid("range", fmt.Errorf("end %s is before start %s",
			r.End.Format(dataset.DisplayLayout), r.Start.Format(dataset.DisplayLayout)))
	}
	return r, nil
}

// MEDOptions resolves the skin table entries and conversion mode.
func (s Settings) MEDOptions() (med.Options, error) {
	opt := med.DefaultOptions()
	mode, err := med.ParseMode(s.Mode)
	if err != nil {
		return opt, invalid("uv mode", err)
	}
	opt.Mode = mode
	if s.Skin != "" {
		skin, err := med.LookupSkin(s.Skin)
		if err != nil {
			return opt, err
		}
		opt.Skin = skin
	}
	if mode == med.ModeMulti {
		names := s.Skins
		if len(names) == 0 {
			for _, st := range med.SkinTypes {
				names = append(names, st.Label)
			}
		}
		skins, err := med.LookupSkins(names)
		if err != nil {
			return opt, err
		}
		opt.Skins = skins
	}
	if s.FixedThreshold > 0 {
		opt.FixedThreshold = s.FixedThreshold
	}
	fi, err := med.ParseFirstInterval(s.FirstInterval)
	if err != nil {
		return opt, invalid("first interval policy", err)
	}
	opt.FirstInterval = fi
	return opt, nil
}

// UVRequest assembles a complete UV request.
func (s Settings) UVRequest(chooser columns.Chooser) (UVRequest, error) {
	var req UVRequest
	var err error
	if req.Resolver, err = s.Resolver(chooser); err != nil {
		return req, err
	}
	if req.Dataset, err = s.DatasetOptions(); err != nil {
		return req, err
	}
	if req.Range, err = s.Range(); err != nil {
		return req, err
	}
	if req.MED, err = s.MEDOptions(); err != nil {
		return req, err
	}
	return req, nil
}

// WindRequest assembles a complete wind request.
func (s Settings) WindRequest(chooser columns.Chooser) (WindRequest, error) {
	req := WindRequest{SpeedBins: s.SpeedBins}
	var err error
	if req.Resolver, err = s.Resolver(chooser); err != nil {
		return req, err
	}
	if req.Dataset, err = s.DatasetOptions(); err != nil {
		return req, err
	}
	if req.Range, err = s.Range(); err != nil {
		return req, err
	}
	if req.SpeedBins < 0 {
		return req, invalid("speed bins", fmt.Errorf("%d", req.SpeedBins))
	}
	return req, nil
}
