// Package pipeline runs the UV and wind tools end to end on a loaded table:
// resolve columns, normalize timestamps, filter the range, then convert or
// aggregate.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KaramelBytes/uvmed-cli/internal/columns"
	"github.com/KaramelBytes/uvmed-cli/internal/dataset"
	"github.com/KaramelBytes/uvmed-cli/internal/med"
	"github.com/KaramelBytes/uvmed-cli/internal/observability"
	"github.com/KaramelBytes/uvmed-cli/internal/table"
	"github.com/KaramelBytes/uvmed-cli/internal/windrose"
)

// Tool names used in reports, logs and metrics.
const (
	ToolUV   = "uv"
	ToolWind = "wind"
)

// Pipeline executes the processing stages for one upload at a time.
type Pipeline struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Pipeline. metrics may be nil.
func New(logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	if logger == nil {
		logger = observability.Discard()
	}
	return &Pipeline{logger: logger, metrics: metrics}
}

// UVRequest configures a UV conversion.
type UVRequest struct {
	Resolver columns.Resolver
	Dataset  dataset.Options
	Range    dataset.Range
	MED      med.Options
}

// WindRequest configures a wind rose aggregation.
type WindRequest struct {
	Resolver  columns.Resolver
	Dataset   dataset.Options
	Range     dataset.Range
	SpeedBins int
}

// UVResult is the outcome of RunUV.
type UVResult struct {
	Report
	Dataset *dataset.Dataset
	MED     *med.Result
}

// WindResult is the outcome of RunWind.
type WindResult struct {
	Report
	Dataset *dataset.Dataset
	Rose    *windrose.Rose
}

// RunUV converts the UV column of t into MED units.
func (p *Pipeline) RunUV(ctx context.Context, t *table.Table, req UVRequest) (*UVResult, error) {
	ds, rep, err := p.prepare(ctx, ToolUV, t, req.Resolver, req.Dataset, req.Range, columns.UV)
	if err != nil {
		return nil, err
	}
	res, err := med.Convert(ds, req.MED)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	p.logger.Debug("converted", "tool", ToolUV, "mode", res.Mode, "rows", len(res.Rows), "columns", len(res.Columns))

	rep.Result = uvResultLines(res)
	if res.Mode == med.ModeInterval && len(res.Rows) < len(ds.Rows) {
		rep.Notes = append(rep.Notes, fmt.Sprintf("first row dropped by the %s interval policy", req.MED.FirstInterval))
	}
	return &UVResult{Report: *rep, Dataset: ds, MED: res}, nil
}

// RunWind aggregates the speed and direction columns of t into a wind rose.
func (p *Pipeline) RunWind(ctx context.Context, t *table.Table, req WindRequest) (*WindResult, error) {
	ds, rep, err := p.prepare(ctx, ToolWind, t, req.Resolver, req.Dataset, req.Range, columns.Speed, columns.Direction)
	if err != nil {
		return nil, err
	}
	rose, err := windrose.FromDataset(ds, req.SpeedBins)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	p.logger.Debug("aggregated", "tool", ToolWind, "total", rose.Total, "speed_classes", len(rose.SpeedEdges))

	rep.Result = windResultLines(rose)
	return &WindResult{Report: *rep, Dataset: ds, Rose: rose}, nil
}

// prepare runs Resolve -> Build -> Filter and fills the common report fields.
func (p *Pipeline) prepare(ctx context.Context, tool string, t *table.Table, r columns.Resolver, opt dataset.Options, rng dataset.Range, measures ...columns.Field) (*dataset.Dataset, *Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	log := p.logger.With("tool", tool, "source", t.Name)

	fields := append(TimeFields(r, t), measures...)
	m, err := r.Resolve(t.Header, fields...)
	if err != nil {
		return nil, nil, err
	}
	log.Debug("columns resolved", "mapping", mappingAttr(m, fields))

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	all, err := dataset.Build(t, m, measures, opt)
	if err != nil {
		return nil, nil, err
	}
	log.Debug("dataset built", "rows", len(all.Rows),
		"dropped_timestamp", all.Dropped.Timestamp, "dropped_measurement", all.Dropped.Measurement)

	ds, err := all.Filter(rng)
	if err != nil {
		p.observeDrops(all.Dropped, 0)
		return nil, nil, err
	}
	outside := len(all.Rows) - len(ds.Rows)
	p.observeDrops(all.Dropped, outside)
	log.Debug("range applied", "kept", len(ds.Rows), "outside", outside, "filtered", ds.Filtered())

	rep := &Report{
		Tool:        tool,
		Source:      t.Name,
		Sheet:       t.Sheet,
		Loaded:      len(t.Rows),
		Preamble:    t.Skipped,
		Truncated:   t.Truncated,
		TimeColumn:  ds.TimeColumn(),
		Dropped:     all.Dropped,
		OutOfRange:  outside,
		Available:   all.Bounds(),
		Range:       ds.Range,
		Kept:        len(ds.Rows),
		GeneratedAt: clock.Now(),
	}
	for _, f := range fields {
		rep.Columns = append(rep.Columns, Resolved{Field: f, Column: m[f].Name})
	}
	if ds.Mapping.Has(columns.Clock) && ds.Clock == dataset.ClockFractionalMinutes {
		rep.Notes = append(rep.Notes, "time-of-day column read as fractional minutes")
	}
	return ds, rep, nil
}

func (p *Pipeline) observeDrops(d dataset.Drops, outside int) {
	if p.metrics == nil {
		return
	}
	p.metrics.ObserveDrops(d.Timestamp, d.Measurement, outside)
}

// TimeFields picks the timestamp layout of a table: split Date + Clock
// columns when a distinct pair exists and its cells combine into timestamps,
// a single Timestamp otherwise. Overrides for either layout take precedence.
func TimeFields(r columns.Resolver, t *table.Table) []columns.Field {
	if name := r.Overrides[columns.Timestamp]; name != "" {
		return []columns.Field{columns.Timestamp}
	}
	if r.Overrides[columns.Date] != "" && r.Overrides[columns.Clock] != "" {
		return []columns.Field{columns.Date, columns.Clock}
	}
	for _, d := range columns.Candidates(t.Header, columns.Date) {
		if columns.Matches(columns.Clock, d.Name) {
			continue
		}
		for _, c := range columns.Candidates(t.Header, columns.Clock) {
			if c.Index == d.Index || columns.Matches(columns.Date, c.Name) {
				continue
			}
			if dataset.SplitUsable(columnCells(t, d.Index), columnCells(t, c.Index)) {
				return []columns.Field{columns.Date, columns.Clock}
			}
		}
	}
	return []columns.Field{columns.Timestamp}
}

func columnCells(t *table.Table, col int) []string {
	out := make([]string, len(t.Rows))
	for i := range t.Rows {
		out[i] = t.Cell(i, col)
	}
	return out
}

func mappingAttr(m columns.Mapping, fields []columns.Field) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, fmt.Sprintf("%s=%s", f, m[f].Name))
	}
	return out
}
