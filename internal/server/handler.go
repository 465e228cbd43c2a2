package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KaramelBytes/uvmed-cli/internal/chart"
	"github.com/KaramelBytes/uvmed-cli/internal/columns"
	"github.com/KaramelBytes/uvmed-cli/internal/dataset"
	"github.com/KaramelBytes/uvmed-cli/internal/export"
	"github.com/KaramelBytes/uvmed-cli/internal/med"
	"github.com/KaramelBytes/uvmed-cli/internal/pipeline"
	"github.com/KaramelBytes/uvmed-cli/internal/table"
	"github.com/KaramelBytes/uvmed-cli/internal/windrose"
)

const (
	contentXLSX    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentCSV     = "text/csv; charset=utf-8"
	contentParquet = "application/vnd.apache.parquet"
	contentPNG     = "image/png"
	contentMD      = "text/markdown; charset=utf-8"
)

// SkinTypes lists the MED reference table.
func (s *Server) SkinTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": med.SkinTypes, "fixed_threshold": s.cfg.FixedThreshold})
}

// ConvertUV converts an uploaded UV file to MED units.
func (s *Server) ConvertUV(c *gin.Context) {
	start := time.Now()
	format := strings.ToLower(c.DefaultPostForm("format", "xlsx"))
	if !oneOf(format, "xlsx", "csv", "parquet", "png", "json", "md") {
		s.fail(c, pipeline.ToolUV, start, NewHTTPError(http.StatusBadRequest, "invalid_request", fmt.Sprintf("unsupported format %q", format), nil))
		return
	}
	set, err := s.formSettings(c, pipeline.ToolUV)
	if err != nil {
		s.fail(c, pipeline.ToolUV, start, err)
		return
	}
	req, err := set.UVRequest(nil)
	if err != nil {
		s.fail(c, pipeline.ToolUV, start, err)
		return
	}
	t, err := s.loadUpload(c, set, columns.UV)
	if err != nil {
		s.fail(c, pipeline.ToolUV, start, err)
		return
	}
	res, err := s.pipeline.RunUV(c.Request.Context(), t, req)
	if err != nil {
		s.fail(c, pipeline.ToolUV, start, err)
		return
	}
	requestLogger(c, s.logger).Info("uv converted", "file", t.Name, "rows", res.Kept, "mode", res.MED.Mode, "format", format)

	var buf bytes.Buffer
	switch format {
	case "json":
		s.metrics.ObserveUpload(pipeline.ToolUV, nil, time.Since(start).Seconds())
		c.JSON(http.StatusOK, uvJSON(res))
		return
	case "md":
		buf.WriteString(res.Markdown())
	case "csv":
		err = export.WriteUVCSV(&buf, res.MED)
	case "parquet":
		err = export.WriteUVParquet(&buf, res.MED)
	case "png":
		err = chart.MEDSeries(&buf, res.MED, s.chartOptions(res.Report))
	default:
		err = export.WriteUVWorkbook(&buf, res.Dataset, res.MED)
	}
	if err != nil {
		s.fail(c, pipeline.ToolUV, start, err)
		return
	}
	s.metrics.ObserveUpload(pipeline.ToolUV, nil, time.Since(start).Seconds())
	s.attach(c, uvFileName(format), format, buf.Bytes())
}

// WindRose aggregates an uploaded wind file into a wind rose.
func (s *Server) WindRose(c *gin.Context) {
	start := time.Now()
	format := strings.ToLower(c.DefaultPostForm("format", "png"))
	if !oneOf(format, "png", "json", "xlsx", "csv", "md") {
		s.fail(c, pipeline.ToolWind, start, NewHTTPError(http.StatusBadRequest, "invalid_request", fmt.Sprintf("unsupported format %q", format), nil))
		return
	}
	set, err := s.formSettings(c, pipeline.ToolWind)
	if err != nil {
		s.fail(c, pipeline.ToolWind, start, err)
		return
	}
	req, err := set.WindRequest(nil)
	if err != nil {
		s.fail(c, pipeline.ToolWind, start, err)
		return
	}
	t, err := s.loadUpload(c, set, columns.Speed, columns.Direction)
	if err != nil {
		s.fail(c, pipeline.ToolWind, start, err)
		return
	}
	res, err := s.pipeline.RunWind(c.Request.Context(), t, req)
	if err != nil {
		s.fail(c, pipeline.ToolWind, start, err)
		return
	}
	requestLogger(c, s.logger).Info("wind rose built", "file", t.Name, "rows", res.Kept, "format", format)

	var buf bytes.Buffer
	switch format {
	case "json":
		s.metrics.ObserveUpload(pipeline.ToolWind, nil, time.Since(start).Seconds())
		c.JSON(http.StatusOK, windJSON(res))
		return
	case "md":
		buf.WriteString(res.Markdown())
	case "csv":
		err = export.WriteWindCSV(&buf, res.Rose)
	case "xlsx":
		err = export.WriteWindWorkbook(&buf, res.Rose)
	default:
		err = chart.WindRose(&buf, res.Rose, s.chartOptions(res.Report))
	}
	if err != nil {
		s.fail(c, pipeline.ToolWind, start, err)
		return
	}
	s.metrics.ObserveUpload(pipeline.ToolWind, nil, time.Since(start).Seconds())
	s.attach(c, windFileName(format), format, buf.Bytes())
}

func (s *Server) fail(c *gin.Context, tool string, start time.Time, err error) {
	s.metrics.ObserveUpload(tool, err, time.Since(start).Seconds())
	abortWithError(c, err)
}

func (s *Server) attach(c *gin.Context, name, format string, body []byte) {
	ct := map[string]string{
		"xlsx": contentXLSX, "csv": contentCSV, "parquet": contentParquet, "png": contentPNG, "md": contentMD,
	}[format]
	if format != "png" {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	}
	c.Data(http.StatusOK, ct, body)
}

func (s *Server) chartOptions(rep pipeline.Report) chart.Options {
	return chart.Options{Width: s.cfg.ChartWidth, Height: s.cfg.ChartHeight, Subtitle: rep.InfoLine()}
}

func (s *Server) errTooLarge(err error) *HTTPError {
	return NewHTTPError(http.StatusRequestEntityTooLarge, "file_too_large",
		fmt.Sprintf("file exceeds %d MB", s.maxUpload()>>20), err)
}

// loadUpload reads the multipart "file" field into a table.
func (s *Server) loadUpload(c *gin.Context, set pipeline.Settings, fields ...columns.Field) (*table.Table, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, s.errTooLarge(err)
		}
		return nil, NewHTTPError(http.StatusBadRequest, "invalid_request", "file is required", err)
	}
	if fh.Size > s.maxUpload() {
		return nil, s.errTooLarge(nil)
	}
	if !table.Supported(fh.Filename) {
		return nil, &table.FileReadError{Name: fh.Filename, Err: fmt.Errorf("unsupported file type")}
	}
	f, err := fh.Open()
	if err != nil {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid_request", "failed to read upload", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid_request", "failed to read upload", err)
	}
	opt, err := set.TableOptions(fields...)
	if err != nil {
		return nil, err
	}
	if err := c.Request.Context().Err(); err != nil {
		return nil, err
	}
	return table.Load(fh.Filename, bytes.NewReader(data), opt)
}

// formSettings overlays the submitted form fields on the configured defaults.
func (s *Server) formSettings(c *gin.Context, tool string) (pipeline.Settings, error) {
	set := pipeline.SettingsFromConfig(s.cfg, tool)
	str := func(key string, dst *string) {
		if v, ok := c.GetPostForm(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("skin", &set.Skin)
	str("mode", &set.Mode)
	str("first_interval", &set.FirstInterval)
	str("delimiter", &set.Delimiter)
	str("decimal", &set.Decimal)
	str("thousands", &set.Thousands)
	str("sheet", &set.Sheet)
	str("pick", &set.Policy)
	str("from", &set.From)
	str("to", &set.To)

	if vals := c.PostFormArray("skins"); len(vals) > 0 {
		set.Skins = nil
		for _, v := range vals {
			set.Skins = append(set.Skins, splitList(v)...)
		}
	}
	for key, f := range map[string]columns.Field{
		"uv_column":        columns.UV,
		"time_column":      columns.Timestamp,
		"date_column":      columns.Date,
		"clock_column":     columns.Clock,
		"speed_column":     columns.Speed,
		"direction_column": columns.Direction,
	} {
		if v := strings.TrimSpace(c.PostForm(key)); v != "" {
			set.Columns[f] = v
		}
	}

	var err error
	if set.SkipRows, err = formInt(c, "skip_rows", set.SkipRows); err != nil {
		return set, err
	}
	if set.SpeedBins, err = formInt(c, "speed_bins", set.SpeedBins); err != nil {
		return set, err
	}
	if v := strings.TrimSpace(c.PostForm("fixed_threshold")); v != "" {
		x, perr := strconv.ParseFloat(v, 64)
		if perr != nil || x <= 0 {
			return set, NewHTTPError(http.StatusBadRequest, "invalid_request", fmt.Sprintf("invalid fixed_threshold %q", v), perr)
		}
		set.FixedThreshold = x
	}
	if v := strings.TrimSpace(c.PostForm("day_first")); v != "" {
		b, perr := strconv.ParseBool(v)
		if perr != nil {
			return set, NewHTTPError(http.StatusBadRequest, "invalid_request", fmt.Sprintf("invalid day_first %q", v), perr)
		}
		set.DayFirst = b
	}
	return set, nil
}

func formInt(c *gin.Context, key string, def int) (int, error) {
	v := strings.TrimSpace(c.PostForm(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, NewHTTPError(http.StatusBadRequest, "invalid_request", fmt.Sprintf("invalid %s %q", key, v), err)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func uvFileName(format string) string {
	if format == "xlsx" {
		return export.DefaultUVWorkbook
	}
	return strings.TrimSuffix(export.DefaultUVWorkbook, ".xlsx") + "." + format
}

func windFileName(format string) string {
	return strings.TrimSuffix(export.DefaultWindChart, ".png") + "." + format
}

type rangeJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func rangeOf(r dataset.Range) *rangeJSON {
	if r.IsZero() {
		return nil
	}
	return &rangeJSON{Start: r.Start.Format(export.TimestampLayout), End: r.End.Format(export.TimestampLayout)}
}

type reportJSON struct {
	pipeline.Report
	Info      string     `json:"info"`
	Warnings  []string   `json:"warnings,omitempty"`
	Available *rangeJSON `json:"available,omitempty"`
	Range     *rangeJSON `json:"range,omitempty"`
	Dropped   dropsJSON  `json:"dropped"`
}

type dropsJSON struct {
	Timestamp   int `json:"timestamp"`
	Measurement int `json:"measurement"`
	OutOfRange  int `json:"out_of_range"`
}

func reportOf(rep pipeline.Report) reportJSON {
	return reportJSON{
		Report:    rep,
		Info:      rep.InfoLine(),
		Warnings:  rep.Warnings(),
		Available: rangeOf(rep.Available),
		Range:     rangeOf(rep.Range),
		Dropped:   dropsJSON{Timestamp: rep.Dropped.Timestamp, Measurement: rep.Dropped.Measurement, OutOfRange: rep.OutOfRange},
	}
}

type uvColumnJSON struct {
	Name      string  `json:"name"`
	Skin      string  `json:"skin,omitempty"`
	Threshold float64 `json:"threshold"`
	Peak      float64 `json:"peak"`
	Sum       float64 `json:"sum"`
}

type uvRowJSON struct {
	Fecha  string             `json:"fecha"`
	UV     float64            `json:"uv"`
	Values map[string]float64 `json:"values"`
}

func uvJSON(res *pipeline.UVResult) gin.H {
	cols := make([]uvColumnJSON, 0, len(res.MED.Columns))
	for _, col := range res.MED.Columns {
		cols = append(cols, uvColumnJSON{Name: col.Name, Skin: col.Skin, Threshold: col.Threshold, Peak: col.Peak(), Sum: col.Sum()})
	}
	rows := make([]uvRowJSON, 0, len(res.MED.Rows))
	for i, o := range res.MED.Rows {
		r := uvRowJSON{Fecha: o.Time.Format(export.TimestampLayout), UV: res.MED.UV[i], Values: map[string]float64{}}
		for _, col := range res.MED.Columns {
			r.Values[col.Name] = col.Values[i]
		}
		rows = append(rows, r)
	}
	return gin.H{"report": reportOf(res.Report), "mode": res.MED.Mode, "columns": cols, "rows": rows}
}

type sectorJSON struct {
	Direction string    `json:"direction"`
	Count     int       `json:"count"`
	Percent   float64   `json:"percent"`
	BySpeed   []float64 `json:"by_speed"`
}

func windJSON(res *pipeline.WindResult) gin.H {
	sectors := make([]sectorJSON, 0, len(windrose.Sectors))
	for k, name := range windrose.Sectors {
		sectors = append(sectors, sectorJSON{Direction: name, Count: res.Rose.Counts[k], Percent: res.Rose.Percent[k], BySpeed: res.Rose.Freq[k]})
	}
	classes := make([]string, len(res.Rose.SpeedEdges))
	for j := range classes {
		classes[j] = res.Rose.ClassLabel(j)
	}
	return gin.H{"report": reportOf(res.Report), "total": res.Rose.Total, "speed_classes": classes, "sectors": sectors}
}
