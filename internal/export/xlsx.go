// Package export writes conversion and wind rose results as spreadsheets,
// delimited text and Parquet.
package export

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/uvmed-cli/internal/columns"
	"github.com/KaramelBytes/uvmed-cli/internal/dataset"
	"github.com/KaramelBytes/uvmed-cli/internal/med"
	"github.com/KaramelBytes/uvmed-cli/internal/windrose"
)

// Sheet names and default file names.
const (
	SheetUV   = "MED_h"
	SheetWind = "Rosa"

	DefaultUVWorkbook  = "resultado_MED_h.xlsx"
	DefaultWindChart   = "rosa_de_viento.png"
	DefaultWindSummary = "rosa_de_viento.xlsx"
)

// DateFormat is the number format applied to timestamp cells.
const DateFormat = "dd/mm/yyyy hh:mm:ss"

// WriteUVWorkbook writes the augmented table: the original header and the
// kept rows, with the derived MED columns appended. The timestamp column
// holds real date cells.
func WriteUVWorkbook(w io.Writer, ds *dataset.Dataset, res *med.Result) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), SheetUV); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := append([]string{}, ds.Table.Header...)
	for _, c := range res.Columns {
		header = append(header, c.Name)
	}
	if err := setRow(f, SheetUV, 1, toCells(header)); err != nil {
		return err
	}

	timeCol := timeColumnIndex(ds)
	measures := map[int]int{}
	for k, fld := range ds.Fields {
		measures[ds.Mapping[fld].Index] = k
	}
	width := len(ds.Table.Header)
	for i, o := range res.Rows {
		cells := make([]interface{}, 0, len(header))
		for j := 0; j < width; j++ {
			switch k, isMeasure := measures[j]; {
			case j == timeCol:
				cells = append(cells, o.Time)
			case isMeasure:
				cells = append(cells, o.Values[k])
			default:
				cells = append(cells, cellValue(ds.Table.Cell(o.Row, j)))
			}
		}
		for _, c := range res.Columns {
			cells = append(cells, c.Values[i])
		}
		if err := setRow(f, SheetUV, i+2, cells); err != nil {
			return err
		}
	}
	if err := styleDates(f, SheetUV, timeCol+1, 2, len(res.Rows)+1); err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteWindWorkbook writes the sector percentages followed by the
// sector x speed class frequency matrix.
func WriteWindWorkbook(w io.Writer, rose *windrose.Rose) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), SheetWind); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := setRow(f, SheetWind, 1, []interface{}{"Dirección", "% Dirección"}); err != nil {
		return err
	}
	for k, s := range windrose.Sectors {
		if err := setRow(f, SheetWind, k+2, []interface{}{s, rose.Percent[k]}); err != nil {
			return err
		}
	}

	row := len(windrose.Sectors) + 3
	head := []interface{}{"Velocidad (m/s)"}
	for j := range rose.SpeedEdges {
		head = append(head, rose.ClassLabel(j))
	}
	if err := setRow(f, SheetWind, row, head); err != nil {
		return err
	}
	for k, s := range windrose.Sectors {
		cells := []interface{}{s}
		for _, v := range rose.Freq[k] {
			cells = append(cells, v)
		}
		if err := setRow(f, SheetWind, row+1+k, cells); err != nil {
			return err
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func styleDates(f *excelize.File, sheet string, col, first, last int) error {
	if last < first {
		return nil
	}
	format := DateFormat
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &format})
	if err != nil {
		return fmt.Errorf("date style: %w", err)
	}
	top, err := excelize.CoordinatesToCellName(col, first)
	if err != nil {
		return err
	}
	bottom, err := excelize.CoordinatesToCellName(col, last)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, top, bottom, style); err != nil {
		return fmt.Errorf("date style: %w", err)
	}
	name, _ := excelize.ColumnNumberToName(col)
	return f.SetColWidth(sheet, name, name, 20)
}

// timeColumnIndex is the column that receives the parsed timestamp: the
// timestamp column, or the date column of a split layout.
func timeColumnIndex(ds *dataset.Dataset) int {
	if c, ok := ds.Mapping[columns.Timestamp]; ok {
		return c.Index
	}
	return ds.Mapping[columns.Date].Index
}

func toCells(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// cellValue keeps plain numbers numeric and everything else as text.
func cellValue(s string) interface{} {
	if s == "" {
		return nil
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return v
	}
	return s
}
