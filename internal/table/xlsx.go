package table

import (
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".xlsx")
}

// Load reads the selected sheet. Date-formatted cells are rewritten from the
// Excel serial into ISO text so later parsing does not depend on the display format.
func (xlsxLoader) Load(name string, r io.Reader, opt Options) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet, err := pickSheet(f, opt.SheetName, opt.SheetIndex)
	if err != nil {
		return nil, &FileReadError{Name: name, Err: err}
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	shown, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	rows := make([][]string, len(raw))
	for i, rec := range raw {
		out := make([]string, len(rec))
		for j, v := range rec {
			disp := v
			if i < len(shown) && j < len(shown[i]) {
				disp = shown[i][j]
			}
			out[j] = excelCell(v, disp, date1904)
		}
		rows[i] = out
	}

	start := findHeaderRow(rows, opt)
	if start >= len(rows) {
		return nil, &FileReadError{Name: name, Err: ErrNoData}
	}
	t := &Table{Name: name, Sheet: sheet, Header: cleanHeader(rows[start]), Skipped: start}
	t.Rows, t.Truncated = normalizeRows(t.Header, rows[start+1:], opt.MaxRows)
	return t, nil
}

func pickSheet(f *excelize.File, name string, index int) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}
	if name != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, name) {
				return s, nil
			}
		}
		return "", fmt.Errorf("sheet '%s' not found; available sheets: %s", name, strings.Join(sheets, ", "))
	}
	if index <= 0 {
		index = 1
	}
	if index > len(sheets) {
		return "", fmt.Errorf("sheet index %d out of range (workbook has %d sheets)", index, len(sheets))
	}
	return sheets[index-1], nil
}

// findHeaderRow skips leading blank rows and, with a hint, preamble rows.
func findHeaderRow(rows [][]string, opt Options) int {
	first := -1
	for i, rec := range rows {
		if i >= headerSearchLines {
			break
		}
		if isBlank(rec) {
			continue
		}
		if first < 0 {
			first = i
		}
		if opt.HeaderHint == nil || opt.HeaderHint(cleanHeader(rec)) {
			return i
		}
	}
	if first < 0 {
		return len(rows)
	}
	return first
}

// excelCell returns the raw value unless the display text shows a date or time.
func excelCell(raw, disp string, date1904 bool) string {
	if raw == "" || raw == disp || !looksLikeDateDisplay(disp) {
		return raw
	}
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil || serial < 0 {
		return raw
	}
	if serial < 1 {
		secs := math.Round(serial * 86400)
		d := time.Duration(secs) * time.Second
		return fmt.Sprintf("%02d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
	}
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return raw
	}
	t = t.Round(time.Second)
	if serial == math.Trunc(serial) && !strings.Contains(disp, ":") {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}

func looksLikeDateDisplay(s string) bool {
	if strings.ContainsAny(s, "/:") {
		return true
	}
	return len(s) > 1 && strings.Contains(s[1:], "-") && !sciRe.MatchString(s)
}

var sciRe = regexp.MustCompile(`^[-+]?\d*\.?\d+[eE][-+]?\d+$`)
