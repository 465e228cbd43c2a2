package table

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Table is a headered, string-typed view of an uploaded file.
type Table struct {
	// Name is the base name of the source file.
	Name string
	// Sheet is the worksheet the rows came from (XLSX only).
	Sheet  string
	Header []string
	Rows   [][]string
	// Skipped counts the preamble lines dropped before the header.
	Skipped int
	// Truncated reports whether MaxRows cut the data short.
	Truncated bool
}

// Options controls how uploads are read.
type Options struct {
	// SkipRows drops a fixed preamble before the header in delimited files.
	// A negative value searches the first lines for the header using HeaderHint.
	SkipRows int
	// Delimiter for CSV. If 0, sniffed from the header line among ',', ';', '\t'.
	Delimiter rune
	// XLSX sheet selection; SheetIndex is 1-based and used when SheetName is empty.
	SheetName  string
	SheetIndex int
	// HeaderHint reports whether a candidate row looks like the header.
	HeaderHint func(cells []string) bool
	// MaxRows limits data rows kept; 0 means unlimited.
	MaxRows int
}

// DefaultOptions returns the loader defaults for logger exports.
func DefaultOptions() Options {
	return Options{SkipRows: 7, SheetIndex: 1}
}

// headerSearchLines bounds the automatic header search.
const headerSearchLines = 30

// ErrNoData indicates an upload without a header or without data rows.
var ErrNoData = errors.New("no data rows")

// FileReadError reports a malformed or unreadable upload.
type FileReadError struct {
	Name string
	Err  error
}

func (e *FileReadError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("read upload: %v", e.Err)
	}
	return fmt.Sprintf("read %s: %v", e.Name, e.Err)
}

func (e *FileReadError) Unwrap() error { return e.Err }

// Loader reads one family of tabular formats.
type Loader interface {
	CanLoad(name string) bool
	Load(name string, r io.Reader, opt Options) (*Table, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
}

// Supported reports whether any registered loader accepts the file name.
func Supported(name string) bool {
	for _, l := range registry {
		if l.CanLoad(name) {
			return true
		}
	}
	return false
}

// Load selects a loader by file name and reads the upload.
func Load(name string, r io.Reader, opt Options) (*Table, error) {
	base := filepath.Base(name)
	for _, l := range registry {
		if !l.CanLoad(base) {
			continue
		}
		t, err := l.Load(base, r, opt)
		if err != nil {
			var fre *FileReadError
			if errors.As(err, &fre) {
				return nil, err
			}
			return nil, &FileReadError{Name: base, Err: err}
		}
		if len(t.Header) == 0 || len(t.Rows) == 0 {
			return nil, &FileReadError{Name: base, Err: ErrNoData}
		}
		return t, nil
	}
	return nil, &FileReadError{Name: base, Err: fmt.Errorf("unsupported file type %q (use .csv, .tsv, .txt, .csv.gz or .xlsx)", filepath.Ext(base))}
}

// LoadFile opens path and reads it with Load.
func LoadFile(path string, opt Options) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileReadError{Name: filepath.Base(path), Err: err}
	}
	return Load(path, bytes.NewReader(b), opt)
}

// ColumnIndex returns the index of the named column (case-insensitive), or -1.
func (t *Table) ColumnIndex(name string) int {
	want := strings.TrimSpace(name)
	for i, h := range t.Header {
		if strings.EqualFold(strings.TrimSpace(h), want) {
			return i
		}
	}
	return -1
}

// Cell returns the trimmed cell at row/col, or "" when out of range.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 {
		return ""
	}
	rec := t.Rows[row]
	if col >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[col])
}

// normalizeRows pads ragged records to the header width and drops fully blank rows.
func normalizeRows(header []string, rows [][]string, maxRows int) ([][]string, bool) {
	out := make([][]string, 0, len(rows))
	for _, rec := range rows {
		if isBlank(rec) {
			continue
		}
		if maxRows > 0 && len(out) >= maxRows {
			return out, true
		}
		if len(rec) < len(header) {
			tmp := make([]string, len(header))
			copy(tmp, rec)
			rec = tmp
		}
		out = append(out, rec)
	}
	return out, false
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func cleanHeader(rec []string) []string {
	h := make([]string, len(rec))
	for i, v := range rec {
		v = strings.TrimPrefix(v, "\ufeff")
		h[i] = strings.TrimSpace(v)
	}
	// trailing empty header cells come from trailing delimiters
	for len(h) > 0 && h[len(h)-1] == "" {
		h = h[:len(h)-1]
	}
	return h
}
