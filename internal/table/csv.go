package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/pgzip"
)

type csvLoader struct{}

func (csvLoader) CanLoad(name string) bool {
	n := strings.TrimSuffix(strings.ToLower(name), ".gz")
	return strings.HasSuffix(n, ".csv") || strings.HasSuffix(n, ".tsv") || strings.HasSuffix(n, ".txt")
}

func (csvLoader) Load(name string, r io.Reader, opt Options) (*Table, error) {
	if strings.HasSuffix(strings.ToLower(name), ".gz") {
		gz, err := pgzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("open gzip: %w", err)
		}
		defer gz.Close()
		r = gz
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	lines := splitLines(data, headerSearchLines+max(opt.SkipRows, 0)+1)
	skip := opt.SkipRows
	if skip < 0 {
		skip = findHeaderLine(lines, opt)
	}
	if skip >= len(lines) {
		return nil, &FileReadError{Name: name, Err: fmt.Errorf("%w: no header after skipping %d lines", ErrNoData, skip)}
	}
	offset := 0
	for i := 0; i < skip; i++ {
		offset += len(lines[i])
	}

	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(name, strings.TrimRight(lines[skip], "\r\n"))
	}
	cr := csv.NewReader(bytes.NewReader(data[offset:]))
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &FileReadError{Name: name, Err: ErrNoData}
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	t := &Table{Name: name, Header: cleanHeader(header), Skipped: skip}
	var rows [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, rec)
	}
	t.Rows, t.Truncated = normalizeRows(t.Header, rows, opt.MaxRows)
	return t, nil
}

// splitLines returns up to limit raw lines, newline included, so byte offsets can be summed.
func splitLines(data []byte, limit int) []string {
	var out []string
	for len(data) > 0 && len(out) < limit {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			out = append(out, string(data))
			break
		}
		out = append(out, string(data[:i+1]))
		data = data[i+1:]
	}
	return out
}

// findHeaderLine returns the index of the first line accepted by the header hint,
// falling back to the first non-empty line.
func findHeaderLine(lines []string, opt Options) int {
	first := -1
	for i, l := range lines {
		if i >= headerSearchLines {
			break
		}
		l = strings.TrimRight(l, "\r\n")
		if strings.TrimSpace(l) == "" {
			continue
		}
		if first < 0 {
			first = i
		}
		if opt.HeaderHint == nil {
			return i
		}
		delim := opt.Delimiter
		if delim == 0 {
			delim = sniffDelimiter("", l)
		}
		if opt.HeaderHint(cleanHeader(strings.Split(l, string(delim)))) {
			return i
		}
	}
	if first < 0 {
		return len(lines)
	}
	return first
}

// sniffDelimiter picks the most frequent candidate separator in the header line.
func sniffDelimiter(name, header string) rune {
	best, bestN := ',', 0
	for _, d := range []rune{',', ';', '\t'} {
		if n := strings.Count(header, string(d)); n > bestN {
			best, bestN = d, n
		}
	}
	if bestN == 0 && strings.HasSuffix(strings.TrimSuffix(strings.ToLower(name), ".gz"), ".tsv") {
		return '\t'
	}
	return best
}
