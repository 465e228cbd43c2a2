package table

import (
	"fmt"
	"math"
	"strings"
)

// Summary is a markdown-friendly profile of a loaded table.
type Summary struct {
	Name     string
	Sheet    string
	Rows     int
	Skipped  int
	Cols     []ColumnSummary
	Samples  [][]string
	Warnings []string
	// Extra sections rendered after the schema, in order.
	Sections []Section
}

// Section is a titled block of pre-formatted lines.
type Section struct {
	Title string
	Lines []string
}

// ColumnSummary captures inferred kind and statistics per column.
type ColumnSummary struct {
	Name    string
	Kind    string // numeric|datetime|text|empty
	NonNull int
	Missing int
	Min     float64
	Max     float64
	Mean    float64
	Std     float64
	Example string
}

// SummaryOptions controls kind inference.
type SummaryOptions struct {
	Number     NumberFormat
	SampleRows int
	// IsTime reports whether a cell parses as a timestamp.
	IsTime func(string) bool
}

// Summarize profiles every column of t.
func Summarize(t *Table, opt SummaryOptions) *Summary {
	s := &Summary{Name: t.Name, Sheet: t.Sheet, Rows: len(t.Rows), Skipped: t.Skipped}
	sampleRows := opt.SampleRows
	if sampleRows <= 0 {
		sampleRows = 5
	}
	for i := 0; i < len(t.Rows) && i < sampleRows; i++ {
		s.Samples = append(s.Samples, t.Rows[i])
	}
	for j, name := range t.Header {
		var (
			n, numCnt, dtCnt, txtCnt int
			mean, m2                 float64
			lo, hi                   = math.Inf(1), math.Inf(-1)
			cs                       = ColumnSummary{Name: name}
		)
		for i := range t.Rows {
			v := t.Cell(i, j)
			if v == "" {
				cs.Missing++
				continue
			}
			cs.NonNull++
			if cs.Example == "" {
				cs.Example = v
			}
			if x, ok := ParseNumber(v, opt.Number); ok {
				numCnt++
				// Welford update
				n++
				lo = math.Min(lo, x)
				hi = math.Max(hi, x)
				delta := x - mean
				mean += delta / float64(n)
				m2 += delta * (x - mean)
				continue
			}
			if opt.IsTime != nil && opt.IsTime(v) {
				dtCnt++
				continue
			}
			txtCnt++
		}
		switch {
		case cs.NonNull == 0:
			cs.Kind = "empty"
		case numCnt >= dtCnt && numCnt >= txtCnt:
			cs.Kind = "numeric"
			cs.Min, cs.Max, cs.Mean = lo, hi, mean
			if n > 1 {
				cs.Std = math.Sqrt(m2 / float64(n-1))
			}
		case dtCnt >= txtCnt:
			cs.Kind = "datetime"
		default:
			cs.Kind = "text"
		}
		s.Cols = append(s.Cols, cs)
	}
	if t.Truncated {
		s.Warnings = append(s.Warnings, fmt.Sprintf("processed only the first %d rows", len(t.Rows)))
	}
	return s
}

// Markdown renders a compact report.
func (s *Summary) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if s.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", s.Name))
	}
	if s.Sheet != "" {
		b.WriteString(fmt.Sprintf("Sheet: %s\n", s.Sheet))
	}
	if s.Skipped > 0 {
		b.WriteString(fmt.Sprintf("Preamble lines skipped: %d\n", s.Skipped))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", s.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(s.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range s.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.NonNull, missPct))
		switch c.Kind {
		case "numeric":
			b.WriteString(fmt.Sprintf("; min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std))
		case "datetime", "text":
			b.WriteString(fmt.Sprintf("; e.g. %s", safeVal(c.Example)))
		}
		b.WriteString("\n")
	}
	for _, sec := range s.Sections {
		b.WriteString("\n[" + sec.Title + "]\n")
		for _, l := range sec.Lines {
			b.WriteString(l)
			b.WriteString("\n")
		}
	}
	if len(s.Samples) > 0 {
		b.WriteString("\n[HEAD]\n")
		b.WriteString("| ")
		for i, c := range s.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(c.Name))
		}
		b.WriteString(" |\n| ")
		for i := range s.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range s.Samples {
			b.WriteString("| ")
			for i := range s.Cols {
				if i > 0 {
					b.WriteString(" | ")
				}
				val := ""
				if i < len(row) {
					val = strings.TrimSpace(row[i])
				}
				if len(val) > 40 {
					val = val[:37] + "..."
				}
				b.WriteString(safeVal(val))
			}
			b.WriteString(" |\n")
		}
	}
	if len(s.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range s.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
