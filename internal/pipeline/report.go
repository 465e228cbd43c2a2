package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/uvmed-cli/internal/columns"
	"github.com/KaramelBytes/uvmed-cli/internal/dataset"
	"github.com/KaramelBytes/uvmed-cli/internal/med"
	"github.com/KaramelBytes/uvmed-cli/internal/windrose"
)

// Resolved is one field -> column assignment as shown in reports.
type Resolved struct {
	Field  columns.Field `json:"field"`
	Column string        `json:"column"`
}

// Report summarizes one run for the console, the API and the Markdown export.
type Report struct {
	Tool       string     `json:"tool"`
	Source     string     `json:"source"`
	Sheet      string     `json:"sheet,omitempty"`
	Loaded     int        `json:"loaded_rows"`
	Preamble   int        `json:"preamble_rows"`
	Truncated  bool       `json:"truncated,omitempty"`
	Columns    []Resolved `json:"columns"`
	TimeColumn string     `json:"time_column"`

	Dropped    dataset.Drops `json:"-"`
	OutOfRange int           `json:"out_of_range_rows"`
	Kept       int           `json:"rows"`

	// Available is the dataset's own time span; Range the user interval, zero when unfiltered.
	Available dataset.Range `json:"-"`
	Range     dataset.Range `json:"-"`

	Result      []string  `json:"result"`
	Notes       []string  `json:"notes,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Filtered reports whether a user range was applied.
func (r *Report) Filtered() bool { return !r.Range.IsZero() }

// InfoLine is the one-line description of the displayed interval.
func (r *Report) InfoLine() string {
	if !r.Filtered() {
		return "Mostrando todos los datos del archivo."
	}
	return fmt.Sprintf("Mostrando datos desde %s hasta %s",
		r.Range.Start.Format(dataset.DisplayLayout), r.Range.End.Format(dataset.DisplayLayout))
}

// Warnings lists the non-fatal conditions worth surfacing to the user.
func (r *Report) Warnings() []string {
	var out []string
	if r.Dropped.Timestamp > 0 {
		out = append(out, fmt.Sprintf("%d rows dropped: unparseable date/time", r.Dropped.Timestamp))
		for _, s := range r.Dropped.Samples {
			out = append(out, "  "+s.Error())
		}
	}
	if r.Dropped.Measurement > 0 {
		out = append(out, fmt.Sprintf("%d rows dropped: missing or non-numeric measurement", r.Dropped.Measurement))
	}
	if r.Truncated {
		out = append(out, "input truncated at the configured row limit")
	}
	return out
}

// Markdown renders the report in the same bracketed-section layout as the
// inspect command's dataset summary.
func (r *Report) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[UPLOAD SUMMARY]\n")
	fmt.Fprintf(&b, "Tool: %s\n", r.Tool)
	fmt.Fprintf(&b, "File: %s\n", r.Source)
	if r.Sheet != "" {
		fmt.Fprintf(&b, "Sheet: %s\n", r.Sheet)
	}
	fmt.Fprintf(&b, "Rows loaded: %d (preamble lines skipped: %d)\n", r.Loaded, r.Preamble)
	fmt.Fprintf(&b, "Rows dropped: %d timestamp, %d measurement, %d outside range\n",
		r.Dropped.Timestamp, r.Dropped.Measurement, r.OutOfRange)
	fmt.Fprintf(&b, "Rows used: %d\n", r.Kept)
	fmt.Fprintf(&b, "Generated: %s\n\n", r.GeneratedAt.UTC().Format(time.RFC3339))

	b.WriteString("[COLUMNS]\n")
	b.WriteString("| Field | Column |\n|---|---|\n")
	for _, c := range r.Columns {
		fmt.Fprintf(&b, "| %s | %s |\n", c.Field.Label(), cellSafe(c.Column))
	}
	b.WriteString("\n")

	b.WriteString("[RANGE]\n")
	if !r.Available.IsZero() {
		fmt.Fprintf(&b, "Available: %s to %s\n",
			r.Available.Start.Format(dataset.DisplayLayout), r.Available.End.Format(dataset.DisplayLayout))
	}
	b.WriteString(r.InfoLine())
	b.WriteString("\n\n")

	b.WriteString("[RESULT]\n")
	for _, l := range r.Result {
		b.WriteString(l)
		b.WriteString("\n")
	}

	notes := append(r.Warnings(), r.Notes...)
	if len(notes) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, n := range notes {
			if strings.HasPrefix(n, "  ") {
				fmt.Fprintf(&b, "  - %s\n", strings.TrimSpace(n))
				continue
			}
			fmt.Fprintf(&b, "- %s\n", n)
		}
	}
	return b.String()
}

func uvResultLines(res *med.Result) []string {
	lines := []string{fmt.Sprintf("Mode: %s", res.Mode)}
	for _, c := range res.Columns {
		thr := fmt.Sprintf("%g J/m²", c.Threshold)
		if c.Skin != "" {
			thr = c.Skin + ", " + thr
		}
		if res.Mode == med.ModeInterval {
			lines = append(lines, fmt.Sprintf("%s (%s): peak %.3f, cumulative %.3f", c.Name, thr, c.Peak(), c.Sum()))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s (%s): peak %.3f", c.Name, thr, c.Peak()))
	}
	return lines
}

func windResultLines(r *windrose.Rose) []string {
	lines := []string{
		fmt.Sprintf("Observations: %d", r.Total),
		"| Dirección | % Dirección |",
		"|---|---|",
	}
	for k, s := range windrose.Sectors {
		lines = append(lines, fmt.Sprintf("| %s | %s |", s, r.PercentLabel(k)))
	}
	return lines
}

func cellSafe(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/")
}
