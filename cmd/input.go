package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/KaramelBytes/uvmed-cli/internal/columns"
	"github.com/KaramelBytes/uvmed-cli/internal/pipeline"
	"github.com/KaramelBytes/uvmed-cli/internal/table"
	"github.com/spf13/cobra"
)

// inputFlags are shared by the uv and wind commands.
type inputFlags struct {
	from, to   string
	pick       string
	skipRows   int
	delimiter  string
	decimal    string
	thousands  string
	monthFirst bool
	sheet      string
	maxRows    int
	timeCol    string
	dateCol    string
	clockCol   string
	output     string
	format     string
	report     string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.from, "from", "", "start of the range, dd/mm/yyyy [HH:MM[:SS]] (inclusive)")
	fl.StringVar(&f.to, "to", "", "end of the range, dd/mm/yyyy [HH:MM[:SS]] (inclusive; a bare date covers the whole day)")
	fl.StringVar(&f.pick, "pick", "", "column choice when several headers match: first|ask (overrides config)")
	fl.IntVar(&f.skipRows, "skip-rows", 0, "preamble lines before the header; -1 searches for it (overrides config)")
	fl.StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' ';' or 'tab' (default: sniff)")
	fl.StringVar(&f.decimal, "decimal", "", "decimal separator: '.' or 'comma' (default: auto)")
	fl.StringVar(&f.thousands, "thousands", "", "thousands separator: ',' '.' or 'space'")
	fl.BoolVar(&f.monthFirst, "month-first", false, "read slash dates as mm/dd/yyyy")
	fl.StringVar(&f.sheet, "sheet-name", "", "XLSX sheet name (default: first sheet)")
	fl.IntVar(&f.maxRows, "max-rows", 0, "stop after this many data rows (0 = all)")
	fl.StringVar(&f.timeCol, "time-column", "", "use this column as the date/time")
	fl.StringVar(&f.dateCol, "date-column", "", "date column of a split date + time layout")
	fl.StringVar(&f.clockCol, "clock-column", "", "time-of-day column of a split date + time layout")
	fl.StringVarP(&f.output, "output", "o", "", "output file (format inferred from the extension)")
	fl.StringVar(&f.format, "format", "", "output format, overrides the extension")
	fl.StringVar(&f.report, "report", "", "also write the Markdown report to this path")
}

// apply overlays explicitly set flags on settings seeded from config.
func (f *inputFlags) apply(cmd *cobra.Command, s *pipeline.Settings) {
	fl := cmd.Flags()
	s.From, s.To = f.from, f.to
	if fl.Changed("pick") {
		s.Policy = f.pick
	}
	if fl.Changed("skip-rows") {
		s.SkipRows = f.skipRows
	}
	if fl.Changed("delimiter") {
		s.Delimiter = f.delimiter
	}
	if fl.Changed("decimal") {
		s.Decimal = f.decimal
	}
	if fl.Changed("thousands") {
		s.Thousands = f.thousands
	}
	if fl.Changed("month-first") {
		s.DayFirst = !f.monthFirst
	}
	if fl.Changed("max-rows") {
		s.MaxRows = f.maxRows
	}
	s.Sheet = f.sheet
	setColumn(s, columns.Timestamp, f.timeCol)
	setColumn(s, columns.Date, f.dateCol)
	setColumn(s, columns.Clock, f.clockCol)
}

func (f *inputFlags) reset() {
	*f = inputFlags{}
}

func setColumn(s *pipeline.Settings, field columns.Field, name string) {
	if strings.TrimSpace(name) != "" {
		s.Columns[field] = name
	}
}

// loadTable opens path with loader options for the given measurement fields.
func loadTable(path string, s pipeline.Settings, fields ...columns.Field) (*table.Table, error) {
	opt, err := s.TableOptions(fields...)
	if err != nil {
		return nil, err
	}
	return table.LoadFile(path, opt)
}

// promptChooser asks on the terminal which candidate column to use.
type promptChooser struct {
	in  *bufio.Reader
	out io.Writer
}

func newPromptChooser(in io.Reader, out io.Writer) *promptChooser {
	return &promptChooser{in: bufio.NewReader(in), out: out}
}

func (p *promptChooser) Choose(f columns.Field, cands []columns.Column) (columns.Column, error) {
	fmt.Fprintf(p.out, "Several columns match %s:\n", f.Label())
	for i, c := range cands {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, c.Name)
	}
	for attempt := 0; attempt < 3; attempt++ {
		fmt.Fprintf(p.out, "Choose 1-%d [1]: ", len(cands))
		line, err := p.in.ReadString('\n')
		line = strings.TrimSpace(line)
		if line == "" {
			if err != nil && err != io.EOF {
				return columns.Column{}, err
			}
			return cands[0], nil
		}
		n, convErr := strconv.Atoi(line)
		if convErr == nil && n >= 1 && n <= len(cands) {
			return cands[n-1], nil
		}
		for _, c := range cands {
			if strings.EqualFold(c.Name, line) {
				return c, nil
			}
		}
		fmt.Fprintf(p.out, "⚠ %q is not one of the options\n", line)
		if err == io.EOF {
			break
		}
	}
	return columns.Column{}, &columns.AmbiguousColumnError{Field: f, Candidates: cands}
}
