package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/uvmed-cli/internal/columns"
	"github.com/KaramelBytes/uvmed-cli/internal/dataset"
	"github.com/KaramelBytes/uvmed-cli/internal/pipeline"
	"github.com/KaramelBytes/uvmed-cli/internal/table"
	"github.com/KaramelBytes/uvmed-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	insTool       string
	insOutputPath string
	insSampleRows int
	insSkipRows   int
	insDelimiter  string
	insDecimal    string
	insThousands  string
	insSheetName  string
	insSheetIndex int
	insMonthFirst bool
	insMaxRows    int
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Profile a CSV/XLSX upload and show which columns each tool would use",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		tool := strings.ToLower(strings.TrimSpace(insTool))
		var fields []columns.Field
		switch tool {
		case pipeline.ToolUV, "":
			tool = pipeline.ToolUV
			fields = []columns.Field{columns.UV}
		case pipeline.ToolWind:
			fields = []columns.Field{columns.Speed, columns.Direction}
		default:
			return fmt.Errorf("unsupported --tool: %s (use uv or wind)", insTool)
		}

		set := pipeline.SettingsFromConfig(currentConfig(), tool)
		fl := cmd.Flags()
		if fl.Changed("skip-rows") {
			set.SkipRows = insSkipRows
		}
		if insDelimiter != "" {
			set.Delimiter = insDelimiter
		}
		if insDecimal != "" {
			set.Decimal = insDecimal
		}
		if insThousands != "" {
			set.Thousands = insThousands
		}
		if fl.Changed("month-first") {
			set.DayFirst = !insMonthFirst
		}
		if insMaxRows > 0 {
			set.MaxRows = insMaxRows
		}
		opt, err := set.TableOptions(fields...)
		if err != nil {
			return err
		}
		opt.SheetName = insSheetName
		if insSheetIndex > 0 {
			opt.SheetIndex = insSheetIndex
		}
		dopt, err := set.DatasetOptions()
		if err != nil {
			return err
		}

		t, err := table.LoadFile(path, opt)
		if err != nil {
			return err
		}
		sum := table.Summarize(t, table.SummaryOptions{
			Number:     dopt.Number,
			SampleRows: insSampleRows,
			IsTime:     dataset.LooksLikeTimestamp,
		})
		sum.Sections = append(sum.Sections, candidateSection(t, tool, fields))
		md := sum.Markdown()

		if insOutputPath != "" {
			if err := utils.WriteFileWith(insOutputPath, func(w io.Writer) error {
				_, err := io.WriteString(w, md)
				return err
			}); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote summary to %s\n", insOutputPath)
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	},
}

// candidateSection lists every header that matches each field, marking the
// one the default policy would pick.
func candidateSection(t *table.Table, tool string, fields []columns.Field) table.Section {
	header := t.Header
	sec := table.Section{Title: "COLUMN CANDIDATES (" + tool + ")"}
	all := append(pipeline.TimeFields(columns.Resolver{}, t), fields...)
	m, err := columns.Resolver{Policy: columns.PickFirst}.Resolve(header, all...)
	for _, f := range all {
		cands := columns.Candidates(header, f)
		if len(cands) == 0 {
			sec.Lines = append(sec.Lines, fmt.Sprintf("- %s: none", f.Label()))
			continue
		}
		names := make([]string, len(cands))
		for i, c := range cands {
			names[i] = c.Name
			if err == nil && m[f].Index == c.Index {
				names[i] += " (selected)"
			}
		}
		sec.Lines = append(sec.Lines, fmt.Sprintf("- %s: %s", f.Label(), strings.Join(names, ", ")))
	}
	if err != nil {
		sec.Lines = append(sec.Lines, "- ✗ "+err.Error())
	}
	return sec
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&insTool, "tool", "uv", "which tool's columns to look for: uv|wind")
	inspectCmd.Flags().StringVarP(&insOutputPath, "output", "o", "", "write the summary to a file instead of stdout")
	inspectCmd.Flags().IntVar(&insSampleRows, "sample-rows", 5, "number of sample rows to include")
	inspectCmd.Flags().IntVar(&insSkipRows, "skip-rows", 0, "preamble lines before the header; -1 searches for it (overrides config)")
	inspectCmd.Flags().StringVar(&insDelimiter, "delimiter", "", "CSV delimiter: ',' ';' or 'tab' (default: sniff)")
	inspectCmd.Flags().StringVar(&insDecimal, "decimal", "", "decimal separator: '.' or 'comma' (default: auto)")
	inspectCmd.Flags().StringVar(&insThousands, "thousands", "", "thousands separator: ',' '.' or 'space'")
	inspectCmd.Flags().StringVar(&insSheetName, "sheet-name", "", "XLSX sheet name")
	inspectCmd.Flags().IntVar(&insSheetIndex, "sheet-index", 0, "XLSX sheet index (1-based)")
	inspectCmd.Flags().BoolVar(&insMonthFirst, "month-first", false, "read slash dates as mm/dd/yyyy")
	inspectCmd.Flags().IntVar(&insMaxRows, "max-rows", 0, "limit rows read (0 = all)")
}
