package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/uvmed-cli/internal/chart"
	"github.com/KaramelBytes/uvmed-cli/internal/columns"
	"github.com/KaramelBytes/uvmed-cli/internal/export"
	"github.com/KaramelBytes/uvmed-cli/internal/pipeline"
	"github.com/KaramelBytes/uvmed-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	uvIn            inputFlags
	uvSkin          string
	uvSkins         []string
	uvMode          string
	uvFixed         float64
	uvFirstInterval string
	uvColumn        string
	uvChart         string
)

var uvCmd = &cobra.Command{
	Use:   "uv <file>",
	Short: "Convert UV irradiance (W/m²) to MED/h",
	Long: `Convert an erythemal UV irradiance export (CSV, TSV, gzip or XLSX) into
Minimal Erythemal Dose units.

Modes:
  rate      MED/h = W/m² × 3600 / MED(skin)        (default)
  interval  MED per sample = W/m² × Δt / MED(skin)
  fixed     MED/h with a constant threshold (--fixed-threshold, default 210 J/m²)
  multi     one MED/h column per skin type (--skins, default all six)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		set := pipeline.SettingsFromConfig(c, pipeline.ToolUV)
		uvIn.apply(cmd, &set)
		fl := cmd.Flags()
		if fl.Changed("skin") {
			set.Skin = uvSkin
		}
		if fl.Changed("skins") {
			set.Skins = uvSkins
		}
		if fl.Changed("mode") {
			set.Mode = uvMode
		}
		if fl.Changed("fixed-threshold") {
			set.FixedThreshold = uvFixed
		}
		if fl.Changed("first-interval") {
			set.FirstInterval = uvFirstInterval
		}
		setColumn(&set, columns.UV, uvColumn)

		req, err := set.UVRequest(newPromptChooser(cmd.InOrStdin(), cmd.ErrOrStderr()))
		if err != nil {
			return err
		}
		t, err := loadTable(args[0], set, columns.UV)
		if err != nil {
			return err
		}
		res, err := pipeline.New(newLogger(), nil).RunUV(cmd.Context(), t, req)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Converted %d rows from %s (%s)\n", res.Kept, t.Name, res.MED.Mode)
		fmt.Fprintln(out, res.InfoLine())
		for _, l := range res.Result[1:] {
			fmt.Fprintln(out, "  "+l)
		}
		printWarnings(cmd.ErrOrStderr(), res.Warnings())

		format := uvIn.format
		if format == "" {
			format = utils.FormatFromPath(uvIn.output, "xlsx")
		}
		var write func(io.Writer) error
		switch strings.ToLower(format) {
		case "xlsx":
			write = func(w io.Writer) error { return export.WriteUVWorkbook(w, res.Dataset, res.MED) }
		case "csv":
			write = func(w io.Writer) error { return export.WriteUVCSV(w, res.MED) }
		case "parquet":
			write = func(w io.Writer) error { return export.WriteUVParquet(w, res.MED) }
		case "png":
			write = func(w io.Writer) error { return chart.MEDSeries(w, res.MED, chartOptions(res.Report)) }
		case "md":
			write = func(w io.Writer) error { _, err := io.WriteString(w, res.Markdown()); return err }
		default:
			return fmt.Errorf("unsupported --format: %s (use xlsx, csv, parquet, png or md)", format)
		}
		name := strings.TrimSuffix(export.DefaultUVWorkbook, ".xlsx") + "." + strings.ToLower(format)
		path := utils.OutputPath(uvIn.output, c.OutputDir, name)
		if err := utils.WriteFileWith(path, write); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(out, "✓ Wrote %s\n", path)

		if uvChart != "" {
			if err := utils.WriteFileWith(uvChart, func(w io.Writer) error {
				return chart.MEDSeries(w, res.MED, chartOptions(res.Report))
			}); err != nil {
				return fmt.Errorf("write chart: %w", err)
			}
			fmt.Fprintf(out, "✓ Wrote chart to %s\n", uvChart)
		}
		return writeReport(out, uvIn.report, res.Markdown())
	},
}

func init() {
	rootCmd.AddCommand(uvCmd)
	uvIn.register(uvCmd)
	uvCmd.Flags().StringVar(&uvSkin, "skin", "", "skin type for rate/interval modes, e.g. 'Tipo II', II or 2 (overrides config)")
	uvCmd.Flags().StringSliceVar(&uvSkins, "skins", nil, "skin types for multi mode (comma-separated)")
	uvCmd.Flags().StringVar(&uvMode, "mode", "", "conversion mode: rate|interval|fixed|multi (overrides config)")
	uvCmd.Flags().Float64Var(&uvFixed, "fixed-threshold", 0, "threshold for fixed mode in J/m² (overrides config)")
	uvCmd.Flags().StringVar(&uvFirstInterval, "first-interval", "", "interval mode first row: backfill|drop|zero (overrides config)")
	uvCmd.Flags().StringVar(&uvColumn, "uv-column", "", "use this column as the UV irradiance")
	uvCmd.Flags().StringVar(&uvChart, "chart", "", "also render the MED time series PNG to this path")
}

func chartOptions(rep pipeline.Report) chart.Options {
	c := currentConfig()
	return chart.Options{Width: c.ChartWidth, Height: c.ChartHeight, Subtitle: rep.InfoLine()}
}

func printWarnings(w io.Writer, warnings []string) {
	for _, m := range warnings {
		if strings.HasPrefix(m, "  ") {
			fmt.Fprintln(w, "  "+strings.TrimSpace(m))
			continue
		}
		fmt.Fprintln(w, "⚠ Warning:", m)
	}
}

func writeReport(out io.Writer, path, md string) error {
	if path == "" {
		return nil
	}
	if err := utils.WriteFileWith(path, func(w io.Writer) error {
		_, err := io.WriteString(w, md)
		return err
	}); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(out, "✓ Wrote report to %s\n", path)
	return nil
}
