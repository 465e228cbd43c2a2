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
	"github.com/KaramelBytes/uvmed-cli/internal/windrose"
	"github.com/spf13/cobra"
)

var (
	windIn        inputFlags
	windSpeedCol  string
	windDirCol    string
	windSpeedBins int
)

var windCmd = &cobra.Command{
	Use:   "wind <file>",
	Short: "Build an 8-sector wind rose from speed and direction data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		set := pipeline.SettingsFromConfig(c, pipeline.ToolWind)
		windIn.apply(cmd, &set)
		if cmd.Flags().Changed("speed-bins") {
			set.SpeedBins = windSpeedBins
		}
		setColumn(&set, columns.Speed, windSpeedCol)
		setColumn(&set, columns.Direction, windDirCol)

		req, err := set.WindRequest(newPromptChooser(cmd.InOrStdin(), cmd.ErrOrStderr()))
		if err != nil {
			return err
		}
		t, err := loadTable(args[0], set, columns.Speed, columns.Direction)
		if err != nil {
			return err
		}
		res, err := pipeline.New(newLogger(), nil).RunWind(cmd.Context(), t, req)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Aggregated %d observations from %s\n", res.Rose.Total, t.Name)
		fmt.Fprintln(out, res.InfoLine())
		fmt.Fprintf(out, "  %-10s %s\n", "Dirección", "% Dirección")
		for k, s := range windrose.Sectors {
			fmt.Fprintf(out, "  %-10s %s\n", s, res.Rose.PercentLabel(k))
		}
		printWarnings(cmd.ErrOrStderr(), res.Warnings())

		format := windIn.format
		if format == "" {
			format = utils.FormatFromPath(windIn.output, "png")
		}
		var write func(io.Writer) error
		switch strings.ToLower(format) {
		case "png":
			write = func(w io.Writer) error { return chart.WindRose(w, res.Rose, chartOptions(res.Report)) }
		case "xlsx":
			write = func(w io.Writer) error { return export.WriteWindWorkbook(w, res.Rose) }
		case "csv":
			write = func(w io.Writer) error { return export.WriteWindCSV(w, res.Rose) }
		case "md":
			write = func(w io.Writer) error { _, err := io.WriteString(w, res.Markdown()); return err }
		default:
			return fmt.Errorf("unsupported --format: %s (use png, xlsx, csv or md)", format)
		}
		name := strings.TrimSuffix(export.DefaultWindChart, ".png") + "." + strings.ToLower(format)
		path := utils.OutputPath(windIn.output, c.OutputDir, name)
		if err := utils.WriteFileWith(path, write); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(out, "✓ Wrote %s\n", path)
		return writeReport(out, windIn.report, res.Markdown())
	},
}

func init() {
	rootCmd.AddCommand(windCmd)
	windIn.register(windCmd)
	windCmd.Flags().StringVar(&windSpeedCol, "speed-column", "", "use this column as the wind speed")
	windCmd.Flags().StringVar(&windDirCol, "direction-column", "", "use this column as the wind direction")
	windCmd.Flags().IntVar(&windSpeedBins, "speed-bins", 0, "number of speed classes in the rose (overrides config)")
}
