package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/uvmed-cli/internal/columns"
	cfgpkg "github.com/KaramelBytes/uvmed-cli/internal/config"
	"github.com/KaramelBytes/uvmed-cli/internal/med"
	"github.com/KaramelBytes/uvmed-cli/internal/table"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set uvmed configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "skin_type: %s\n", c.SkinType)
		if len(c.SkinTypes) > 0 {
			fmt.Fprintf(out, "skin_types: %s\n", strings.Join(c.SkinTypes, ", "))
		}
		fmt.Fprintf(out, "uv_mode: %s\n", c.UVMode)
		fmt.Fprintf(out, "fixed_threshold: %g\n", c.FixedThreshold)
		fmt.Fprintf(out, "first_interval: %s\n", c.FirstInterval)
		fmt.Fprintf(out, "uv_skip_rows: %d\n", c.UVSkipRows)
		fmt.Fprintf(out, "wind_skip_rows: %d\n", c.WindSkipRows)
		if c.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %q\n", c.Delimiter)
		}
		if c.Decimal != "" {
			fmt.Fprintf(out, "decimal: %q\n", c.Decimal)
		}
		if c.Thousands != "" {
			fmt.Fprintf(out, "thousands: %q\n", c.Thousands)
		}
		fmt.Fprintf(out, "day_first: %t\n", c.DayFirst)
		fmt.Fprintf(out, "column_policy: %s\n", c.ColumnPolicy)
		if c.MaxRows > 0 {
			fmt.Fprintf(out, "max_rows: %d\n", c.MaxRows)
		}
		fmt.Fprintf(out, "speed_bins: %d\n", c.SpeedBins)
		fmt.Fprintf(out, "output_dir: %s\n", c.OutputDir)
		fmt.Fprintf(out, "chart_width: %d\n", c.ChartWidth)
		fmt.Fprintf(out, "chart_height: %d\n", c.ChartHeight)
		fmt.Fprintf(out, "server_addr: %s\n", c.ServerAddr)
		fmt.Fprintf(out, "max_upload_mb: %d\n", c.MaxUploadMB)
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", c.LogFormat)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return err
		}
		if err := applySetting(c, key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		cfg = c
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

// applySetting validates and assigns one key.
func applySetting(c *cfgpkg.Global, key, val string) error {
	switch key {
	case "skin_type":
		s, err := med.LookupSkin(val)
		if err != nil {
			return err
		}
		c.SkinType = s.Label
	case "skin_types":
		skins, err := med.LookupSkins(strings.Split(val, ","))
		if err != nil {
			return err
		}
		c.SkinTypes = c.SkinTypes[:0]
		for _, s := range skins {
			c.SkinTypes = append(c.SkinTypes, s.Label)
		}
	case "uv_mode":
		m, err := med.ParseMode(val)
		if err != nil {
			return err
		}
		c.UVMode = string(m)
	case "fixed_threshold":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("invalid positive number for fixed_threshold: %v", val)
		}
		c.FixedThreshold = f
	case "first_interval":
		p, err := med.ParseFirstInterval(val)
		if err != nil {
			return err
		}
		c.FirstInterval = string(p)
	case "uv_skip_rows", "wind_skip_rows":
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid int for %s: %v", key, val)
		}
		if key == "uv_skip_rows" {
			c.UVSkipRows = i
		} else {
			c.WindSkipRows = i
		}
	case "delimiter", "decimal", "thousands":
		if val != "" {
			if _, ok := table.ParseSeparator(val); !ok {
				return fmt.Errorf("invalid %s: %q (use ',', ';', '.', 'tab' or 'space')", key, val)
			}
		}
		switch key {
		case "delimiter":
			c.Delimiter = val
		case "decimal":
			c.Decimal = val
		default:
			c.Thousands = val
		}
	case "day_first":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for day_first: %v", val)
		}
		c.DayFirst = b
	case "column_policy":
		p, err := columns.ParsePolicy(val)
		if err != nil {
			return err
		}
		c.ColumnPolicy = string(p)
	case "max_rows", "speed_bins", "chart_width", "chart_height", "max_upload_mb":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for %s: %v", key, val)
		}
		switch key {
		case "max_rows":
			c.MaxRows = i
		case "speed_bins":
			c.SpeedBins = i
		case "chart_width":
			c.ChartWidth = i
		case "chart_height":
			c.ChartHeight = i
		default:
			c.MaxUploadMB = i
		}
	case "output_dir":
		c.OutputDir = val
	case "server_addr":
		c.ServerAddr = val
	case "log_level":
		switch strings.ToLower(val) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
		}
	case "log_format":
		switch strings.ToLower(val) {
		case "text", "json":
			c.LogFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_format: %s (use text or json)", val)
		}
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}
