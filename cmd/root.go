package cmd

import (
	"fmt"
	"log/slog"
	"os"

	cfgpkg "github.com/KaramelBytes/uvmed-cli/internal/config"
	"github.com/KaramelBytes/uvmed-cli/internal/observability"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile      string
	debug        bool
	flagLogLevel string
	flagLogFmt   string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "uvmed",
	Short: "uvmed: convert UV irradiance to MED and plot wind roses",
	Long: `uvmed converts erythemal UV irradiance exports (W/m²) into Minimal Erythemal
Dose units for the six skin phototypes, and aggregates wind speed/direction
series into an 8-sector wind rose. Results are written as spreadsheets,
delimited text, Parquet or PNG charts.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.uvmed/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFmt, "log-format", "", "log format: text|json (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("log-level") && flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if f.Changed("log-format") && flagLogFmt != "" {
		cfg.LogFormat = flagLogFmt
	}
	if debug {
		cfg.LogLevel = "debug"
	}
}

// currentConfig returns the loaded configuration, loading it on demand.
func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		loadConfig()
	}
	return cfg
}

// newLogger builds the process logger on stderr from the effective config.
func newLogger() *slog.Logger {
	c := currentConfig()
	return observability.NewLogger(os.Stderr, c.LogLevel, c.LogFormat)
}
