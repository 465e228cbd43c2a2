package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Conversion
	SkinType       string   `mapstructure:"skin_type" yaml:"skin_type"`
	SkinTypes      []string `mapstructure:"skin_types" yaml:"skin_types"`
	UVMode         string   `mapstructure:"uv_mode" yaml:"uv_mode"`
	FixedThreshold float64  `mapstructure:"fixed_threshold" yaml:"fixed_threshold"`
	FirstInterval  string   `mapstructure:"first_interval" yaml:"first_interval"`

	// Loading and parsing
	UVSkipRows   int    `mapstructure:"uv_skip_rows" yaml:"uv_skip_rows"`
	WindSkipRows int    `mapstructure:"wind_skip_rows" yaml:"wind_skip_rows"`
	Delimiter    string `mapstructure:"delimiter" yaml:"delimiter"`
	Decimal      string `mapstructure:"decimal" yaml:"decimal"`
	Thousands    string `mapstructure:"thousands" yaml:"thousands"`
	DayFirst     bool   `mapstructure:"day_first" yaml:"day_first"`
	ColumnPolicy string `mapstructure:"column_policy" yaml:"column_policy"`
	MaxRows      int    `mapstructure:"max_rows" yaml:"max_rows"`

	// Wind rose
	SpeedBins int `mapstructure:"speed_bins" yaml:"speed_bins"`

	// Output
	OutputDir   string `mapstructure:"output_dir" yaml:"output_dir"`
	ChartWidth  int    `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight int    `mapstructure:"chart_height" yaml:"chart_height"`

	// Server
	ServerAddr  string `mapstructure:"server_addr" yaml:"server_addr"`
	MaxUploadMB int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Global {
	return &Global{
		SkinType:       "Tipo II",
		SkinTypes:      []string{},
		UVMode:         "rate",
		FixedThreshold: 210,
		FirstInterval:  "backfill",
		UVSkipRows:     7,
		WindSkipRows:   -1,
		DayFirst:       true,
		ColumnPolicy:   "first",
		MaxRows:        0,
		SpeedBins:      6,
		OutputDir:      ".",
		ChartWidth:     1000,
		ChartHeight:    800,
		ServerAddr:     ":8080",
		MaxUploadMB:    32,
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// Dir returns ~/.uvmed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".uvmed"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.uvmed/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("UVMED")
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("skin_type", d.SkinType)
	v.SetDefault("skin_types", d.SkinTypes)
	v.SetDefault("uv_mode", d.UVMode)
	v.SetDefault("fixed_threshold", d.FixedThreshold)
	v.SetDefault("first_interval", d.FirstInterval)
	v.SetDefault("uv_skip_rows", d.UVSkipRows)
	v.SetDefault("wind_skip_rows", d.WindSkipRows)
	v.SetDefault("delimiter", d.Delimiter)
	v.SetDefault("decimal", d.Decimal)
	v.SetDefault("thousands", d.Thousands)
	v.SetDefault("day_first", d.DayFirst)
	v.SetDefault("column_policy", d.ColumnPolicy)
	v.SetDefault("max_rows", d.MaxRows)
	v.SetDefault("speed_bins", d.SpeedBins)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("chart_width", d.ChartWidth)
	v.SetDefault("chart_height", d.ChartHeight)
	v.SetDefault("server_addr", d.ServerAddr)
	v.SetDefault("max_upload_mb", d.MaxUploadMB)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
