package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const dirName = ".noshow"

// Global configuration structure.
type Global struct {
	InputPath     string  `mapstructure:"input_path" yaml:"input_path"`
	OutputDir     string  `mapstructure:"output_dir" yaml:"output_dir"`
	ChartFormat   string  `mapstructure:"chart_format" yaml:"chart_format"`
	ChartWidthCm  float64 `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeightCm float64 `mapstructure:"chart_height" yaml:"chart_height"`
	HistBins      int     `mapstructure:"hist_bins" yaml:"hist_bins"`
	Delimiter     string  `mapstructure:"delimiter" yaml:"delimiter"`
	SampleRows    int     `mapstructure:"sample_rows" yaml:"sample_rows"`
	RankSeparator string  `mapstructure:"rank_separator" yaml:"rank_separator"`
	RankTop       int     `mapstructure:"rank_top" yaml:"rank_top"`

	// When set, Female No Scholarship is computed from the male no-scholarship
	// subset, matching the first published figures. Off by default.
	ReproduceFemaleNoSchDefect bool `mapstructure:"reproduce_female_nosch_defect" yaml:"reproduce_female_nosch_defect"`

	Schema Schema `mapstructure:"schema" yaml:"schema"`
}

// Default returns the configuration used when no file or environment overrides exist.
func Default() *Global {
	return &Global{
		InputPath:     "noshowappointments-kagglev2-may-2016.csv",
		OutputDir:     "noshow-charts",
		ChartFormat:   "png",
		ChartWidthCm:  20,
		ChartHeightCm: 14,
		HistBins:      10,
		Delimiter:     ",",
		SampleRows:    5,
		RankSeparator: "|",
		RankTop:       10,
		Schema:        DefaultSchema(),
	}
}

// DelimiterRune converts the configured delimiter into a CSV comma rune.
func (c *Global) DelimiterRune() (rune, error) {
	switch strings.ToLower(c.Delimiter) {
	case "", ",":
		return ',', nil
	case ";":
		return ';', nil
	case "\t", "tab", `\t`:
		return '\t', nil
	case "|", "pipe":
		return '|', nil
	default:
		return 0, fmt.Errorf("unsupported delimiter: %q", c.Delimiter)
	}
}

// Validate reports every invalid setting at once.
func (c *Global) Validate() error {
	var errs []error
	switch c.ChartFormat {
	case "png", "svg", "pdf":
	default:
		errs = append(errs, fmt.Errorf("chart_format: %q (use png|svg|pdf)", c.ChartFormat))
	}
	if c.ChartWidthCm <= 0 || c.ChartHeightCm <= 0 {
		errs = append(errs, errors.New("chart_width and chart_height must be positive"))
	}
	if c.HistBins <= 0 {
		errs = append(errs, fmt.Errorf("hist_bins must be positive, got %d", c.HistBins))
	}
	if _, err := c.DelimiterRune(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Schema.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("schema: %w", err))
	}
	return errors.Join(errs...)
}

// Path returns cfgFile, or ~/.noshow/config.yaml when cfgFile is empty.
func Path(cfgFile string) (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName, "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.noshow/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path, err := Path(cfgFile)
	if err != nil {
		return err
	}
	if cfgFile == "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
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
// Precedence: flags (cfgFile) > env (NOSHOW_*, .env) > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("NOSHOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("input_path", d.InputPath)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("chart_format", d.ChartFormat)
	v.SetDefault("chart_width", d.ChartWidthCm)
	v.SetDefault("chart_height", d.ChartHeightCm)
	v.SetDefault("hist_bins", d.HistBins)
	v.SetDefault("delimiter", d.Delimiter)
	v.SetDefault("sample_rows", d.SampleRows)
	v.SetDefault("rank_separator", d.RankSeparator)
	v.SetDefault("rank_top", d.RankTop)
	v.SetDefault("reproduce_female_nosch_defect", false)
	v.SetDefault("schema", d.Schema.defaultsMap())

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, dirName))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		// a missing default file is fine; an explicit or malformed one is not
		var nf viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &nf) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &c, nil
}
