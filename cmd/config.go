package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	cfgpkg "github.com/kevinwood15/noshow/internal/config"
)

var cfgInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set noshow configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "input_path: %s\n", cfg.InputPath)
		fmt.Fprintf(out, "output_dir: %s\n", cfg.OutputDir)
		fmt.Fprintf(out, "chart_format: %s\n", cfg.ChartFormat)
		fmt.Fprintf(out, "chart_width: %.1f\n", cfg.ChartWidthCm)
		fmt.Fprintf(out, "chart_height: %.1f\n", cfg.ChartHeightCm)
		fmt.Fprintf(out, "hist_bins: %d\n", cfg.HistBins)
		fmt.Fprintf(out, "delimiter: %q\n", cfg.Delimiter)
		fmt.Fprintf(out, "sample_rows: %d\n", cfg.SampleRows)
		fmt.Fprintf(out, "rank_separator: %q\n", cfg.RankSeparator)
		fmt.Fprintf(out, "rank_top: %d\n", cfg.RankTop)
		fmt.Fprintf(out, "reproduce_female_nosch_defect: %t\n", cfg.ReproduceFemaleNoSchDefect)
		b, err := yaml.Marshal(map[string]cfgpkg.Schema{"schema": cfg.Schema})
		if err != nil {
			return fmt.Errorf("marshal schema: %w", err)
		}
		fmt.Fprint(out, string(b))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		next := *cfg
		switch key {
		case "input_path":
			next.InputPath = val
		case "output_dir":
			next.OutputDir = val
		case "chart_format":
			next.ChartFormat = strings.ToLower(val)
		case "chart_width", "chart_height":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for %s: %w", key, err)
			}
			if key == "chart_width" {
				next.ChartWidthCm = f
			} else {
				next.ChartHeightCm = f
			}
		case "hist_bins", "sample_rows", "rank_top":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for %s: %w", key, err)
			}
			switch key {
			case "hist_bins":
				next.HistBins = i
			case "sample_rows":
				next.SampleRows = i
			default:
				next.RankTop = i
			}
		case "delimiter":
			next.Delimiter = val
		case "rank_separator":
			next.RankSeparator = val
		case "reproduce_female_nosch_defect":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for %s: %w", key, err)
			}
			next.ReproduceFemaleNoSchDefect = b
		case "schema.on_unknown":
			next.Schema.OnUnknown = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := next.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(&next, cfgFile); err != nil {
			return err
		}
		cfg = &next
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration (including the schema) to disk",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := cfgpkg.Path(cfgFile)
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil && !cfgInitForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := cfgpkg.Save(cfgpkg.Default(), cfgFile); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().BoolVar(&cfgInitForce, "force", false, "overwrite an existing config file")
}
