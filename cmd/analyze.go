package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kevinwood15/noshow/internal/aggregate"
	cfgpkg "github.com/kevinwood15/noshow/internal/config"
	"github.com/kevinwood15/noshow/internal/dataset"
	"github.com/kevinwood15/noshow/internal/profile"
	"github.com/kevinwood15/noshow/internal/render"
	"github.com/kevinwood15/noshow/internal/utils"
)

var (
	anaOutputDir       string
	anaFormat          string
	anaReport          string
	anaNoCharts        bool
	anaReproduceDefect bool
	anaOnUnknown       string
	anaDelimiter       string
	anaJSON            bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Run the full analysis: clean, profile, aggregate and chart",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		base, err := requireConfig()
		if err != nil {
			return err
		}
		c := *base
		f := cmd.Flags()
		if f.Changed("output-dir") {
			c.OutputDir = anaOutputDir
		}
		if f.Changed("format") {
			c.ChartFormat = anaFormat
		}
		if f.Changed("delimiter") {
			c.Delimiter = anaDelimiter
		}
		if f.Changed("reproduce-defect") {
			c.ReproduceFemaleNoSchDefect = anaReproduceDefect
		}
		if f.Changed("on-unknown") {
			c.Schema.OnUnknown = anaOnUnknown
		}
		if err := c.Validate(); err != nil {
			return err
		}

		path := resolveInput(args, &c)
		res, err := loadAndClean(&c, path)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, w := range res.Warnings {
			fmt.Fprintf(out, "⚠ %s\n", w)
		}

		rep, err := profile.Profile(res.Table, profileOptions(&c, res))
		if err != nil {
			return fmt.Errorf("profile: %w", err)
		}
		if anaReport != "" {
			if err := utils.SafeWriteFile(anaReport, []byte(rep.Markdown())); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Fprintf(out, "✓ Wrote profile to %s\n", anaReport)
		}

		agg := aggregate.New(aggregateColumns(c.Schema), aggregate.Options{
			ReuseMaleNoScholarship: c.ReproduceFemaleNoSchDefect,
		}, logger)
		sum, err := agg.Summarize(res.Table)
		if err != nil {
			return fmt.Errorf("aggregate: %w", err)
		}
		if anaJSON {
			b, err := utils.PrettyJSON(sum)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
		} else {
			printSummary(out, sum)
		}

		if anaNoCharts {
			return nil
		}
		files, err := renderCharts(&c, res.Table, sum)
		if err != nil {
			return fmt.Errorf("render: %w", err)
		}
		for _, file := range files {
			fmt.Fprintf(out, "✓ Wrote %s\n", file)
		}
		return nil
	},
}

func renderCharts(c *cfgpkg.Global, t *dataset.Table, sum *aggregate.Summary) ([]string, error) {
	r, err := render.New(render.Options{
		Dir:      c.OutputDir,
		Format:   c.ChartFormat,
		WidthCm:  c.ChartWidthCm,
		HeightCm: c.ChartHeightCm,
		Bins:     c.HistBins,
	}, logger)
	if err != nil {
		return nil, err
	}
	if _, err := r.HistogramMatrix(t, "histograms"); err != nil {
		if !errors.Is(err, render.ErrNoData) {
			return nil, err
		}
		logger.Warn().Msg("no numeric columns to plot")
	}
	groupings := []struct {
		name, subject, xlabel string
		stats                 []aggregate.Stat
	}{
		{"gender", "Gender", "Gender", sum.Gender},
		{"scholarship", "Scholarship Status", "Scholarship Status", sum.Scholarship},
		{"gender_scholarship", "Scholarship Status and Gender", "Gender and Scholarship Status", sum.GenderScholarship},
	}
	for _, g := range groupings {
		if _, err := r.PairedBars(g.name, g.subject, g.xlabel, g.stats); err != nil {
			return nil, err
		}
	}
	if _, err := r.BoxPlotAgeByGender(sum.Age, "age_by_gender"); err != nil {
		return nil, err
	}
	return r.Written(), nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputDir, "output-dir", "o", "", "directory for charts (overrides output_dir)")
	analyzeCmd.Flags().StringVar(&anaFormat, "format", "", "chart format: png|svg|pdf (overrides chart_format)")
	analyzeCmd.Flags().StringVar(&anaReport, "report", "", "optional path to write the profile (Markdown)")
	analyzeCmd.Flags().BoolVar(&anaNoCharts, "no-charts", false, "skip chart rendering")
	analyzeCmd.Flags().BoolVar(&anaReproduceDefect, "reproduce-defect", false, "compute Female No Scholarship from the male subset, as first published")
	analyzeCmd.Flags().StringVar(&anaOnUnknown, "on-unknown", "", "unknown recode values: error|missing (overrides schema.on_unknown)")
	analyzeCmd.Flags().StringVar(&anaDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | '|'")
	analyzeCmd.Flags().BoolVar(&anaJSON, "json", false, "print the summary as JSON")
}
