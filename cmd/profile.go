package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kevinwood15/noshow/internal/profile"
)

var (
	profMarkdown   bool
	profSampleRows int
)

var profileCmd = &cobra.Command{
	Use:   "profile [file]",
	Short: "Load and clean the dataset, then report its shape, types and quality",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		res, err := loadAndClean(c, resolveInput(args, c))
		if err != nil {
			return err
		}
		opt := profileOptions(c, res)
		if cmd.Flags().Changed("sample-rows") {
			opt.SampleRows = profSampleRows
		}
		rep, err := profile.Profile(res.Table, opt)
		if err != nil {
			return err
		}
		rep.Warnings = append(res.Warnings, rep.Warnings...)

		out := cmd.OutOrStdout()
		if profMarkdown {
			fmt.Fprintln(out, rep.Markdown())
			return nil
		}
		color.New(color.FgCyan, color.Bold).Fprintf(out, "\n=== %s ===\n", rep.Name)
		fmt.Fprintf(out, "Rows: %d  Columns: %d  Duplicate rows: %d", rep.Rows, len(rep.Cols), rep.Duplicates)
		if rep.Patients > 0 {
			fmt.Fprintf(out, "  Distinct patients: %d", rep.Patients)
		}
		fmt.Fprintln(out)
		rep.WriteTable(out)
		for _, d := range rep.Dates {
			if d.Parsed > 0 {
				fmt.Fprintf(out, "%s: %s to %s (%d distinct days)\n",
					d.Name, d.Min.Format("2006-01-02"), d.Max.Format("2006-01-02"), d.Days)
			}
		}
		for _, w := range rep.Warnings {
			fmt.Fprintf(out, "⚠ %s\n", w)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.Flags().BoolVar(&profMarkdown, "markdown", false, "print the bracketed Markdown report instead of a table")
	profileCmd.Flags().IntVar(&profSampleRows, "sample-rows", 5, "number of sample rows in the Markdown report")
}
