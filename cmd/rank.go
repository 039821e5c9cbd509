package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kevinwood15/noshow/internal/profile"
)

var (
	rankSep  string
	rankHead int
	rankTail int
	rankTie  string
)

var rankCmd = &cobra.Command{
	Use:   "rank <column> [file]",
	Short: "Rank the values of a cleaned column by frequency",
	Long: `Rank splits each value of the column on the separator, counts the tokens and lists them
from most to least frequent. Column names are the cleaned (lower-case) names, e.g. neighbourhood.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		tie, err := profile.ParseTie(rankTie)
		if err != nil {
			return err
		}
		column := args[0]
		res, err := loadAndClean(c, resolveInput(args[1:], c))
		if err != nil {
			return err
		}
		sep := c.RankSeparator
		if cmd.Flags().Changed("sep") {
			sep = rankSep
		}
		freqs, err := profile.Rank(res.Table, column, profile.RankOptions{Separator: sep, Tie: tie})
		if err != nil {
			return err
		}
		head := c.RankTop
		if cmd.Flags().Changed("head") {
			head = rankHead
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ %d distinct values in %s\n", len(freqs), column)
		if head != 0 {
			profile.WriteFrequencies(out, column, profile.Head(freqs, head))
		}
		if rankTail > 0 {
			fmt.Fprintf(out, "Least frequent %d:\n", rankTail)
			profile.WriteFrequencies(out, column, profile.Tail(freqs, rankTail))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)
	rankCmd.Flags().StringVar(&rankSep, "sep", "|", "token separator; empty counts whole values (overrides rank_separator)")
	rankCmd.Flags().IntVar(&rankHead, "head", 10, "show the N most frequent values; -1 for all, 0 for none (overrides rank_top)")
	rankCmd.Flags().IntVar(&rankTail, "tail", 0, "also show the N least frequent values")
	rankCmd.Flags().StringVar(&rankTie, "tie", "first-seen", "tie order: first-seen|lexical")
}
