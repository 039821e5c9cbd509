package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/kevinwood15/noshow/internal/aggregate"
	"github.com/kevinwood15/noshow/internal/clean"
	cfgpkg "github.com/kevinwood15/noshow/internal/config"
	"github.com/kevinwood15/noshow/internal/dataset"
	"github.com/kevinwood15/noshow/internal/profile"
)

// resolveInput picks the file argument if given, else the configured input path.
func resolveInput(args []string, c *cfgpkg.Global) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return c.InputPath
}

// loadAndClean reads the CSV, checks its header against the schema and cleans it.
func loadAndClean(c *cfgpkg.Global, path string) (*clean.Result, error) {
	delim, err := c.DelimiterRune()
	if err != nil {
		return nil, err
	}
	raw, err := dataset.Load(path, dataset.LoadOptions{Delimiter: delim})
	if err != nil {
		return nil, err
	}
	logger.Info().Str("file", path).Int("rows", raw.Rows()).Int("cols", raw.Cols()).Msg("loaded")
	if err := dataset.ValidateHeader(raw, c.Schema.Required); err != nil {
		return nil, fmt.Errorf("validate header: %w", err)
	}
	res, err := clean.New(c.Schema, logger).Clean(raw)
	if err != nil {
		return nil, fmt.Errorf("clean: %w", err)
	}
	logger.Debug().Strs("columns", res.Table.Names()).Msg("cleaned")
	return res, nil
}

func profileOptions(c *cfgpkg.Global, res *clean.Result) profile.Options {
	opt := profile.DefaultOptions()
	opt.SampleRows = c.SampleRows
	opt.PatientColumn = c.Schema.Roles.Patient
	opt.Dates = res.Dates
	opt.RankTop = c.RankTop
	opt.RankOptions = profile.RankOptions{Separator: c.RankSeparator}
	for _, col := range []string{c.Schema.Roles.Neighbourhood, c.Schema.Roles.AppointmentDay} {
		if col != "" {
			opt.Rank = append(opt.Rank, col)
		}
	}
	return opt
}

func aggregateColumns(s cfgpkg.Schema) aggregate.Columns {
	return aggregate.Columns{
		Outcome:     s.Roles.Outcome,
		Gender:      s.Roles.Gender,
		Scholarship: s.Roles.Scholarship,
		Age:         s.Roles.Age,
	}
}

func printSummary(w io.Writer, sum *aggregate.Summary) {
	color.New(color.FgCyan, color.Bold).Fprintln(w, "\n=== No-show summary ===")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Group", "Appointments", "No-shows", "No-show %"})
	table.SetAutoFormatHeaders(false)
	rows := []aggregate.Stat{sum.Overall}
	rows = append(rows, sum.Gender...)
	rows = append(rows, sum.Scholarship...)
	rows = append(rows, sum.GenderScholarship...)
	for _, st := range rows {
		table.Append([]string{st.Label, strconv.Itoa(st.Count), strconv.Itoa(st.Positives), percent(st)})
	}
	table.Render()
	fmt.Fprintln(w)
	for _, line := range sum.Lines() {
		fmt.Fprintln(w, line)
	}
}

func percent(st aggregate.Stat) string {
	if !st.Defined() {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", st.Percent())
}
