package profile

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kevinwood15/noshow/internal/clean"
	"github.com/kevinwood15/noshow/internal/dataset"
)

// Options controls what the profile includes.
type Options struct {
	// Name labels the report; defaults to the table's source file.
	Name string
	// SampleRows determines how many example rows to include in the report.
	SampleRows int
	// TopValues caps the categorical values listed per column.
	TopValues int
	// PatientColumn, when set, is counted for distinct patients.
	PatientColumn string
	// Dates are the parsed date ranges from cleaning, reported as-is.
	Dates []clean.DateColumn
	// Rank lists columns to include as frequency rankings.
	Rank        []string
	RankTop     int
	RankOptions RankOptions
}

// DefaultOptions returns reasonable defaults for profiling.
func DefaultOptions() Options {
	return Options{SampleRows: 5, TopValues: 8, RankTop: 10}
}

// Report is a markdown-friendly profile of the appointments table.
type Report struct {
	Name       string
	Rows       int
	Cols       []ColumnSummary
	Duplicates int
	Patients   int
	Samples    [][]string
	Dates      []clean.DateColumn
	Rankings   []Ranking
	Warnings   []string
}

// ColumnSummary captures inferred type and statistics per column.
type ColumnSummary struct {
	Name    string
	Kind    string // numeric|bool|datetime|categorical|text
	Type    series.Type
	NonNull int
	Missing int
	Unique  int
	// Numeric stats
	Min  float64
	Max  float64
	Mean float64
	Std  float64
	// Categorical top values
	TopValues    []Frequency
	ExampleTexts []string
}

// Ranking is the head and tail of one column's frequency ranking.
type Ranking struct {
	Column   string
	Distinct int
	Top      []Frequency
	Bottom   []Frequency
}

// Profile summarizes every column of t, counts duplicate rows and collects the
// requested rankings. It only reads the table.
func Profile(t *dataset.Table, opt Options) (*Report, error) {
	name := opt.Name
	if name == "" {
		name = t.Source()
	}
	sampleRows := opt.SampleRows
	if sampleRows <= 0 {
		sampleRows = 5
	}
	topN := opt.TopValues
	if topN <= 0 {
		topN = 8
	}
	rep := &Report{Name: name, Rows: t.Rows(), Dates: opt.Dates}

	names := t.Names()
	types := t.Types()
	rep.Cols = make([]ColumnSummary, 0, len(names))
	for i, col := range names {
		s, err := t.Column(col)
		if err != nil {
			return nil, err
		}
		cs := summarize(s, types[i], topN)
		if cs.Missing > 0 {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s: %d missing value(s)", col, cs.Missing))
		}
		if col == opt.PatientColumn {
			rep.Patients = cs.Unique
		}
		rep.Cols = append(rep.Cols, cs)
	}

	records := t.Records()
	seen := make(map[string]struct{}, len(records))
	for i, rec := range records {
		if i == 0 {
			continue
		}
		key := strings.Join(rec, "\x1f")
		if _, ok := seen[key]; ok {
			rep.Duplicates++
			continue
		}
		seen[key] = struct{}{}
		if len(rep.Samples) < sampleRows {
			rep.Samples = append(rep.Samples, rec)
		}
	}
	if rep.Duplicates > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%d duplicate row(s)", rep.Duplicates))
	}

	for _, col := range opt.Rank {
		freqs, err := Rank(t, col, opt.RankOptions)
		if err != nil {
			return nil, fmt.Errorf("rank %s: %w", col, err)
		}
		rep.Rankings = append(rep.Rankings, Ranking{
			Column:   col,
			Distinct: len(freqs),
			Top:      Head(freqs, opt.RankTop),
			Bottom:   Tail(freqs, opt.RankTop),
		})
	}
	return rep, nil
}

func summarize(s series.Series, typ series.Type, topN int) ColumnSummary {
	cs := ColumnSummary{Name: s.Name, Type: typ}
	distinct := map[string]struct{}{}
	var vals []string
	for i := 0; i < s.Len(); i++ {
		e := s.Elem(i)
		if e.IsNA() {
			cs.Missing++
			continue
		}
		cs.NonNull++
		v := e.String()
		distinct[v] = struct{}{}
		vals = append(vals, v)
	}
	cs.Unique = len(distinct)

	switch typ {
	case series.Int, series.Float:
		cs.Kind = "numeric"
		xs := make([]float64, 0, cs.NonNull)
		for _, f := range s.Float() {
			if !math.IsNaN(f) {
				xs = append(xs, f)
			}
		}
		if len(xs) > 0 {
			cs.Min = floats.Min(xs)
			cs.Max = floats.Max(xs)
			cs.Mean = stat.Mean(xs, nil)
		}
		if len(xs) > 1 {
			cs.Std = stat.StdDev(xs, nil)
		}
	case series.Bool:
		cs.Kind = "bool"
		cs.TopValues = Head(RankValues(vals, RankOptions{Tie: TieLexical}), topN)
	default:
		switch {
		case looksLikeDates(vals):
			cs.Kind = "datetime"
		case allShort(vals, 64):
			cs.Kind = "categorical"
			cs.TopValues = Head(RankValues(vals, RankOptions{Tie: TieLexical}), topN)
		default:
			cs.Kind = "text"
			for _, v := range vals {
				if len(cs.ExampleTexts) == 3 {
					break
				}
				cs.ExampleTexts = append(cs.ExampleTexts, v)
			}
		}
	}
	return cs
}

// looksLikeDates checks the leading values only.
func looksLikeDates(vals []string) bool {
	if len(vals) == 0 {
		return false
	}
	for i, v := range vals {
		if i == 20 {
			break
		}
		if _, ok := clean.ParseTime(v); !ok {
			return false
		}
	}
	return true
}

func allShort(vals []string, n int) bool {
	for _, v := range vals {
		if len(v) > n {
			return false
		}
	}
	return true
}
