package aggregate

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/kevinwood15/noshow/internal/dataset"
)

// Stat is the outcome mean and count over one group of rows.
type Stat struct {
	Label     string
	Rows      int // rows matched by the group
	Count     int // rows with a non-missing outcome
	Positives int // rows with outcome == 1
	// Mean is Positives/Count, NaN when Count is zero.
	Mean float64
}

// Defined reports whether the mean is a number.
func (s Stat) Defined() bool { return !math.IsNaN(s.Mean) }

// Percent is the mean scaled to 0..100.
func (s Stat) Percent() float64 { return s.Mean * 100 }

// Group is a labelled conjunction of equality predicates.
type Group struct {
	Label      string
	Predicates []dataset.Predicate
}

// Outcome filters t to g and averages the binary outcome column over the rows
// that remain. An empty group yields a NaN mean, not an error.
func Outcome(t *dataset.Table, outcome string, g Group) (Stat, error) {
	sub, err := t.Filter(g.Predicates...)
	if err != nil {
		return Stat{}, fmt.Errorf("group %q: %w", g.Label, err)
	}
	st, err := binaryMean(sub, outcome)
	if err != nil {
		return Stat{}, fmt.Errorf("group %q: %w", g.Label, err)
	}
	st.Label = g.Label
	return st, nil
}

// Rate is the mean of a binary column over the whole table, such as the share
// of male appointments or the scholarship participation rate.
func Rate(t *dataset.Table, column string) (Stat, error) {
	return Outcome(t, column, Group{Label: column})
}

func binaryMean(t *dataset.Table, column string) (Stat, error) {
	s, err := t.Column(column)
	if err != nil {
		return Stat{}, err
	}
	st := Stat{Rows: s.Len()}
	for i := 0; i < s.Len(); i++ {
		e := s.Elem(i)
		if e.IsNA() {
			continue
		}
		switch v := e.Float(); v {
		case 0:
		case 1:
			st.Positives++
		default:
			return Stat{}, fmt.Errorf("column %s: row %d: value %v is not 0 or 1", column, i+1, v)
		}
		st.Count++
	}
	st.Mean = math.NaN()
	if st.Count > 0 {
		st.Mean = float64(st.Positives) / float64(st.Count)
	}
	return st, nil
}

// Columns names the cleaned columns the Aggregator reads.
type Columns struct {
	Outcome     string
	Gender      string // 1 = male
	Scholarship string
	Age         string
}

// Options tunes the Aggregator.
type Options struct {
	// ReuseMaleNoScholarship computes the female no-scholarship cell from the
	// male no-scholarship rows, reproducing a known defect of the first
	// published analysis so its numbers can be compared.
	ReuseMaleNoScholarship bool
}

// Aggregator computes the grouped outcome statistics of the analysis.
type Aggregator struct {
	cols Columns
	opt  Options
	log  zerolog.Logger
}

// New returns an Aggregator over the given columns.
func New(cols Columns, opt Options, log zerolog.Logger) *Aggregator {
	return &Aggregator{cols: cols, opt: opt, log: log}
}

func (a *Aggregator) eq(col string, v int) dataset.Predicate {
	return dataset.Predicate{Column: col, Value: v}
}

func (a *Aggregator) stats(t *dataset.Table, groups []Group) ([]Stat, error) {
	out := make([]Stat, 0, len(groups))
	for _, g := range groups {
		st, err := Outcome(t, a.cols.Outcome, g)
		if err != nil {
			return nil, err
		}
		a.log.Debug().Str("group", g.Label).Int("count", st.Count).Float64("mean", st.Mean).Msg("aggregate")
		out = append(out, st)
	}
	return out, nil
}

// ByGender returns [Male, Female].
func (a *Aggregator) ByGender(t *dataset.Table) ([]Stat, error) {
	return a.stats(t, []Group{
		{Label: "Male", Predicates: []dataset.Predicate{a.eq(a.cols.Gender, 1)}},
		{Label: "Female", Predicates: []dataset.Predicate{a.eq(a.cols.Gender, 0)}},
	})
}

// ByScholarship returns [Scholarship, No Scholarship].
func (a *Aggregator) ByScholarship(t *dataset.Table) ([]Stat, error) {
	return a.stats(t, []Group{
		{Label: "Scholarship", Predicates: []dataset.Predicate{a.eq(a.cols.Scholarship, 1)}},
		{Label: "No Scholarship", Predicates: []dataset.Predicate{a.eq(a.cols.Scholarship, 0)}},
	})
}

// CrossGroups are the four disjoint gender by scholarship groups, in report order.
func (a *Aggregator) CrossGroups() []Group {
	cell := func(label string, male, sch int) Group {
		return Group{Label: label, Predicates: []dataset.Predicate{
			a.eq(a.cols.Scholarship, sch), a.eq(a.cols.Gender, male),
		}}
	}
	return []Group{
		cell("Male Scholarship", 1, 1),
		cell("Female Scholarship", 0, 1),
		cell("Male No Scholarship", 1, 0),
		cell("Female No Scholarship", 0, 0),
	}
}

// ByGenderScholarship returns the four cross groups. With
// Options.ReuseMaleNoScholarship the last cell repeats the male no-scholarship
// numbers under the female label.
func (a *Aggregator) ByGenderScholarship(t *dataset.Table) ([]Stat, error) {
	groups := a.CrossGroups()
	if a.opt.ReuseMaleNoScholarship {
		a.log.Warn().Msg("female no-scholarship cell reuses the male no-scholarship subset")
		groups[3].Predicates = groups[2].Predicates
	}
	return a.stats(t, groups)
}

// AgeFacet holds the ages of one outcome value, split by gender.
type AgeFacet struct {
	Outcome int
	Female  []float64
	Male    []float64
}

// AgeByGenderOutcome collects ages by outcome (0, then 1) and gender. Missing
// ages are dropped.
func (a *Aggregator) AgeByGenderOutcome(t *dataset.Table) ([]AgeFacet, error) {
	var out []AgeFacet
	for _, o := range []int{0, 1} {
		f := AgeFacet{Outcome: o}
		for _, male := range []int{0, 1} {
			sub, err := t.Filter(a.eq(a.cols.Outcome, o), a.eq(a.cols.Gender, male))
			if err != nil {
				return nil, fmt.Errorf("age by gender: %w", err)
			}
			s, err := sub.Column(a.cols.Age)
			if err != nil {
				return nil, fmt.Errorf("age by gender: %w", err)
			}
			ages := make([]float64, 0, s.Len())
			for _, v := range s.Float() {
				if !math.IsNaN(v) {
					ages = append(ages, v)
				}
			}
			if male == 1 {
				f.Male = ages
			} else {
				f.Female = ages
			}
		}
		out = append(out, f)
	}
	return out, nil
}
