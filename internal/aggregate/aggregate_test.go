package aggregate

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/kevinwood15/noshow/internal/dataset"
)

var cols = Columns{Outcome: "no_show", Gender: "male", Scholarship: "scholarship", Age: "age"}

func table(t *testing.T, rows ...string) *dataset.Table {
	t.Helper()
	recs := [][]string{{"male", "scholarship", "age", "no_show"}}
	for _, r := range rows {
		recs = append(recs, strings.Split(r, ","))
	}
	tbl, err := dataset.FromRecords(recs)
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	return tbl
}

func TestByGenderScenario(t *testing.T) {
	tbl := table(t, "1,0,30,1", "1,0,40,0", "0,0,50,1", "0,0,60,1")
	got, err := New(cols, Options{}, zerolog.Nop()).ByGender(tbl)
	if err != nil {
		t.Fatalf("ByGender: %v", err)
	}
	male, female := got[0], got[1]
	if male.Label != "Male" || male.Mean != 0.5 || male.Count != 2 {
		t.Fatalf("male = %+v", male)
	}
	if female.Label != "Female" || female.Mean != 1.0 || female.Count != 2 {
		t.Fatalf("female = %+v", female)
	}
}

func TestNoScholarshipRecipients(t *testing.T) {
	tbl := table(t, "1,0,30,1", "0,0,40,0", "0,0,50,1")
	agg := New(cols, Options{}, zerolog.Nop())
	got, err := agg.ByScholarship(tbl)
	if err != nil {
		t.Fatalf("ByScholarship: %v", err)
	}
	if got[0].Defined() || got[0].Count != 0 || !math.IsNaN(got[0].Mean) {
		t.Fatalf("scholarship group should be undefined, got %+v", got[0])
	}
	rate, err := Rate(tbl, "scholarship")
	if err != nil {
		t.Fatalf("Rate: %v", err)
	}
	if rate.Mean != 0.0 {
		t.Fatalf("participation rate = %v, want 0", rate.Mean)
	}
	sum, err := agg.Summarize(tbl)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if lines := strings.Join(sum.Lines(), "\n"); !strings.Contains(lines, "n/a percent of scholarship recipients") {
		t.Fatalf("undefined mean not reported as n/a:\n%s", lines)
	}
}

func TestCrossGroupsPartitionTable(t *testing.T) {
	tbl := table(t,
		"1,1,10,1", "1,1,20,0", "0,1,30,1", "1,0,40,0",
		"1,0,50,1", "0,0,60,0", "0,0,70,1", "0,0,80,1",
	)
	got, err := New(cols, Options{}, zerolog.Nop()).ByGenderScholarship(tbl)
	if err != nil {
		t.Fatalf("ByGenderScholarship: %v", err)
	}
	wantLabels := []string{"Male Scholarship", "Female Scholarship", "Male No Scholarship", "Female No Scholarship"}
	wantCounts := []int{2, 1, 2, 3}
	total := 0
	for i, st := range got {
		if st.Label != wantLabels[i] || st.Count != wantCounts[i] {
			t.Fatalf("cell %d = %+v", i, st)
		}
		total += st.Rows
	}
	if total != tbl.Rows() {
		t.Fatalf("cells cover %d rows, table has %d", total, tbl.Rows())
	}
	if got[3].Positives != 2 {
		t.Fatalf("female no-scholarship positives = %d", got[3].Positives)
	}
}

func TestMeanTimesCountIsPositives(t *testing.T) {
	tbl := table(t,
		"1,1,10,1", "1,1,20,0", "0,1,30,1", "1,0,40,0", "1,0,50,1",
		"0,0,60,0", "0,0,70,1", "0,0,80,1", "1,0,5,0",
	)
	agg := New(cols, Options{}, zerolog.Nop())
	sum, err := agg.Summarize(tbl)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	all := append([]Stat{sum.Overall}, sum.Gender...)
	all = append(all, sum.Scholarship...)
	all = append(all, sum.GenderScholarship...)
	for _, st := range all {
		if !st.Defined() {
			continue
		}
		if got := math.Round(st.Mean * float64(st.Count)); int(got) != st.Positives {
			t.Errorf("%s: mean*count = %v, positives = %d", st.Label, got, st.Positives)
		}
	}
	if sum.Overall.Count != 9 || sum.Overall.Positives != 5 {
		t.Fatalf("overall = %+v", sum.Overall)
	}
	if math.Abs(sum.MaleShare.Mean-5.0/9.0) > 1e-12 {
		t.Fatalf("male share = %v", sum.MaleShare.Mean)
	}
}

func TestReuseMaleNoScholarship(t *testing.T) {
	tbl := table(t, "1,0,40,0", "1,0,50,0", "0,0,60,1", "0,0,70,1")
	fixed, err := New(cols, Options{}, zerolog.Nop()).ByGenderScholarship(tbl)
	if err != nil {
		t.Fatalf("ByGenderScholarship: %v", err)
	}
	if fixed[3].Mean != 1 {
		t.Fatalf("female no-scholarship = %+v", fixed[3])
	}
	agg := New(cols, Options{ReuseMaleNoScholarship: true}, zerolog.Nop())
	defect, err := agg.ByGenderScholarship(tbl)
	if err != nil {
		t.Fatalf("ByGenderScholarship: %v", err)
	}
	if defect[3].Label != "Female No Scholarship" || defect[3].Mean != defect[2].Mean || defect[3].Count != defect[2].Count {
		t.Fatalf("defect not reproduced: %+v vs %+v", defect[3], defect[2])
	}
	sum, err := agg.Summarize(tbl)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if !sum.DefectReproduced || !strings.Contains(strings.Join(sum.Lines(), "\n"), "repeats the Male No Scholarship") {
		t.Fatalf("defect not flagged in summary")
	}
}

func TestAgeByGenderOutcome(t *testing.T) {
	tbl := table(t, "1,0,30,1", "1,0,40,0", "0,0,50,1", "0,0,NaN,1", "0,1,20,0")
	got, err := New(cols, Options{}, zerolog.Nop()).AgeByGenderOutcome(tbl)
	if err != nil {
		t.Fatalf("AgeByGenderOutcome: %v", err)
	}
	if len(got) != 2 || got[0].Outcome != 0 || got[1].Outcome != 1 {
		t.Fatalf("facets = %+v", got)
	}
	if len(got[0].Male) != 1 || got[0].Male[0] != 40 || len(got[0].Female) != 1 || got[0].Female[0] != 20 {
		t.Fatalf("outcome 0 facet = %+v", got[0])
	}
	if len(got[1].Female) != 1 || got[1].Female[0] != 50 || len(got[1].Male) != 1 {
		t.Fatalf("outcome 1 facet = %+v", got[1])
	}
}

func TestOutcomeErrors(t *testing.T) {
	tbl := table(t, "1,0,30,2")
	if _, err := Rate(tbl, "no_show"); err == nil || !strings.Contains(err.Error(), "not 0 or 1") {
		t.Fatalf("expected non-binary error, got %v", err)
	}
	_, err := Outcome(tbl, "no_show", Group{Label: "x", Predicates: []dataset.Predicate{{Column: "gender", Value: 1}}})
	if !errors.Is(err, dataset.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
	empty, err := dataset.FromRecords([][]string{{"no_show"}, {"1"}})
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	st, err := Outcome(empty, "no_show", Group{Label: "none", Predicates: []dataset.Predicate{{Column: "no_show", Value: 5}}})
	if err != nil || st.Defined() || st.Rows != 0 {
		t.Fatalf("empty group = %+v, %v", st, err)
	}
}
