package aggregate

import (
	"encoding/json"
	"fmt"

	"github.com/kevinwood15/noshow/internal/dataset"
)

// Summary bundles every statistic the analysis reports.
type Summary struct {
	Rows              int        `json:"rows"`
	Overall           Stat       `json:"overall"`
	MaleShare         Stat       `json:"male_share"`
	ScholarshipRate   Stat       `json:"scholarship_rate"`
	Gender            []Stat     `json:"gender"`             // Male, Female
	Scholarship       []Stat     `json:"scholarship"`        // Scholarship, No Scholarship
	GenderScholarship []Stat     `json:"gender_scholarship"` // see CrossGroups
	Age               []AgeFacet `json:"-"`
	DefectReproduced  bool       `json:"defect_reproduced"`
}

// Summarize runs every grouping over t.
func (a *Aggregator) Summarize(t *dataset.Table) (*Summary, error) {
	s := &Summary{Rows: t.Rows(), DefectReproduced: a.opt.ReuseMaleNoScholarship}
	var err error
	if s.Overall, err = Outcome(t, a.cols.Outcome, Group{Label: "All appointments"}); err != nil {
		return nil, err
	}
	if s.MaleShare, err = Rate(t, a.cols.Gender); err != nil {
		return nil, err
	}
	if s.ScholarshipRate, err = Rate(t, a.cols.Scholarship); err != nil {
		return nil, err
	}
	if s.Gender, err = a.ByGender(t); err != nil {
		return nil, err
	}
	if s.Scholarship, err = a.ByScholarship(t); err != nil {
		return nil, err
	}
	if s.GenderScholarship, err = a.ByGenderScholarship(t); err != nil {
		return nil, err
	}
	if s.Age, err = a.AgeByGenderOutcome(t); err != nil {
		return nil, err
	}
	return s, nil
}

// MarshalJSON writes an undefined mean as null.
func (s Stat) MarshalJSON() ([]byte, error) {
	var mean *float64
	if s.Defined() {
		m := s.Mean
		mean = &m
	}
	return json.Marshal(struct {
		Label     string   `json:"label"`
		Rows      int      `json:"rows"`
		Count     int      `json:"count"`
		Positives int      `json:"positives"`
		Mean      *float64 `json:"mean"`
	}{s.Label, s.Rows, s.Count, s.Positives, mean})
}

func pct(st Stat) string {
	if !st.Defined() {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", st.Percent())
}

// Lines renders the summary as the sentences printed after an analysis run.
func (s *Summary) Lines() []string {
	lines := []string{
		fmt.Sprintf("%s percent of %d appointments result in a no-show.", pct(s.Overall), s.Overall.Count),
	}
	if len(s.Gender) == 2 {
		lines = append(lines, fmt.Sprintf(
			"%s percent of males do not show up for their appointments while %s percent of females do not show.",
			pct(s.Gender[0]), pct(s.Gender[1])))
	}
	lines = append(lines, fmt.Sprintf("%s percent of all appointments are for male patients.", pct(s.MaleShare)))
	if len(s.Scholarship) == 2 {
		lines = append(lines, fmt.Sprintf(
			"%s percent of scholarship recipients do not show up for their appointments while %s percent of non-scholarship patients do not show.",
			pct(s.Scholarship[0]), pct(s.Scholarship[1])))
	}
	lines = append(lines, fmt.Sprintf("%s percent of the total patient population are on scholarship.", pct(s.ScholarshipRate)))
	for _, st := range s.GenderScholarship {
		lines = append(lines, fmt.Sprintf("%s: %s percent no-show over %d appointments.", st.Label, pct(st), st.Count))
	}
	if s.DefectReproduced {
		lines = append(lines, "Note: Female No Scholarship repeats the Male No Scholarship subset (reproduce_female_nosch_defect).")
	}
	return lines
}
