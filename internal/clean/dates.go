package clean

import (
	"time"

	"github.com/kevinwood15/noshow/internal/dataset"
)

// DateColumn summarizes a parsed date column. The table itself keeps the
// source strings.
type DateColumn struct {
	Name    string
	Parsed  int
	Missing int
	Min     time.Time
	Max     time.Time
	Days    int // distinct calendar days
}

var dateLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
}

// ParseTime tries the known date layouts in order.
func ParseTime(s string) (time.Time, bool) {
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDates parses each named column and reports its range. Missing values are
// counted, not rejected; any other unparseable value is a *DateError.
func ParseDates(t *dataset.Table, cols []string) ([]DateColumn, error) {
	out := make([]DateColumn, 0, len(cols))
	for _, name := range cols {
		s, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		dc := DateColumn{Name: name}
		days := map[string]struct{}{}
		for i := 0; i < s.Len(); i++ {
			e := s.Elem(i)
			if e.IsNA() {
				dc.Missing++
				continue
			}
			ts, ok := ParseTime(e.String())
			if !ok {
				return nil, &DateError{Column: name, Row: i + 1, Value: e.String()}
			}
			if dc.Parsed == 0 || ts.Before(dc.Min) {
				dc.Min = ts
			}
			if dc.Parsed == 0 || ts.After(dc.Max) {
				dc.Max = ts
			}
			dc.Parsed++
			days[ts.Format("2006-01-02")] = struct{}{}
		}
		dc.Days = len(days)
		out = append(out, dc)
	}
	return out, nil
}
