package clean

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/rs/zerolog"

	"github.com/kevinwood15/noshow/internal/config"
	"github.com/kevinwood15/noshow/internal/dataset"
)

// Result is the cleaned table plus what the cleaning learned about it.
type Result struct {
	Table    *dataset.Table
	Dates    []DateColumn
	Warnings []string
}

// Cleaner applies a declarative schema to a raw appointments table.
type Cleaner struct {
	schema config.Schema
	log    zerolog.Logger
}

// New returns a Cleaner for the given schema.
func New(s config.Schema, log zerolog.Logger) *Cleaner {
	return &Cleaner{schema: s, log: log}
}

// Clean runs the schema with a discarded logger.
func Clean(t *dataset.Table, s config.Schema) (*Result, error) {
	return New(s, zerolog.Nop()).Clean(t)
}

// Clean renames, lower-cases, recodes and parses dates, in that order. The
// input table is never modified. Running Clean on its own output is a no-op.
func (c *Cleaner) Clean(t *dataset.Table) (*Result, error) {
	res := &Result{}

	out, err := Rename(t, c.schema.Renames, c.schema.Lowercase)
	if err != nil {
		return nil, fmt.Errorf("rename: %w", err)
	}
	c.log.Debug().Str("step", "rename").Int("renames", len(c.schema.Renames)).Msg("cleaning")

	if c.schema.Lowercase {
		if out, err = Lowercase(out); err != nil {
			return nil, fmt.Errorf("lowercase: %w", err)
		}
		c.log.Debug().Str("step", "lowercase").Strs("columns", out.Names()).Msg("cleaning")
	}

	for _, r := range c.schema.Recodes {
		var unknown int
		out, unknown, err = Recode(out, r, c.schema.OnUnknown)
		if err != nil {
			return nil, err
		}
		if unknown > 0 {
			w := fmt.Sprintf("%s: %d value(s) outside %v set to missing", r.Column, unknown, sources(r))
			res.Warnings = append(res.Warnings, w)
			c.log.Warn().Str("column", r.Column).Int("values", unknown).Msg("recode: unknown values set to missing")
		}
		c.log.Debug().Str("step", "recode").Str("column", r.Column).Str("target", r.Target()).Msg("cleaning")
	}

	if len(c.schema.Dates) > 0 {
		if res.Dates, err = ParseDates(out, c.schema.Dates); err != nil {
			return nil, err
		}
		for _, d := range res.Dates {
			c.log.Debug().Str("step", "dates").Str("column", d.Name).Int("days", d.Days).Msg("cleaning")
			if d.Missing > 0 {
				res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %d missing date(s)", d.Name, d.Missing))
			}
		}
	}

	if err := dataset.ValidateHeader(out, c.schema.RoleColumns()); err != nil {
		return nil, fmt.Errorf("cleaned table: %w", err)
	}
	res.Table = out
	return res, nil
}

// Rename applies exact, case-sensitive renames. A rename whose source is gone
// but whose target is present is skipped; with fold set, a lower-cased target
// also counts as present.
func Rename(t *dataset.Table, renames []config.Rename, fold bool) (*dataset.Table, error) {
	df := t.Frame()
	present := func(name string) bool {
		for _, n := range df.Names() {
			if n == name || (fold && n == strings.ToLower(name)) {
				return true
			}
		}
		return false
	}
	for _, r := range renames {
		if !hasName(df, r.From) {
			if present(r.To) {
				continue
			}
			return nil, &dataset.SchemaError{Missing: []string{r.From}, Available: df.Names()}
		}
		if hasName(df, r.To) {
			return nil, fmt.Errorf("%w: %s -> %s: target already exists", dataset.ErrSchemaMismatch, r.From, r.To)
		}
		df = df.Rename(r.To, r.From)
		if df.Err != nil {
			return nil, fmt.Errorf("%s -> %s: %w", r.From, r.To, df.Err)
		}
	}
	return t.With(df)
}

// Lowercase lower-cases every column name. Two names that fold to the same
// lower-case form are rejected.
func Lowercase(t *dataset.Table) (*dataset.Table, error) {
	df := t.Frame()
	seen := make(map[string]string, df.Ncol())
	cols := make([]series.Series, 0, df.Ncol())
	for _, name := range df.Names() {
		lower := strings.ToLower(name)
		if prev, ok := seen[lower]; ok {
			return nil, fmt.Errorf("%w: %q and %q both lower-case to %q", dataset.ErrSchemaMismatch, prev, name, lower)
		}
		seen[lower] = name
		s := df.Col(name)
		s.Name = lower
		cols = append(cols, s)
	}
	return t.With(dataframe.New(cols...))
}

// Recode maps the string values of r.Column onto integer codes and stores the
// result under r.Target(). The mapping is total: a value outside the table is
// a *RecodeError, unless policy is config.OnUnknownMissing, in which case it
// becomes NA and is counted in the returned int.
//
// A column that is already integer-coded is checked against the code domain
// and left alone, so recoding twice never double-encodes.
func Recode(t *dataset.Table, r config.Recode, policy string) (*dataset.Table, int, error) {
	src, target := r.Column, r.Target()
	if !t.Has(src) {
		if target != src && t.Has(target) {
			if err := checkCoded(t, target, r); err != nil {
				return nil, 0, err
			}
			return t, 0, nil
		}
		return nil, 0, &dataset.SchemaError{Missing: []string{src}, Available: t.Names()}
	}
	s, err := t.Column(src)
	if err != nil {
		return nil, 0, err
	}
	if s.Type() == series.Int {
		if err := checkCoded(t, src, r); err != nil {
			return nil, 0, err
		}
		if target == src {
			return t, 0, nil
		}
		s.Name = target
		out, err := replaceColumn(t, src, s)
		return out, 0, err
	}
	if target != src && t.Has(target) {
		return nil, 0, fmt.Errorf("%w: recode %s: target column %s already exists", dataset.ErrSchemaMismatch, src, target)
	}

	vals := make([]string, s.Len())
	var unknown int
	for i := 0; i < s.Len(); i++ {
		e := s.Elem(i)
		code, ok := 0, false
		if !e.IsNA() {
			code, ok = r.Lookup(e.String())
		}
		if !ok {
			if policy != config.OnUnknownMissing {
				return nil, 0, &RecodeError{Column: src, Row: i + 1, Value: e.String(), Domain: sources(r)}
			}
			vals[i] = "NaN"
			unknown++
			continue
		}
		vals[i] = strconv.Itoa(code)
	}
	out, err := replaceColumn(t, src, series.New(vals, series.Int, target))
	if err != nil {
		return nil, 0, err
	}
	return out, unknown, nil
}

// checkCoded verifies that every non-missing value of col is one of r's codes.
func checkCoded(t *dataset.Table, col string, r config.Recode) error {
	s, err := t.Column(col)
	if err != nil {
		return err
	}
	codes := r.Codes()
	domain := make([]string, 0, len(codes))
	for _, m := range r.Values {
		domain = append(domain, strconv.Itoa(m.To))
	}
	for i := 0; i < s.Len(); i++ {
		e := s.Elem(i)
		if e.IsNA() {
			continue
		}
		v, err := e.Int()
		if err != nil || !codes[v] || float64(v) != e.Float() {
			return &RecodeError{Column: col, Row: i + 1, Value: e.String(), Domain: domain}
		}
	}
	return nil
}

func replaceColumn(t *dataset.Table, old string, s series.Series) (*dataset.Table, error) {
	df := t.Frame()
	cols := make([]series.Series, 0, df.Ncol())
	for _, name := range df.Names() {
		if name == old {
			cols = append(cols, s)
			continue
		}
		cols = append(cols, df.Col(name))
	}
	return t.With(dataframe.New(cols...))
}

func hasName(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

func sources(r config.Recode) []string {
	out := make([]string, 0, len(r.Values))
	for _, m := range r.Values {
		out = append(out, m.From)
	}
	return out
}
