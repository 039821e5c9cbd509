package dataset

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// LoadOptions controls how a CSV file is read.
type LoadOptions struct {
	// Delimiter for CSV. If 0, uses ','.
	Delimiter rune
	// Types pins the type of specific columns; the rest are detected.
	Types map[string]series.Type
}

// Table is an immutable appointment table. Every transformation returns a new Table.
type Table struct {
	df     dataframe.DataFrame
	source string
}

// Predicate selects rows whose integer-coded column equals Value.
type Predicate struct {
	Column string
	Value  int
}

func (p Predicate) String() string { return fmt.Sprintf("%s==%d", p.Column, p.Value) }

// Load reads a delimited text file into a Table with inferred column types.
func Load(path string, opt LoadOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Kind: ErrFileAccess, Err: err}
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, &LoadError{Path: path, Kind: ErrFileAccess, Err: err}
	}
	if info.IsDir() {
		return nil, &LoadError{Path: path, Kind: ErrFileAccess, Err: fs.ErrInvalid}
	}
	delim := opt.Delimiter
	if delim == 0 {
		delim = ','
	}
	loadOpts := []dataframe.LoadOption{
		dataframe.WithDelimiter(delim),
		dataframe.DetectTypes(true),
		dataframe.HasHeader(true),
	}
	if len(opt.Types) > 0 {
		loadOpts = append(loadOpts, dataframe.WithTypes(opt.Types))
	}
	df := dataframe.ReadCSV(f, loadOpts...)
	if df.Err != nil {
		return nil, &LoadError{Path: path, Kind: ErrParse, Err: df.Err}
	}
	return &Table{df: df, source: filepath.Base(path)}, nil
}

// FromRecords builds a Table from a record matrix whose first row is the header.
func FromRecords(records [][]string) (*Table, error) {
	df := dataframe.LoadRecords(records, dataframe.DetectTypes(true), dataframe.HasHeader(true))
	if df.Err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, df.Err)
	}
	return &Table{df: df}, nil
}

// FromFrame wraps an existing data frame.
func FromFrame(df dataframe.DataFrame, source string) (*Table, error) {
	if df.Err != nil {
		return nil, df.Err
	}
	return &Table{df: df, source: source}, nil
}

// With returns a new Table holding df and keeping the source name.
func (t *Table) With(df dataframe.DataFrame) (*Table, error) { return FromFrame(df, t.source) }

// Source is the base name of the file the table was read from, if any.
func (t *Table) Source() string { return t.source }

// Frame exposes the underlying data frame. Callers must not mutate it.
func (t *Table) Frame() dataframe.DataFrame { return t.df }

func (t *Table) Rows() int { return t.df.Nrow() }
func (t *Table) Cols() int { return t.df.Ncol() }
func (t *Table) Names() []string { return t.df.Names() }
func (t *Table) Types() []series.Type { return t.df.Types() }
func (t *Table) Records() [][]string { return t.df.Records() }
func (t *Table) Elem(r, c int) series.Element { return t.df.Elem(r, c) }

// Has reports whether a column with the exact name exists.
func (t *Table) Has(name string) bool {
	for _, n := range t.df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) (series.Series, error) {
	if !t.Has(name) {
		return series.Series{}, &SchemaError{Missing: []string{name}, Available: t.Names()}
	}
	s := t.df.Col(name)
	if s.Err != nil {
		return series.Series{}, s.Err
	}
	return s, nil
}

// Filter returns the rows matching every predicate. With no predicates it returns a copy.
func (t *Table) Filter(preds ...Predicate) (*Table, error) {
	if len(preds) == 0 {
		return t.With(t.df.Copy())
	}
	var missing []string
	filters := make([]dataframe.F, 0, len(preds))
	for _, p := range preds {
		if !t.Has(p.Column) {
			missing = append(missing, p.Column)
			continue
		}
		filters = append(filters, dataframe.F{Colname: p.Column, Comparator: series.Eq, Comparando: p.Value})
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing, Available: t.Names()}
	}
	out := t.df.FilterAggregation(dataframe.And, filters...)
	if out.Err != nil {
		return nil, fmt.Errorf("filter %v: %w", preds, out.Err)
	}
	return t.With(out)
}

// ValidateHeader checks that every required column is present, reporting all missing at once.
func ValidateHeader(t *Table, required []string) error {
	var missing []string
	for _, name := range required {
		if !t.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing, Available: t.Names()}
	}
	return nil
}
