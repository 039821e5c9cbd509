package dataset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFileAccess indicates the input path could not be opened or read.
	ErrFileAccess = errors.New("file access")
	// ErrParse indicates the content is not delimited tabular text.
	ErrParse = errors.New("not tabular data")
	// ErrSchemaMismatch indicates an expected column is absent.
	ErrSchemaMismatch = errors.New("schema mismatch")
)

// LoadError describes a failure to produce a table from a path.
type LoadError struct {
	Path string
	Kind error // ErrFileAccess or ErrParse
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v: %v", e.Path, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() []error { return []error{e.Kind, e.Err} }

// SchemaError lists columns that were expected but not found.
type SchemaError struct {
	Missing   []string
	Available []string
}

func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("missing column(s): %s", strings.Join(e.Missing, ", "))
	if len(e.Available) > 0 {
		msg += fmt.Sprintf("\nAvailable columns: %s", strings.Join(e.Available, ", "))
	}
	return msg
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchemaMismatch }
