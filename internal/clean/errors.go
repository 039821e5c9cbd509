package clean

import (
	"errors"
	"fmt"
)

var (
	// ErrRecodeDomain indicates a categorical value outside the recode table.
	ErrRecodeDomain = errors.New("value outside recode domain")
	// ErrDateParse indicates a date column holds a value no known layout accepts.
	ErrDateParse = errors.New("unparseable date")
)

// RecodeError names the first offending cell of a recode.
type RecodeError struct {
	Column string
	Row    int // 1-based data row
	Value  string
	Domain []string
}

func (e *RecodeError) Error() string {
	return fmt.Sprintf("recode %s: row %d: value %q not in %v", e.Column, e.Row, e.Value, e.Domain)
}

func (e *RecodeError) Is(target error) bool { return target == ErrRecodeDomain }

// DateError names the first unparseable cell of a date column.
type DateError struct {
	Column string
	Row    int
	Value  string
}

func (e *DateError) Error() string {
	return fmt.Sprintf("parse dates %s: row %d: %q", e.Column, e.Row, e.Value)
}

func (e *DateError) Is(target error) bool { return target == ErrDateParse }
