package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingColumn means the table lacks the prescription column.
	ErrMissingColumn = errors.New("expected column not found")
	// ErrInputNotFound means neither an upload nor a readable default file was given.
	ErrInputNotFound = errors.New("input file not found")
	// ErrThresholdRange means a threshold is outside its slider range.
	ErrThresholdRange = errors.New("threshold out of range")
)

// ColumnError names the missing column and the headers that were present.
type ColumnError struct {
	Column    string
	Available []string
}

func (e *ColumnError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("column %q not found: table has no header", e.Column)
	}
	return fmt.Sprintf("column %q not found (available: %s)", e.Column, strings.Join(e.Available, ", "))
}

func (e *ColumnError) Unwrap() error { return ErrMissingColumn }
