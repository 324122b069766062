package services

import "errors"

var (
	// ErrInputNotFound is returned when the input CSV path does not exist.
	ErrInputNotFound = errors.New("input file not found")
	// ErrMissingColumn is returned when a column needed by a report is absent
	// from the input header.
	ErrMissingColumn = errors.New("missing column")
	// ErrNoDimensions is returned when an aggregation has no grouping columns.
	ErrNoDimensions = errors.New("no grouping dimensions")
)
