// Package trackererror defines the error types shared by the tracker's
// pipelines, store and commands.
package trackererror

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfirmed is returned when a destructive action was not acknowledged.
	ErrNotConfirmed = errors.New("operation not confirmed")

	// ErrBusy is returned when a pipeline is asked to run while a previous
	// request on the same pipeline is still in flight.
	ErrBusy = errors.New("operation already in progress")

	// ErrStale marks a result that was superseded by a newer request.
	ErrStale = errors.New("result superseded by a newer request")

	// ErrNoExpenses is returned when an operation needs at least one record.
	ErrNoExpenses = errors.New("No expenses to export")

	// ErrInsufficientHistory is returned when a forecast is requested with
	// fewer than two months of data.
	ErrInsufficientHistory = errors.New("at least two months of expenses are needed for a forecast")

	// ErrShortDescription is returned when a description is too short to
	// be worth categorizing.
	ErrShortDescription = errors.New("description too short to categorize")

	// ErrEmptyQuestion is returned when a query is submitted without text.
	ErrEmptyQuestion = errors.New("Please enter a question")
)

// ValidationError represents user input rejected before any pipeline runs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ExtractionError represents a voice or receipt extraction that produced no
// usable candidate.
type ExtractionError struct {
	Mode   string
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s extraction failed: %s: %v", e.Mode, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s extraction failed: %s", e.Mode, e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// StoreError wraps a failure of a persistence backend.
type StoreError struct {
	Backend string
	Op      string
	Err     error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s store: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
