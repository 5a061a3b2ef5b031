package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedIdentifier signals a document identifier that does not decode to three packed uint32s.
	ErrMalformedIdentifier = errors.New("malformed identifier")
	// ErrSearchUnavailable signals a transport or batch-level daemon failure.
	ErrSearchUnavailable = errors.New("search unavailable")
	// ErrPartialPlanFailure signals that one plan of a batch failed while its siblings ran.
	ErrPartialPlanFailure = errors.New("partial plan failure")
	// ErrInvalidFilterValue signals a malformed user filter that was ignored.
	ErrInvalidFilterValue = errors.New("invalid filter value")
	// ErrMaintenanceMismatch signals that an attribute update touched fewer rows than attempted.
	ErrMaintenanceMismatch = errors.New("maintenance mismatch")
	// ErrInvalidRequest signals user input rejected at the API edge.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
)

// MismatchError wraps ErrMaintenanceMismatch with the counts that disagreed.
type MismatchError struct {
	Attempted int
	Updated   int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: updated %d of %d", ErrMaintenanceMismatch.Error(), e.Updated, e.Attempted)
}

func (e *MismatchError) Unwrap() error { return ErrMaintenanceMismatch }

// NewMismatch creates a maintenance mismatch error.
func NewMismatch(attempted, updated int) error {
	return &MismatchError{Attempted: attempted, Updated: updated}
}

// FilterError wraps ErrInvalidFilterValue with the offending filter name and value.
type FilterError struct {
	Filter string
	Value  string
	Reason string
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("%s: %s=%q: %s", ErrInvalidFilterValue.Error(), e.Filter, e.Value, e.Reason)
}

func (e *FilterError) Unwrap() error { return ErrInvalidFilterValue }

// NewFilterError creates an invalid filter error.
func NewFilterError(filter, value, reason string) error {
	return &FilterError{Filter: filter, Value: value, Reason: reason}
}
