package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUpsertConflict signals a lost race on identity uniqueness; callers retry as an update.
	ErrUpsertConflict = errors.New("upsert conflict on identity key")
	// ErrNotFound is returned when a record lookup misses.
	ErrNotFound = errors.New("job posting not found")
)

// FetchReason classifies why an adapter produced no usable result.
type FetchReason string

const (
	ReasonTimeout    FetchReason = "timeout"
	ReasonHTTPError  FetchReason = "http_error"
	ReasonParseError FetchReason = "parse_error"
)

// FetchError is scoped to one source and never fatal to a cycle.
type FetchError struct {
	Source string
	Reason FetchReason
	Cause  error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.Source, e.Reason, e.Cause)
	}
	return fmt.Sprintf("fetch %s: %s", e.Source, e.Reason)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// NewHTTPError builds a FetchError for transport failures and bad statuses.
func NewHTTPError(source string, cause error) *FetchError {
	return &FetchError{Source: source, Reason: ReasonHTTPError, Cause: cause}
}

// NewParseError builds a FetchError for payloads that could not be decoded.
func NewParseError(source string, cause error) *FetchError {
	return &FetchError{Source: source, Reason: ReasonParseError, Cause: cause}
}
