/*
errors.go - Centralized error types for the billing core

PURPOSE:
  All recoverable error kinds in one place. The presentation boundary maps
  these onto HTTP statuses and re-prompts the user; none are fatal.

ERROR CATEGORIES:
  1. NotFound    - operating on an id absent from the named collection
  2. Validation  - missing required field, negative amount, bad frequency
  3. AlreadyPaid - re-paying an entry that already moved to historical

USAGE:
  if errors.Is(err, billing.ErrNotFound) { ... 404 ... }

  var fe *billing.FieldError
  if errors.As(err, &fe) { ... which field ... }
*/
package billing

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when an id is absent from the collection an
	// operation targets.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyPaid is returned when mark-paid is invoked on an entry that
	// is already historical.
	ErrAlreadyPaid = errors.New("entry already paid")

	// ErrValidation is returned for invalid input: missing required fields,
	// negative amounts, unknown frequency labels.
	ErrValidation = errors.New("validation failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError reports which collection was searched for which id.
type NotFoundError struct {
	Collection Collection
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no entry %s in %s", e.ID, e.Collection)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// AlreadyPaidError reports a mark-paid attempt on a historical entry.
type AlreadyPaidError struct {
	ID     EntryID
	PaidOn Date
}

func (e *AlreadyPaidError) Error() string {
	return fmt.Sprintf("entry %s was already paid on %s", e.ID, e.PaidOn)
}

func (e *AlreadyPaidError) Unwrap() error { return ErrAlreadyPaid }

// FieldError reports which input field failed validation.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error { return ErrValidation }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether the error is caused by invalid client input
// rather than an internal failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrAlreadyPaid) ||
		errors.Is(err, ErrNotFound)
}

// IsNotFound reports whether the error indicates a missing entry.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
