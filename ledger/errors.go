/*
errors.go - Centralized error types for the inventory ledger

PURPOSE:
  All error types in one place for consistency and discoverability.
  Collaborating packages (accounts, api) reuse this taxonomy rather
  than inventing their own.

ERROR CATEGORIES:
  1. Validation errors - malformed or missing caller input
  2. Not-found errors  - referenced product/user does not exist
  3. Stock errors      - a deduction would drive quantity negative
  4. Conflict errors   - duplicate identity on create
  5. Storage errors    - the persistence backend failed

All conditions except storage failures are local, recoverable, and
reported to the caller with a human-readable message. A storage failure
is fatal to the operation it interrupted: the mutation is not considered
applied.

USAGE:
  Callers branch with errors.Is/errors.As:

    var nf *ledger.NotFoundError
    if errors.As(err, &nf) { ... }

    if errors.Is(err, ledger.ErrInsufficientStock) { ... }
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is returned when caller input is malformed or missing.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientStock is returned when a deduction exceeds quantity on hand.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrConflict is returned when a create collides with an existing identity.
	ErrConflict = errors.New("conflict")

	// ErrStorageUnavailable is returned when the persistence backend failed.
	// The interrupted operation must be treated as not applied.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports a malformed or missing input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError reports a missing record by resource kind and lookup key.
type NotFoundError struct {
	Resource string // "Product", "User"
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// InsufficientStockError reports a deduction that exceeds quantity on hand.
type InsufficientStockError struct {
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return "Not enough stock to deduct"
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// ConflictError reports a duplicate identity on create.
type ConflictError struct {
	Resource string
	Key      string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with this %s already exists", e.Resource, e.Key)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// StorageError wraps a persistence backend failure with the operation
// that triggered it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage unavailable during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return ErrStorageUnavailable }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsClientError returns true if the error is due to invalid client input
// rather than a system failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrNotFound)
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
