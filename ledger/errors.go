/*
errors.go - Centralized error taxonomy for the ledger core

PURPOSE:
  All failure kinds crossing the core boundary in one place. Services wrap
  these with entity context; callers classify with errors.Is or the helper
  predicates.

ERROR CATEGORIES:
  1. NotFound    - entity absent OR not owned by the caller. One failure
                   mode on purpose: "exists but belongs to someone else"
                   must be indistinguishable from "does not exist".
  2. Validation  - malformed or semantically invalid input, rejected
                   before any store mutation.
  3. Conflict    - domain state conflicts (duplicate budget month,
                   category still referenced).
  4. Store       - unexpected persistence failure, wrapped with the
                   operation and entity involved.

USAGE:
    if ledger.IsNotFound(err) { ... }          // 404-equivalent
    if ledger.IsValidation(err) { ... }        // 400-equivalent
    if ledger.IsConflict(err) { ... }          // 400-equivalent with code
    var se *ledger.StoreError                  // 500-equivalent
    if errors.As(err, &se) { ... }
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
	// ErrNotFound is returned when an entity is absent or not owned by
	// the acting user. The two cases are intentionally not distinguished.
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned for input rejected before any write.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned for domain-specific state conflicts.
	ErrConflict = errors.New("conflict")

	// ErrStore is returned for unclassified persistence failures.
	ErrStore = errors.New("store failure")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError identifies which entity lookup missed.
type NotFoundError struct {
	Entity string // "account", "category", "transaction", "budget"
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found or not owned by user", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ValidationError reports rejected input with a stable machine code.
type ValidationError struct {
	Code    string // e.g. "DUPLICATE_NAME", "NEGATIVE_INITIAL_BALANCE"
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ConflictError reports a domain state conflict with a stable machine code.
type ConflictError struct {
	Code    string // e.g. "CATEGORY_IN_USE", "DUPLICATE_BUDGET"
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// StoreError wraps an unexpected persistence failure with the operation
// and entity involved.
type StoreError struct {
	Op     string // e.g. "insert transaction"
	Entity string
	Err    error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Op, e.Entity, e.Err)
}

func (e *StoreError) Unwrap() []error { return []error{ErrStore, e.Err} }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound reports whether err is a missing-or-not-owned failure.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsValidation reports whether err is a pre-write input rejection.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsConflict reports whether err is a domain state conflict.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// IsStoreFailure reports whether err is an unexpected persistence failure.
func IsStoreFailure(err error) bool { return errors.Is(err, ErrStore) }

// storeErr is a convenience constructor used by the service layer.
func storeErr(op, entity string, err error) *StoreError {
	return &StoreError{Op: op, Entity: entity, Err: err}
}

// WrapStore wraps err as a StoreError unless it is already one of the
// classified core failures.
func WrapStore(op, entity string, err error) error {
	if err == nil {
		return nil
	}
	if IsNotFound(err) || IsValidation(err) || IsConflict(err) || IsStoreFailure(err) {
		return err
	}
	return storeErr(op, entity, err)
}
