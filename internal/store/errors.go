package store

import (
	"errors"
	"fmt"
	"strings"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a database transaction fails
	// to begin or commit.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrConnectionFailed is returned when a session cannot be opened,
	// for example because the server refused the connection.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrTaskNotFound indicates that the requested task does not exist in the store.
	ErrTaskNotFound = fmt.Errorf("%w: task", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "task")
	Operation string // The operation that failed (e.g., "insert", "update")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// suppressedError carries a primary failure together with secondary
// failures that happened while cleaning up after it. The primary error
// keeps its identity: errors.Is and errors.As see through to it first.
type suppressedError struct {
	primary    error
	suppressed []error
}

func (e *suppressedError) Error() string {
	parts := make([]string, len(e.suppressed))
	for i, s := range e.suppressed {
		parts[i] = s.Error()
	}
	return fmt.Sprintf("%v (suppressed: %s)", e.primary, strings.Join(parts, "; "))
}

func (e *suppressedError) Unwrap() []error {
	return append([]error{e.primary}, e.suppressed...)
}

// WithSuppressed attaches secondary to primary without replacing it.
// If primary is nil, secondary is returned as is.
// If secondary is nil, primary is returned unchanged.
func WithSuppressed(primary, secondary error) error {
	switch {
	case secondary == nil:
		return primary
	case primary == nil:
		return secondary
	}

	var se *suppressedError
	if errors.As(primary, &se) && se == primary {
		return &suppressedError{
			primary:    se.primary,
			suppressed: append(append([]error(nil), se.suppressed...), secondary),
		}
	}
	return &suppressedError{primary: primary, suppressed: []error{secondary}}
}

// Suppressed returns the secondary failures attached to err by WithSuppressed.
func Suppressed(err error) []error {
	var se *suppressedError
	if errors.As(err, &se) {
		return append([]error(nil), se.suppressed...)
	}
	return nil
}

// Primary returns the primary failure of err, stripping any attached
// secondary failures.
func Primary(err error) error {
	var se *suppressedError
	if errors.As(err, &se) {
		return se.primary
	}
	return err
}
