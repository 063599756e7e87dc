package unitofwork

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrClassification is matched by every *ClassificationError.
	ErrClassification = errors.New("no read or write operations")

	// ErrConnection is matched by every *ConnectionError.
	ErrConnection = errors.New("failed to open handle")

	// ErrRelease is matched by every *ReleaseError.
	ErrRelease = errors.New("failed to release handle")

	// ErrInvalidMethod is returned when a data-access type declares a
	// method whose signature cannot be proxied.
	ErrInvalidMethod = errors.New("invalid data-access method")

	// ErrInvalidType is returned when a value is not a data-access type
	// (a struct with func fields) or a factory yields the wrong type.
	ErrInvalidType = errors.New("invalid data-access type")

	// ErrUnboundMethod is returned when the real implementation leaves a
	// proxied method nil.
	ErrUnboundMethod = errors.New("method not implemented")
)

// ClassificationError reports a data-access type without any read or write
// operation. It is raised when the proxy is requested, never on first call.
type ClassificationError struct {
	Type string
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Type, ErrClassification)
}

func (e *ClassificationError) Is(target error) bool {
	return target == ErrClassification
}

// ConnectionError reports that no handle could be opened for a unit of work.
// No handle mapping exists for Context afterwards.
type ConnectionError struct {
	Context ExecutionContext
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%v for %s: %v", ErrConnection, e.Context, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnection
}

// ReleaseError reports that closing a handle failed. It is attached to the
// opener call's own outcome rather than replacing it.
type ReleaseError struct {
	Context  ExecutionContext
	HandleID uuid.UUID
	Err      error
}

func (e *ReleaseError) Error() string {
	return fmt.Sprintf("%v %s for %s: %v", ErrRelease, e.HandleID, e.Context, e.Err)
}

func (e *ReleaseError) Unwrap() error { return e.Err }

func (e *ReleaseError) Is(target error) bool {
	return target == ErrRelease
}
