package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "generic error",
			err:      errors.New("some error"),
			expected: false,
		},
		{
			name:     "ErrNotFound",
			err:      ErrNotFound,
			expected: true,
		},
		{
			name:     "wrapped ErrNotFound",
			err:      fmt.Errorf("failed to do something: %w", ErrNotFound),
			expected: true,
		},
		{
			name:     "ErrTaskNotFound",
			err:      ErrTaskNotFound,
			expected: true,
		},
		{
			name:     "wrapped ErrTaskNotFound",
			err:      fmt.Errorf("%w: %d", ErrTaskNotFound, 42),
			expected: true,
		},
		{
			name:     "ErrDuplicate",
			err:      ErrDuplicate,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestStoreError(t *testing.T) {
	originalErr := errors.New("database connection failed")
	storeErr := NewStoreError("task", "insert", "database error", originalErr)

	assert.Equal(t,
		"insert operation on task failed: database error: database connection failed",
		storeErr.Error())
	assert.ErrorIs(t, storeErr, originalErr)

	bare := NewStoreError("task", "delete", "no rows", nil)
	assert.Equal(t, "delete operation on task failed: no rows", bare.Error())
	assert.Nil(t, bare.Unwrap())
}

func TestWithSuppressed(t *testing.T) {
	primary := fmt.Errorf("query: %w", ErrDuplicate)
	closeErr := errors.New("close failed")
	rollbackErr := errors.New("rollback failed")

	t.Run("nil secondary keeps primary", func(t *testing.T) {
		assert.Same(t, primary, WithSuppressed(primary, nil))
	})

	t.Run("nil primary yields secondary", func(t *testing.T) {
		assert.Same(t, closeErr, WithSuppressed(nil, closeErr))
	})

	t.Run("both nil", func(t *testing.T) {
		assert.NoError(t, WithSuppressed(nil, nil))
	})

	t.Run("primary keeps its identity", func(t *testing.T) {
		err := WithSuppressed(primary, closeErr)

		assert.ErrorIs(t, err, ErrDuplicate)
		assert.ErrorIs(t, err, closeErr)
		assert.Same(t, primary, Primary(err))
		assert.Equal(t, []error{closeErr}, Suppressed(err))
		assert.Contains(t, err.Error(), "suppressed: close failed")
	})

	t.Run("suppressed errors accumulate", func(t *testing.T) {
		err := WithSuppressed(WithSuppressed(primary, rollbackErr), closeErr)

		assert.Same(t, primary, Primary(err))
		assert.Equal(t, []error{rollbackErr, closeErr}, Suppressed(err))
	})

	t.Run("plain error has nothing suppressed", func(t *testing.T) {
		assert.Nil(t, Suppressed(primary))
		assert.Same(t, primary, Primary(primary))
	})
}
