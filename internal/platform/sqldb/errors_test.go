package sqldb_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/handlescope/internal/platform/sqldb"
	"github.com/phrazzld/handlescope/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPgError(code string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "error message",
		TableName:      "tasks",
		ColumnName:     "assignee",
		ConstraintName: "tasks_pkey",
	}
}

type mockResult struct {
	rowsAffected int64
	err          error
}

func (m mockResult) LastInsertId() (int64, error) { return 0, m.err }
func (m mockResult) RowsAffected() (int64, error) { return m.rowsAffected, m.err }

func TestMapError(t *testing.T) {
	t.Parallel()

	generic := errors.New("generic error")
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "no rows", err: sql.ErrNoRows, want: store.ErrNotFound},
		{name: "wrapped no rows", err: fmt.Errorf("scan: %w", sql.ErrNoRows), want: store.ErrNotFound},
		{name: "conn done", err: sql.ErrConnDone, want: store.ErrConnectionFailed},
		{name: "unique violation", err: newPgError("23505"), want: store.ErrDuplicate},
		{name: "foreign key violation", err: newPgError("23503"), want: store.ErrInvalidEntity},
		{name: "check violation", err: newPgError("23514"), want: store.ErrInvalidEntity},
		{name: "not null violation", err: newPgError("23502"), want: store.ErrInvalidEntity},
		{name: "connection exception", err: newPgError("08006"), want: store.ErrConnectionFailed},
		{name: "unmapped postgres error", err: newPgError("42P01"), want: nil},
		{name: "generic error", err: generic, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := sqldb.MapError(tt.err)

			require.Error(t, got)
			if tt.want == nil {
				assert.Equal(t, tt.err, got, "unmapped errors are returned unchanged")
				return
			}
			assert.ErrorIs(t, got, tt.want)
			assert.Contains(t, got.Error(), tt.err.Error())
		})
	}

	assert.NoError(t, sqldb.MapError(nil))
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	assert.True(t, sqldb.IsUniqueViolation(newPgError("23505")))
	assert.False(t, sqldb.IsUniqueViolation(newPgError("23503")))
	assert.False(t, sqldb.IsUniqueViolation(errors.New("generic")))
	assert.False(t, sqldb.IsUniqueViolation(nil))
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	assert.NoError(t, sqldb.CheckRowsAffected(mockResult{rowsAffected: 1}, "task"))

	err := sqldb.CheckRowsAffected(mockResult{}, "task")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Contains(t, err.Error(), "task not found")

	assert.Equal(t, store.ErrNotFound, sqldb.CheckRowsAffected(mockResult{}, ""))

	failed := errors.New("driver does not support RowsAffected")
	assert.ErrorIs(t, sqldb.CheckRowsAffected(mockResult{err: failed}, "task"), failed)

	assert.Error(t, sqldb.CheckRowsAffected(nil, "task"))
}
