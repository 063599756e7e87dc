package sqldb_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/phrazzld/handlescope/internal/config"
	"github.com/phrazzld/handlescope/internal/platform/logger"
	"github.com/phrazzld/handlescope/internal/platform/sqldb"
	"github.com/phrazzld/handlescope/internal/store"
	"github.com/phrazzld/handlescope/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRejectsUnknownDriver(t *testing.T) {
	log, _ := logger.GetTestLogger(t)

	_, _, err := sqldb.Open(context.Background(), config.DatabaseConfig{Driver: "mysql", URL: "x"}, log)

	assert.Error(t, err)
}

func TestMigrateAppliesSchema(t *testing.T) {
	db, dialect := testdb.Open(t)
	ctx := context.Background()

	version, err := sqldb.SchemaVersion(ctx, db, dialect)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	_, err = db.ExecContext(ctx, dialect.Rebind(
		"INSERT INTO tasks (id, assignee) VALUES (?, ?)"), 1, "ada")
	require.NoError(t, err)

	log, _ := logger.GetTestLogger(t)
	assert.Error(t, sqldb.Migrate(ctx, db, dialect, "sideways", log))
	require.NoError(t, sqldb.Migrate(ctx, db, dialect, sqldb.MigrateStatus, log))
}

func TestMapErrorOnDriverErrors(t *testing.T) {
	db, dialect := testdb.Open(t)
	ctx := context.Background()
	insert := dialect.Rebind("INSERT INTO tasks (id, assignee) VALUES (?, ?)")

	_, err := db.ExecContext(ctx, insert, 7, "ada")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, insert, 7, "grace")
	assert.ErrorIs(t, sqldb.MapError(err), store.ErrDuplicate)
	assert.True(t, sqldb.IsUniqueViolation(err))

	_, err = db.ExecContext(ctx, insert, 8, nil)
	assert.ErrorIs(t, sqldb.MapError(err), store.ErrInvalidEntity)

	var id int64
	err = db.QueryRowContext(ctx, dialect.Rebind("SELECT id FROM tasks WHERE id = ?"), 99).Scan(&id)
	assert.ErrorIs(t, sqldb.MapError(err), store.ErrNotFound)
}

func TestOpenerHandsOutDedicatedConnections(t *testing.T) {
	db, _ := testdb.Open(t)
	opener := sqldb.NewOpener(db, time.Second)
	ctx := context.Background()

	a, err := opener.Open(ctx)
	require.NoError(t, err)
	b, err := opener.Open(ctx)
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Equal(t, 2, db.Stats().InUse)

	require.NoError(t, a.Close())
	require.NoError(t, b.Close())
	assert.Equal(t, 0, db.Stats().InUse)
}

func TestOpenerFailure(t *testing.T) {
	db, _ := testdb.Open(t)
	opener := sqldb.NewOpener(db, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := opener.Open(ctx)
	assert.ErrorIs(t, err, store.ErrConnectionFailed)
	assert.ErrorIs(t, err, context.Canceled)

	require.NoError(t, db.Close())
	_, err = opener.Open(context.Background())
	assert.ErrorIs(t, err, store.ErrConnectionFailed)
}

func TestOpenerWaitsForFreeConnection(t *testing.T) {
	db, _ := testdb.Open(t)
	db.SetMaxOpenConns(1)
	opener := sqldb.NewOpener(db, 50*time.Millisecond)

	held, err := opener.Open(context.Background())
	require.NoError(t, err)
	defer held.Close()

	_, err = opener.Open(context.Background())
	assert.ErrorIs(t, err, store.ErrConnectionFailed)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
