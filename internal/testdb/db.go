package testdb

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/phrazzld/handlescope/internal/config"
	"github.com/phrazzld/handlescope/internal/platform/logger"
	"github.com/phrazzld/handlescope/internal/platform/sqldb"
	"github.com/stretchr/testify/require"
)

// TestTimeout bounds setup and teardown of test databases.
const TestTimeout = 10 * time.Second

// PostgresURLEnv names the variable selecting PostgreSQL for tests.
const PostgresURLEnv = "HANDLESCOPE_TEST_DATABASE_URL"

// Config returns the database configuration used by Open.
func Config(t *testing.T) config.DatabaseConfig {
	t.Helper()

	cfg := config.DatabaseConfig{
		Driver:          sqldb.DriverSQLite,
		URL:             filepath.Join(t.TempDir(), "handlescope.db"),
		MaxOpenConns:    8,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
		OpenTimeout:     TestTimeout,
	}
	if url := os.Getenv(PostgresURLEnv); url != "" {
		cfg.Driver = sqldb.DriverPgx
		cfg.URL = url
	}
	return cfg
}

// Open returns a freshly migrated database. The schema is reset and the
// pool closed when the test ends.
func Open(t *testing.T) (*sql.DB, sqldb.Dialect) {
	t.Helper()

	log, _ := logger.GetTestLogger(t)
	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, dialect, err := sqldb.Open(ctx, Config(t), log)
	require.NoError(t, err, "failed to open test database")

	require.NoError(t, sqldb.Migrate(ctx, db, dialect, sqldb.MigrateUp, log),
		"failed to migrate test database")

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
		defer cancel()
		if err := sqldb.Migrate(ctx, db, dialect, sqldb.MigrateReset, log); err != nil {
			t.Logf("failed to reset test database: %v", err)
		}
		if err := db.Close(); err != nil {
			t.Logf("failed to close test database: %v", err)
		}
	})
	return db, dialect
}
