package sqldb

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Dialect identifies the SQL flavour spoken by a driver. Its value is the
// driver name sqlx knows the dialect's bindvar style under.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite3"
)

// Driver names registered with database/sql.
const (
	DriverPgx    = "pgx"
	DriverSQLite = "sqlite"
)

// DialectFor returns the dialect of a database/sql driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case DriverPgx:
		return Postgres, nil
	case DriverSQLite:
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Rebind rewrites '?' placeholders into the dialect's bindvar form.
// Every '?' counts, including one inside a quoted literal, so statements
// must not embed a literal question mark.
func (d Dialect) Rebind(query string) string {
	return sqlx.Rebind(sqlx.BindType(string(d)), query)
}
