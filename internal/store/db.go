package store

import (
	"context"
	"database/sql"
)

// DBTX is an interface that abstracts statement execution.
// It is implemented by *sql.DB, *sql.Conn and *sql.Tx, allowing data-access
// code to run against a pooled database, a dedicated session or a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxBeginner starts transactions. *sql.DB and *sql.Conn implement it.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Session is one open session against the backing store. A *sql.Conn
// satisfies it. Sessions are not safe for concurrent use by multiple
// units of work.
type Session interface {
	DBTX
	TxBeginner

	// Close returns the session to its owner (usually a connection pool).
	Close() error
}

// Opener opens sessions. Implementations own pooling and reconnect policy;
// callers never retry a failed Open.
type Opener interface {
	Open(ctx context.Context) (Session, error)
}

// OpenerFunc adapts a plain function to the Opener interface.
type OpenerFunc func(ctx context.Context) (Session, error)

// Open calls f(ctx).
func (f OpenerFunc) Open(ctx context.Context) (Session, error) {
	return f(ctx)
}
