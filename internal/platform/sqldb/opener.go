package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/phrazzld/handlescope/internal/store"
)

// ConnOpener opens handles as dedicated connections taken from a pool.
// Closing the session returns the connection to the pool.
type ConnOpener struct {
	db      *sql.DB
	timeout time.Duration
}

var _ store.Opener = (*ConnOpener)(nil)

// NewOpener creates an opener over db. A positive timeout bounds how long
// Open waits for a free connection.
func NewOpener(db *sql.DB, timeout time.Duration) *ConnOpener {
	return &ConnOpener{db: db, timeout: timeout}
}

// Open implements store.Opener.
func (o *ConnOpener) Open(ctx context.Context) (store.Session, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	conn, err := o.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrConnectionFailed, err)
	}
	return conn, nil
}
