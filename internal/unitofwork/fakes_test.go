package unitofwork_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/phrazzld/handlescope/internal/store"
)

var errNotSupported = errors.New("fake session: not supported")

// fakeSession is a store.Session that only records Close calls.
type fakeSession struct {
	id       int64
	closeErr error
	closed   atomic.Int32
}

func (s *fakeSession) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, errNotSupported
}

func (s *fakeSession) PrepareContext(context.Context, string) (*sql.Stmt, error) {
	return nil, errNotSupported
}

func (s *fakeSession) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, errNotSupported
}

func (s *fakeSession) QueryRowContext(context.Context, string, ...any) *sql.Row {
	return nil
}

func (s *fakeSession) BeginTx(context.Context, *sql.TxOptions) (*sql.Tx, error) {
	return nil, errNotSupported
}

func (s *fakeSession) Close() error {
	s.closed.Add(1)
	return s.closeErr
}

// fakeOpener hands out fakeSessions and counts opens.
type fakeOpener struct {
	mu       sync.Mutex
	openErr  error
	closeErr error
	nextID   int64
	sessions []*fakeSession
}

func (o *fakeOpener) Open(ctx context.Context) (store.Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.openErr != nil {
		return nil, o.openErr
	}
	o.nextID++
	s := &fakeSession{id: o.nextID, closeErr: o.closeErr}
	o.sessions = append(o.sessions, s)
	return s, nil
}

func (o *fakeOpener) opens() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.sessions)
}

func (o *fakeOpener) closes() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, s := range o.sessions {
		n += int(s.closed.Load())
	}
	return n
}

func (o *fakeOpener) setCloseErr(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closeErr = err
}

// rendezvousOpener holds every Open until all expected callers are inside
// it, so overlapping acquires for one context are forced to both open.
type rendezvousOpener struct {
	*fakeOpener
	arrived sync.WaitGroup
}

func newRendezvousOpener(callers int, closeErr error) *rendezvousOpener {
	o := &rendezvousOpener{fakeOpener: &fakeOpener{closeErr: closeErr}}
	o.arrived.Add(callers)
	return o
}

func (o *rendezvousOpener) Open(ctx context.Context) (store.Session, error) {
	o.arrived.Done()
	o.arrived.Wait()
	return o.fakeOpener.Open(ctx)
}
