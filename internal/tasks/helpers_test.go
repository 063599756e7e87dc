package tasks

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phrazzld/handlescope/internal/platform/logger"
	"github.com/phrazzld/handlescope/internal/platform/sqldb"
	"github.com/phrazzld/handlescope/internal/store"
	"github.com/phrazzld/handlescope/internal/testdb"
	"github.com/phrazzld/handlescope/internal/timecodec"
	"github.com/phrazzld/handlescope/internal/unitofwork"
	"github.com/stretchr/testify/require"
)

// countingOpener counts the handles opened through it.
type countingOpener struct {
	store.Opener
	opens atomic.Int32
}

func (c *countingOpener) Open(ctx context.Context) (store.Session, error) {
	c.opens.Add(1)
	return c.Opener.Open(ctx)
}

type fixture struct {
	provider *unitofwork.Provider
	manager  *unitofwork.HandleManager
	opener   *countingOpener
	factory  Factory
	dao      *DAO
}

func newFixture(t *testing.T, codec timecodec.Codec, shape timecodec.Shape) *fixture {
	t.Helper()

	db, dialect := testdb.Open(t)
	log, _ := logger.GetTestLogger(t)

	opener := &countingOpener{Opener: sqldb.NewOpener(db, testdb.TestTimeout)}
	manager := unitofwork.NewHandleManager(opener, unitofwork.WithLogger(log))
	provider := unitofwork.NewProvider(manager, nil)
	factory := Factory{Dialect: dialect, Codec: codec, Shape: shape}

	dao, err := unitofwork.Get(provider, factory.Bind)
	require.NoError(t, err)

	return &fixture{
		provider: provider,
		manager:  manager,
		opener:   opener,
		factory:  factory,
		dao:      dao,
	}
}

// startDate is 2007-12-03T10:15:30.375Z.
var startDate = time.Date(2007, 12, 3, 10, 15, 30, 375_000_000, time.UTC)

func ptr[T any](v T) *T { return &v }

func unitofworkCatalog(t *testing.T, f Factory) *unitofwork.Catalog {
	t.Helper()
	catalog := unitofwork.NewCatalog()
	require.NoError(t, Register(catalog, f))
	return catalog
}
