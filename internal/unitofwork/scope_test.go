package unitofwork_test

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/handlescope/internal/store"
	"github.com/phrazzld/handlescope/internal/unitofwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeginBindsExecutionContext(t *testing.T) {
	m := newManager(t, &fakeOpener{})

	ctx, scope, err := m.Begin(context.Background())
	require.NoError(t, err)

	ec, ok := unitofwork.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, ec, scope.ExecutionContext())
	assert.True(t, scope.IsOpener())

	_, nested, err := m.Begin(ctx)
	require.NoError(t, err)
	assert.False(t, nested.IsOpener())
	assert.Same(t, scope.Handle(), nested.Handle())
	assert.Same(t, scope.Session(), nested.Session())

	require.NoError(t, nested.End(nil))
	assert.Equal(t, 1, m.OpenHandles())
	require.NoError(t, scope.End(nil))
	assert.Equal(t, 0, m.OpenHandles())
}

func TestBeginKeepsExistingExecutionContext(t *testing.T) {
	m := newManager(t, &fakeOpener{})
	ec := unitofwork.NewExecutionContext()

	ctx, scope, err := m.Begin(unitofwork.WithExecutionContext(context.Background(), ec))
	require.NoError(t, err)
	defer scope.End(nil)

	got, _ := unitofwork.FromContext(ctx)
	assert.Equal(t, ec, got)
}

func TestEndIsIdempotent(t *testing.T) {
	opener := &fakeOpener{}
	m := newManager(t, opener)
	_, scope, err := m.Begin(context.Background())
	require.NoError(t, err)

	require.NoError(t, scope.End(nil))
	require.NoError(t, scope.End(nil))

	assert.Equal(t, 1, opener.closes())
}

func TestRun(t *testing.T) {
	failed := errors.New("failed")
	closeFailed := errors.New("close failed")

	tests := []struct {
		name          string
		closeErr      error
		fnErr         error
		wantPrimary   error
		wantRelease   bool
		wantSupressed int
	}{
		{name: "success"},
		{name: "function error", fnErr: failed, wantPrimary: failed},
		{name: "release error only", closeErr: closeFailed, wantRelease: true},
		{name: "function and release error", fnErr: failed, closeErr: closeFailed,
			wantPrimary: failed, wantRelease: true, wantSupressed: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opener := &fakeOpener{closeErr: tt.closeErr}
			m := newManager(t, opener)

			err := m.Run(context.Background(), func(ctx context.Context) error {
				_, ok := m.Current(ctx)
				assert.True(t, ok)
				return tt.fnErr
			})

			if tt.wantPrimary == nil && !tt.wantRelease {
				assert.NoError(t, err)
			}
			if tt.wantPrimary != nil {
				assert.True(t, store.Primary(err) == tt.wantPrimary)
			}
			if tt.wantRelease {
				assert.ErrorIs(t, err, unitofwork.ErrRelease)
			}
			assert.Len(t, store.Suppressed(err), tt.wantSupressed)
			assert.Equal(t, 1, opener.closes())
			assert.Equal(t, 0, m.OpenHandles())
		})
	}
}

func TestRunPanicReleases(t *testing.T) {
	opener := &fakeOpener{}
	m := newManager(t, opener)

	assert.PanicsWithValue(t, "boom", func() {
		_ = m.Run(context.Background(), func(context.Context) error { panic("boom") })
	})
	assert.Equal(t, 1, opener.closes())
	assert.Equal(t, 0, m.OpenHandles())
}

func TestCurrentNeverOpens(t *testing.T) {
	opener := &fakeOpener{}
	m := newManager(t, opener)

	_, ok := m.Current(context.Background())
	assert.False(t, ok)
	_, ok = m.Current(unitofwork.WithExecutionContext(context.Background(), unitofwork.NewExecutionContext()))
	assert.False(t, ok)
	assert.Equal(t, 0, opener.opens())
}
