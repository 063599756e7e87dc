package unitofwork

import (
	"context"
	"log/slog"

	"github.com/phrazzld/handlescope/internal/redact"
	"github.com/phrazzld/handlescope/internal/store"
)

// CallScope is one invocation boundary. It remembers whether its call opened
// the handle or borrowed one opened further up the same unit of work.
type CallScope struct {
	manager *HandleManager
	ctx     context.Context
	ec      ExecutionContext
	handle  *Handle
	opener  bool
	ended   bool
}

// Handle returns the handle the call runs against.
func (s *CallScope) Handle() *Handle { return s.handle }

// Session is shorthand for s.Handle().Session.
func (s *CallScope) Session() store.Session { return s.handle.Session }

// ExecutionContext returns the unit of work the scope belongs to.
func (s *CallScope) ExecutionContext() ExecutionContext { return s.ec }

// IsOpener reports whether this call opened the handle.
func (s *CallScope) IsOpener() bool { return s.opener }

// End releases the scope and returns primary with any release failure
// attached as a suppressed error. Only the first call has an effect.
func (s *CallScope) End(primary error) error {
	if s.ended {
		return primary
	}
	s.ended = true
	return store.WithSuppressed(primary, s.manager.Release(s.ctx, s.ec, s.opener))
}

// Begin starts a call scope for the unit of work ctx is bound to, binding
// ctx to a new ExecutionContext first if it has none. The returned context
// must be passed to nested calls so they share the handle. Every successful
// Begin must be paired with exactly one End.
func (m *HandleManager) Begin(ctx context.Context) (context.Context, *CallScope, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, ec := ensureExecutionContext(ctx)

	h, opener, err := m.Acquire(ctx, ec)
	if err != nil {
		return ctx, nil, err
	}
	return ctx, &CallScope{manager: m, ctx: ctx, ec: ec, handle: h, opener: opener}, nil
}

// Run executes fn as one unit of work: every proxy call fn makes with the
// context it receives shares a single handle, closed when fn returns or
// panics. Panics are re-raised after the handle is released.
func (m *HandleManager) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, scope, err := m.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			if relErr := scope.End(nil); relErr != nil {
				m.log(ctx).Error("failed to release handle after panic",
					redact.Err(relErr),
					slog.Any("panic", p))
			}
			// ALLOW-PANIC: propagating caught panic after release
			panic(p)
		}
	}()

	return scope.End(fn(ctx))
}

// Current returns the handle open for the unit of work ctx is bound to.
// It never opens one.
func (m *HandleManager) Current(ctx context.Context) (*Handle, bool) {
	ec, ok := FromContext(ctx)
	if !ok {
		return nil, false
	}
	return m.Lookup(ec)
}
