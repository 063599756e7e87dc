package unitofwork

import (
	"context"

	"github.com/google/uuid"
)

// ExecutionContext identifies one logical unit of work, typically one
// request or one task. Handles are scoped to it.
type ExecutionContext string

type execCtxKey struct{}

// NewExecutionContext returns a fresh, unique ExecutionContext.
func NewExecutionContext() ExecutionContext {
	return ExecutionContext(uuid.NewString())
}

// WithExecutionContext returns a copy of ctx bound to ec. Every proxy call
// made with the returned context (or contexts derived from it) shares the
// handle of ec.
func WithExecutionContext(ctx context.Context, ec ExecutionContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, execCtxKey{}, ec)
}

// FromContext returns the ExecutionContext ctx is bound to, if any.
func FromContext(ctx context.Context) (ExecutionContext, bool) {
	if ctx == nil {
		return "", false
	}
	ec, ok := ctx.Value(execCtxKey{}).(ExecutionContext)
	return ec, ok && ec != ""
}

// ensureExecutionContext returns ctx unchanged if it is already bound,
// otherwise a copy bound to a new ExecutionContext.
func ensureExecutionContext(ctx context.Context) (context.Context, ExecutionContext) {
	if ec, ok := FromContext(ctx); ok {
		return ctx, ec
	}
	ec := NewExecutionContext()
	return WithExecutionContext(ctx, ec), ec
}
