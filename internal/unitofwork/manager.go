package unitofwork

import (
	"context"
	"log/slog"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"
	"github.com/phrazzld/handlescope/internal/platform/logger"
	"github.com/phrazzld/handlescope/internal/redact"
	"github.com/phrazzld/handlescope/internal/store"
	"github.com/puzpuzpuz/xsync/v3"
)

// Handle is an open session owned by exactly one ExecutionContext.
type Handle struct {
	ID       uuid.UUID
	Context  ExecutionContext
	Session  store.Session
	OpenedAt time.Time
}

// HandleManager maps each ExecutionContext to at most one open Handle and
// governs its open/reuse/close lifecycle. It is safe for concurrent use by
// distinct execution contexts. Calls for the same context must not overlap;
// that is the caller's obligation and is not enforced here.
type HandleManager struct {
	opener  store.Opener
	handles *xsync.MapOf[ExecutionContext, *Handle]
	logger  *slog.Logger
	now     func() time.Time

	metrics         *metrics.Set
	opened          *metrics.Counter
	reused          *metrics.Counter
	closed          *metrics.Counter
	openFailures    *metrics.Counter
	releaseFailures *metrics.Counter
}

// ManagerOption configures a HandleManager.
type ManagerOption func(*HandleManager)

// WithLogger sets the logger used for lifecycle events.
// Loggers carried in call contexts take precedence.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *HandleManager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithMetricsSet registers the manager's metrics in set instead of a
// private one.
func WithMetricsSet(set *metrics.Set) ManagerOption {
	return func(m *HandleManager) {
		if set != nil {
			m.metrics = set
		}
	}
}

// NewHandleManager creates a manager opening sessions through opener.
func NewHandleManager(opener store.Opener, opts ...ManagerOption) *HandleManager {
	m := &HandleManager{
		opener:  opener,
		handles: xsync.NewMapOf[ExecutionContext, *Handle](),
		logger:  slog.Default(),
		now:     time.Now,
		metrics: metrics.NewSet(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.opened = m.metrics.NewCounter("handlescope_handles_opened_total")
	m.reused = m.metrics.NewCounter("handlescope_handles_reused_total")
	m.closed = m.metrics.NewCounter("handlescope_handles_closed_total")
	m.openFailures = m.metrics.NewCounter("handlescope_handle_open_failures_total")
	m.releaseFailures = m.metrics.NewCounter("handlescope_handle_release_failures_total")
	m.metrics.NewGauge("handlescope_handles_open", func() float64 {
		return float64(m.handles.Size())
	})
	return m
}

// Metrics returns the set holding the manager's counters.
func (m *HandleManager) Metrics() *metrics.Set {
	return m.metrics
}

// Acquire returns the handle open for ec, opening one if there is none.
// isOpener reports whether this call opened it; only an opener may release.
// On failure no mapping for ec is left behind.
func (m *HandleManager) Acquire(ctx context.Context, ec ExecutionContext) (h *Handle, isOpener bool, err error) {
	if current, ok := m.handles.Load(ec); ok {
		m.reused.Inc()
		m.log(ctx).Debug("reusing handle",
			slog.String("execution_context", string(ec)),
			slog.String("handle_id", current.ID.String()))
		return current, false, nil
	}

	if err := ctx.Err(); err != nil {
		m.openFailures.Inc()
		return nil, false, &ConnectionError{Context: ec, Err: err}
	}

	session, err := m.opener.Open(ctx)
	if err != nil {
		m.openFailures.Inc()
		m.log(ctx).Error("failed to open handle",
			slog.String("execution_context", string(ec)),
			redact.Err(err))
		return nil, false, &ConnectionError{Context: ec, Err: err}
	}

	h = &Handle{
		ID:       uuid.New(),
		Context:  ec,
		Session:  session,
		OpenedAt: m.now(),
	}

	if existing, loaded := m.handles.LoadOrStore(ec, h); loaded {
		// Overlapping calls for one context broke the caller contract.
		// Keep the first handle and give back the one just opened.
		m.log(ctx).Warn("concurrent acquire for execution context, discarding extra handle",
			slog.String("execution_context", string(ec)))
		if cerr := session.Close(); cerr != nil {
			m.releaseFailures.Inc()
			m.log(ctx).Error("failed to close discarded handle",
				slog.String("execution_context", string(ec)),
				redact.Err(cerr))
		}
		m.reused.Inc()
		return existing, false, nil
	}

	m.opened.Inc()
	m.log(ctx).Debug("opened handle",
		slog.String("execution_context", string(ec)),
		slog.String("handle_id", h.ID.String()))
	return h, true, nil
}

// Release ends one Acquire. An opener closes the handle and removes the
// mapping whatever the outcome of its call; a borrower does nothing.
// A close failure is returned as a *ReleaseError; the mapping is removed
// regardless. ctx only supplies the logger; a cancelled ctx still closes.
func (m *HandleManager) Release(ctx context.Context, ec ExecutionContext, isOpener bool) error {
	if !isOpener {
		return nil
	}

	h, ok := m.handles.LoadAndDelete(ec)
	if !ok {
		return nil
	}

	if err := h.Session.Close(); err != nil {
		m.releaseFailures.Inc()
		m.log(ctx).Error("failed to close handle",
			slog.String("execution_context", string(ec)),
			slog.String("handle_id", h.ID.String()),
			redact.Err(err))
		return &ReleaseError{Context: ec, HandleID: h.ID, Err: err}
	}

	m.closed.Inc()
	m.log(ctx).Debug("closed handle",
		slog.String("execution_context", string(ec)),
		slog.String("handle_id", h.ID.String()),
		slog.Duration("held_for", m.now().Sub(h.OpenedAt)))
	return nil
}

// Lookup returns the handle currently open for ec without opening one.
func (m *HandleManager) Lookup(ec ExecutionContext) (*Handle, bool) {
	return m.handles.Load(ec)
}

// OpenHandles reports how many execution contexts currently hold a handle.
func (m *HandleManager) OpenHandles() int {
	return m.handles.Size()
}

func (m *HandleManager) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, m.logger)
}
