package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/handlescope/internal/platform/logger"
	"github.com/phrazzld/handlescope/internal/redact"
	"github.com/phrazzld/handlescope/internal/store"
	"github.com/phrazzld/handlescope/internal/unitofwork"
)

// ServiceError is returned by Service operations for unexpected failures.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{Operation: operation, Message: message, Err: err}
}

// Service defines task operations. Each runs as a single unit of work, so
// all of its DAO calls share one handle.
type Service interface {
	// Create stores t and returns it as read back from the store.
	Create(ctx context.Context, t Task) (Task, error)

	// Get returns the task with the given ID.
	Get(ctx context.Context, id int64) (Task, error)

	// ListByAssignee returns the tasks of assignee ordered by ID.
	ListByAssignee(ctx context.Context, assignee string) ([]Task, error)

	// Postpone pushes the task's end date back by d and returns the task.
	Postpone(ctx context.Context, id int64, d time.Duration) (Task, error)

	// Import stores all tasks in one transaction; none is stored if any fails.
	Import(ctx context.Context, ts []Task) error

	// Delete removes the task with the given ID.
	Delete(ctx context.Context, id int64) error
}

type serviceImpl struct {
	provider *unitofwork.Provider
	factory  Factory
	dao      *DAO
	now      func() time.Time
	logger   *slog.Logger
}

// ServiceOption configures the Service built by NewService.
type ServiceOption func(*serviceImpl)

// WithDAO makes the service use dao, a proxy obtained from provider,
// instead of building its own.
func WithDAO(dao *DAO) ServiceOption {
	return func(s *serviceImpl) {
		s.dao = dao
	}
}

// NewService creates a Service whose DAO calls go through provider.
func NewService(provider *unitofwork.Provider, factory Factory, logger *slog.Logger, opts ...ServiceOption) (Service, error) {
	if provider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	s := &serviceImpl{
		provider: provider,
		factory:  factory,
		now:      time.Now,
		logger:   logger.With(slog.String("component", "task_service")),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.dao == nil {
		dao, err := unitofwork.Get(provider, factory.Bind)
		if err != nil {
			return nil, fmt.Errorf("failed to create task DAO proxy: %w", err)
		}
		s.dao = dao
	}
	return s, nil
}

func (s *serviceImpl) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, s.logger)
}

func (s *serviceImpl) Create(ctx context.Context, t Task) (Task, error) {
	var created Task
	err := s.provider.Run(ctx, func(ctx context.Context) error {
		if err := s.dao.Insert(ctx, t); err != nil {
			return err
		}
		var err error
		created, err = s.dao.FindByID(ctx, t.ID)
		return err
	})
	if err != nil {
		return Task{}, s.fail(ctx, "create", "failed to create task", err)
	}

	s.log(ctx).Info("task created", slog.Int64("task_id", created.ID))
	return created, nil
}

func (s *serviceImpl) Get(ctx context.Context, id int64) (Task, error) {
	t, err := s.dao.FindByID(ctx, id)
	if err != nil {
		return Task{}, s.fail(ctx, "get", "failed to retrieve task", err)
	}
	return t, nil
}

func (s *serviceImpl) ListByAssignee(ctx context.Context, assignee string) ([]Task, error) {
	if assignee == "" {
		return nil, ErrEmptyAssignee
	}
	ts, err := s.dao.ListByAssignee(ctx, assignee)
	if err != nil {
		return nil, s.fail(ctx, "list", "failed to list tasks", err)
	}
	return ts, nil
}

func (s *serviceImpl) Postpone(ctx context.Context, id int64, d time.Duration) (Task, error) {
	if d <= 0 {
		return Task{}, ErrInvalidPostpone
	}

	var updated Task
	err := s.provider.Run(ctx, func(ctx context.Context) error {
		current, err := s.dao.FindByID(ctx, id)
		if err != nil {
			return err
		}

		end := current.postponed(d, s.now())
		if err := s.dao.UpdateEndDate(ctx, id, &end); err != nil {
			return err
		}

		updated, err = s.dao.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return Task{}, s.fail(ctx, "postpone", "failed to postpone task", err)
	}

	s.log(ctx).Info("task postponed",
		slog.Int64("task_id", id),
		slog.Duration("by", d))
	return updated, nil
}

func (s *serviceImpl) Import(ctx context.Context, ts []Task) error {
	for i, t := range ts {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("task %d: %w", i, err)
		}
	}

	err := s.provider.Run(ctx, func(ctx context.Context) error {
		h, ok := s.provider.Manager().Current(ctx)
		if !ok {
			return fmt.Errorf("no handle open for unit of work")
		}
		return store.RunInTransaction(ctx, h.Session, func(ctx context.Context, tx *sql.Tx) error {
			dao := s.factory.bind(tx)
			for _, t := range ts {
				if err := dao.Insert(ctx, t); err != nil {
					return fmt.Errorf("task %d: %w", t.ID, err)
				}
			}
			return nil
		})
	})
	if err != nil {
		return s.fail(ctx, "import", "failed to import tasks", err)
	}

	s.log(ctx).Info("tasks imported", slog.Int("count", len(ts)))
	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id int64) error {
	if err := s.dao.Delete(ctx, id); err != nil {
		return s.fail(ctx, "delete", "failed to delete task", err)
	}
	return nil
}

// fail logs err and wraps it. Not-found errors are returned as they are;
// callers branch on them.
func (s *serviceImpl) fail(ctx context.Context, op, msg string, err error) error {
	if store.IsNotFoundError(err) {
		return err
	}
	s.log(ctx).Error(msg,
		slog.String("operation", op),
		redact.Err(err))
	return NewServiceError(op, msg, err)
}
