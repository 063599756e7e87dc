package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/phrazzld/handlescope/internal/platform/logger"
	"github.com/phrazzld/handlescope/internal/platform/sqldb"
	"github.com/phrazzld/handlescope/internal/redact"
	"github.com/phrazzld/handlescope/internal/store"
	"github.com/phrazzld/handlescope/internal/timecodec"
	"github.com/phrazzld/handlescope/internal/unitofwork"
)

// DAO is the data-access surface for tasks. Obtain it from a
// unitofwork.Provider so every call runs on the handle of its unit of work.
type DAO struct {
	Insert          func(ctx context.Context, t Task) error                    `dao:"write"`
	FindByID        func(ctx context.Context, id int64) (Task, error)          `dao:"read"`
	FindEndDateByID func(ctx context.Context, id int64) (*time.Time, error)    `dao:"read"`
	ListByAssignee  func(ctx context.Context, assignee string) ([]Task, error) `dao:"read"`
	UpdateEndDate   func(ctx context.Context, id int64, end *time.Time) error  `dao:"write"`
	Delete          func(ctx context.Context, id int64) error                  `dao:"write"`
}

// Factory builds DAOs bound to a session.
type Factory struct {
	Dialect sqldb.Dialect
	Codec   timecodec.Codec
	// Shape qualifies timestamps read back from the store.
	Shape timecodec.Shape
}

// Bind returns a DAO running its statements on s.
func (f Factory) Bind(s store.Session) *DAO {
	return f.bind(s)
}

// Binding returns the unit-of-work binding for the DAO.
func (f Factory) Binding() unitofwork.Binding {
	return unitofwork.Bind(f.Bind)
}

func (f Factory) bind(db store.DBTX) *DAO {
	q := &queries{db: db, f: f}
	return &DAO{
		Insert:          q.insert,
		FindByID:        q.findByID,
		FindEndDateByID: q.findEndDateByID,
		ListByAssignee:  q.listByAssignee,
		UpdateEndDate:   q.updateEndDate,
		Delete:          q.delete,
	}
}

// Register adds the DAO to catalog under Namespace.
func Register(catalog *unitofwork.Catalog, f Factory) error {
	return catalog.Register(Namespace, f.Binding())
}

// DAOFrom returns the DAO proxy among proxies built by
// unitofwork.Provider.GetProxiesForNamespace.
func DAOFrom(proxies map[reflect.Type]any) (*DAO, error) {
	proxy, ok := proxies[reflect.TypeFor[DAO]()]
	if !ok {
		return nil, fmt.Errorf("no task DAO proxy; is namespace %q configured?", Namespace)
	}
	dao, ok := proxy.(*DAO)
	if !ok {
		return nil, fmt.Errorf("task DAO proxy has type %T", proxy)
	}
	return dao, nil
}

type queries struct {
	db store.DBTX
	f  Factory
}

const (
	entityName  = "task"
	taskColumns = "id, assignee, start_date, end_date, comments"
)

// storeError wraps a driver failure of op, translated to the store's error
// vocabulary.
func storeError(op, msg string, err error) error {
	return store.NewStoreError(entityName, op, msg, sqldb.MapError(err))
}

func (q *queries) timestamp() timecodec.Timestamp {
	return timecodec.Timestamp{Shape: q.f.Shape, Codec: q.f.Codec}
}

func (q *queries) arg(v *time.Time) timecodec.Timestamp {
	ts := timecodec.FromPtr(v)
	ts.Codec = q.f.Codec
	return ts
}

func (q *queries) insert(ctx context.Context, t Task) error {
	log := logger.FromContext(ctx)

	if err := t.Validate(); err != nil {
		return store.NewStoreError(entityName, "insert", "invalid task",
			fmt.Errorf("%w: %w", store.ErrInvalidEntity, err))
	}

	_, err := q.db.ExecContext(ctx, q.f.Dialect.Rebind(
		"INSERT INTO tasks ("+taskColumns+") VALUES (?, ?, ?, ?, ?)"),
		t.ID, t.Assignee, q.arg(t.StartDate), q.arg(t.EndDate), nullString(t.Comments))
	if sqldb.IsUniqueViolation(err) {
		log.Debug("task already exists", slog.Int64("task_id", t.ID))
		return storeError("insert", "task already exists", err)
	}
	if err != nil {
		log.Error("failed to insert task",
			slog.Int64("task_id", t.ID),
			redact.Err(err))
		return storeError("insert", "failed to insert task", err)
	}
	return nil
}

func (q *queries) findByID(ctx context.Context, id int64) (Task, error) {
	row := q.db.QueryRowContext(ctx, q.f.Dialect.Rebind(
		"SELECT "+taskColumns+" FROM tasks WHERE id = ?"), id)

	t, err := q.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, fmt.Errorf("%w: %d", store.ErrTaskNotFound, id)
	}
	if err != nil {
		return Task{}, storeError("find", "failed to find task", err)
	}
	return t, nil
}

// findEndDateByID returns nil for a task without an end date and
// store.ErrTaskNotFound for a missing task.
func (q *queries) findEndDateByID(ctx context.Context, id int64) (*time.Time, error) {
	end := q.timestamp()
	err := q.db.QueryRowContext(ctx, q.f.Dialect.Rebind(
		"SELECT end_date FROM tasks WHERE id = ?"), id).Scan(&end)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", store.ErrTaskNotFound, id)
	}
	if err != nil {
		return nil, storeError("find", "failed to find task end date", err)
	}
	return end.Ptr(), nil
}

func (q *queries) listByAssignee(ctx context.Context, assignee string) ([]Task, error) {
	rows, err := q.db.QueryContext(ctx, q.f.Dialect.Rebind(
		"SELECT "+taskColumns+" FROM tasks WHERE assignee = ? ORDER BY id"), assignee)
	if err != nil {
		return nil, storeError("list", "failed to list tasks", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Task
	for rows.Next() {
		t, err := q.scan(rows)
		if err != nil {
			return nil, storeError("list", "failed to scan task", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list", "failed to list tasks", err)
	}
	return out, nil
}

func (q *queries) updateEndDate(ctx context.Context, id int64, end *time.Time) error {
	result, err := q.db.ExecContext(ctx, q.f.Dialect.Rebind(
		"UPDATE tasks SET end_date = ? WHERE id = ?"), q.arg(end), id)
	if err != nil {
		return storeError("update", "failed to update task end date", err)
	}
	if err := sqldb.CheckRowsAffected(result, entityName); err != nil {
		if store.IsNotFoundError(err) {
			return fmt.Errorf("%w: %d", store.ErrTaskNotFound, id)
		}
		return err
	}
	return nil
}

func (q *queries) delete(ctx context.Context, id int64) error {
	result, err := q.db.ExecContext(ctx, q.f.Dialect.Rebind(
		"DELETE FROM tasks WHERE id = ?"), id)
	if err != nil {
		return storeError("delete", "failed to delete task", err)
	}
	if err := sqldb.CheckRowsAffected(result, entityName); err != nil {
		if store.IsNotFoundError(err) {
			return fmt.Errorf("%w: %d", store.ErrTaskNotFound, id)
		}
		return err
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (q *queries) scan(row rowScanner) (Task, error) {
	var (
		t        Task
		comments sql.NullString
	)
	start, end := q.timestamp(), q.timestamp()
	if err := row.Scan(&t.ID, &t.Assignee, &start, &end, &comments); err != nil {
		return Task{}, err
	}
	t.StartDate = start.Ptr()
	t.EndDate = end.Ptr()
	if comments.Valid {
		t.Comments = &comments.String
	}
	return t, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
