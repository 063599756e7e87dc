package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/phrazzld/handlescope/internal/api"
	"github.com/phrazzld/handlescope/internal/config"
	"github.com/phrazzld/handlescope/internal/platform/sqldb"
	"github.com/phrazzld/handlescope/internal/tasks"
	"github.com/phrazzld/handlescope/internal/timecodec"
	"github.com/phrazzld/handlescope/internal/unitofwork"
)

// application holds the shared dependencies and releases them on cleanup.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// metrics holds the handle manager's counters, served at /metrics.
	metrics *metrics.Set

	manager  *unitofwork.HandleManager
	provider *unitofwork.Provider
	catalog  *unitofwork.Catalog

	taskService tasks.Service
}

// newApplication wires the unit of work and the task service on top of db.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB, dialect sqldb.Dialect) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	codec, err := newCodec(cfg.UnitOfWork)
	if err != nil {
		return nil, err
	}

	app.metrics = metrics.NewSet()
	app.manager = unitofwork.NewHandleManager(
		sqldb.NewOpener(db, cfg.Database.OpenTimeout),
		unitofwork.WithLogger(logger.With(slog.String("component", "handle_manager"))),
		unitofwork.WithMetricsSet(app.metrics),
	)

	factory := tasks.Factory{Dialect: dialect, Codec: codec, Shape: timecodec.Offset}
	app.catalog = unitofwork.NewCatalog()
	if err := tasks.Register(app.catalog, factory); err != nil {
		return nil, fmt.Errorf("failed to register task DAO: %w", err)
	}

	registry := unitofwork.NewRegistry(unitofwork.TagKinds(cfg.UnitOfWork.KindTag), app.catalog)
	app.provider = unitofwork.NewProvider(app.manager, registry)

	// Proxies are built up front so malformed data-access types fail at
	// startup; the task service runs on the one found here.
	proxies, err := app.provider.GetProxiesForNamespace(cfg.UnitOfWork.Namespaces)
	if err != nil {
		return nil, fmt.Errorf("failed to build data-access proxies: %w", err)
	}
	logger.Info("data-access proxies ready",
		slog.Any("namespaces", cfg.UnitOfWork.Namespaces),
		slog.Int("count", len(proxies)))

	dao, err := tasks.DAOFrom(proxies)
	if err != nil {
		return nil, err
	}
	app.taskService, err = tasks.NewService(app.provider, factory, logger, tasks.WithDAO(dao))
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	logger.Info("application initialized",
		slog.String("time_zone", codec.Location().String()))
	return app, nil
}

// newCodec returns the timestamp codec for the configured zone.
func newCodec(cfg config.UnitOfWorkConfig) (timecodec.Codec, error) {
	if cfg.TimeZone == "" {
		return timecodec.New(nil), nil
	}
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return timecodec.Codec{}, fmt.Errorf("invalid time zone %q: %w", cfg.TimeZone, err)
	}
	return timecodec.New(loc), nil
}

func (app *application) router() http.Handler {
	return api.NewRouter(api.RouterDeps{
		Tasks:   api.NewTaskHandler(app.taskService, app.logger),
		Manager: app.manager,
		Logger:  app.logger,
	})
}

// cleanup closes the database once the server has stopped.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
}
