package api

import (
	"log/slog"
	"net/http"

	"github.com/VictoriaMetrics/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	apiMiddleware "github.com/phrazzld/handlescope/internal/api/middleware"
	"github.com/phrazzld/handlescope/internal/unitofwork"
)

// RouterDeps holds what NewRouter wires together.
type RouterDeps struct {
	Tasks   *TaskHandler
	Manager *unitofwork.HandleManager
	Logger  *slog.Logger
}

// NewRouter creates the application router. Requests under /api each run
// in one unit of work; /health and /metrics never open a handle.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(deps.Logger))
	r.Use(chimw.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Use(unitofwork.Middleware(deps.Manager))
		deps.Tasks.Routes(r)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			deps.Logger.Error("failed to write health check response", "error", err)
		}
	})

	r.Get("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		metrics.WritePrometheus(w, true)
		deps.Manager.Metrics().WritePrometheus(w)
	})

	return r
}
