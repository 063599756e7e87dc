package unitofwork

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/handlescope/internal/redact"
)

// Middleware runs each request as one unit of work: the handle is opened
// before the handler runs and closed after it returns, and every proxy call
// made with the request context shares it. Requests that cannot get a
// handle are answered with 503 Service Unavailable.
func Middleware(m *HandleManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := m.Run(r.Context(), func(ctx context.Context) error {
				next.ServeHTTP(w, r.WithContext(ctx))
				return nil
			})
			if err == nil {
				return
			}

			var connErr *ConnectionError
			if errors.As(err, &connErr) {
				m.log(r.Context()).Error("no handle for request",
					slog.String("path", r.URL.Path),
					redact.Err(err))
				http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
				return
			}
			// The response is already written; only the close failed.
			m.log(r.Context()).Error("failed to release request handle",
				slog.String("path", r.URL.Path),
				redact.Err(err))
		})
	}
}
