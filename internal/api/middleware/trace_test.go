package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/handlescope/internal/api/shared"
	"github.com/phrazzld/handlescope/internal/platform/logger"
	"github.com/stretchr/testify/assert"
)

func TestTraceMiddleware(t *testing.T) {
	log, buf := logger.GetTestLogger(t)

	var traceID string
	h := chimw.RequestID(NewTraceMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("handled")
		assert.NotEmpty(t, logger.RequestID(r.Context()))
	})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/tasks/1", nil))

	assert.Len(t, traceID, 2*shared.TraceIDLength)
	logger.AssertLogContains(t, buf, traceID)
	logger.AssertLogContains(t, buf, "handled")
}
