package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/pii-vault/internal/metrics"
)

func TestMetricsServer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.Default()

	provider, err := metrics.NewProvider("piivault")
	require.NoError(t, err)

	server := NewMetricsServer("127.0.0.1", 0, logger, provider)

	t.Run("serves prometheus metrics", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

		server.GetHandler().ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("serves health check", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

		server.GetHandler().ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "healthy")
	})

	t.Run("without a provider the metrics route is absent", func(t *testing.T) {
		bare := NewMetricsServer("127.0.0.1", 0, logger, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

		bare.GetHandler().ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
