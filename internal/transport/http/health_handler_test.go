package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"niftycli/internal/config"
	"niftycli/internal/infrastructure"
	"niftycli/internal/services"
)

type stubSnapshots struct {
	snap *services.Snapshot
}

func (s stubSnapshots) Snapshot() (*services.Snapshot, error) {
	if s.snap == nil {
		return nil, services.ErrNoSnapshot
	}
	return s.snap, nil
}

func newHealthHandler(t *testing.T, snap *services.Snapshot) *HealthHandler {
	dir := t.TempDir()
	logger := infrastructure.NewTestLogger(nil)
	paths := config.PathsConfig{Source: config.SourceRecords, RecordsDir: dir, SeriesDir: dir}
	return NewHealthHandler(services.NewHealthService("test", paths, stubSnapshots{snap: snap}, logger), logger)
}

func TestHealthHandler_HealthCheck(t *testing.T) {
	h := newHealthHandler(t, nil)
	rec := httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestHealthHandler_ReadinessCheck(t *testing.T) {
	t.Run("not ready without snapshot", func(t *testing.T) {
		h := newHealthHandler(t, nil)
		rec := httptest.NewRecorder()
		h.ReadinessCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "not_ready")
	})

	t.Run("ready with snapshot", func(t *testing.T) {
		h := newHealthHandler(t, &services.Snapshot{RunID: "r"})
		rec := httptest.NewRecorder()
		h.ReadinessCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"ready"`)
	})
}

func TestHealthHandler_Version(t *testing.T) {
	h := newHealthHandler(t, nil)
	rec := httptest.NewRecorder()
	h.Version(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":"test"`)
}

func TestMetricsHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewMetricsHandler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("nifty_up 1\n"))
	})
	rec = httptest.NewRecorder()
	NewMetricsHandler(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nifty_up 1\n", rec.Body.String())
}
