package http

import (
	"net/http"
)

// MetricsHandler exposes the Prometheus exposition handler
type MetricsHandler struct {
	handler http.Handler
}

// NewMetricsHandler wraps the exposition handler; nil answers 503
func NewMetricsHandler(handler http.Handler) *MetricsHandler {
	return &MetricsHandler{handler: handler}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.handler == nil {
		http.Error(w, "metrics not initialized", http.StatusServiceUnavailable)
		return
	}
	h.handler.ServeHTTP(w, r)
}
