package api

import (
	"log/slog"
	"net/http"

	"github.com/V4T54L/brokerdesk/internal/adapter/api/handler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewAdminRouter creates the router for the admin server: Prometheus metrics and
// a dependency-aware health check.
func NewAdminRouter(gatherer prometheus.Gatherer, checks map[string]handler.HealthCheck, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	adminHandler := handler.NewAdminHandler(checks, logger)

	mux.HandleFunc("GET /health", adminHandler.HealthCheck)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return mux
}
