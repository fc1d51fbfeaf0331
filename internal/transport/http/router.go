package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"coursegate/internal/platform/metrics"
	"coursegate/internal/platform/middleware"
)

// NewRouter wires the public surface: one workflow endpoint, liveness, and
// metrics. The validator may be nil when no signing key is configured; bearer
// tokens are then ignored entirely.
func NewRouter(h *Handler, validator middleware.TokenValidator, logger *slog.Logger, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", h.HandleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		if m != nil {
			r.Use(middleware.Latency(m))
		}
		r.Use(middleware.BearerAuth(validator, logger))
		r.Post("/api/workflow", h.HandleWorkflow)
	})

	return r
}
