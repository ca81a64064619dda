package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/traceid"
)

// NewOpsRouter mounts the operational endpoints:
//
//	GET /healthz  liveness
//	GET /readyz   readiness over checks
//	GET /metrics  Prometheus exposition from gatherer
func NewOpsRouter(log *slog.Logger, gatherer prometheus.Gatherer, checks ...Check) http.Handler {
	if log == nil {
		log = logger.Noop()
	}

	r := chi.NewRouter()
	r.Use(traceid.Middleware, middleware.Recoverer)

	r.Get("/healthz", HealthCheckHandler(log))
	r.Get("/readyz", HealthCheckHandler(log, checks...))
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return r
}
