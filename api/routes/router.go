package routes

import (
	"net/http"

	"github.com/angelmondragon/packfinderz-pos/api/handlers"
	"github.com/angelmondragon/packfinderz-pos/pkg/config"
	"github.com/angelmondragon/packfinderz-pos/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter exposes the register agent's ops surface: liveness,
// readiness, and Prometheus metrics. The cart and checkout flows are
// driven by the register session, not this router.
func NewRouter(cfg *config.Config, logg *logger.Logger, registry *prometheus.Registry, deps map[string]handlers.Pinger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handlers.Healthz(cfg, logg))
	r.Get("/readyz", handlers.Readyz(logg, deps))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return r
}
