package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aradsms/churn_dashboard/internal/churn_service/middleware"
)

// RouterConfig carries the settings NewRouter needs.
type RouterConfig struct {
	RequestTimeout time.Duration
	// APIJWTSecret enables bearer authentication on /api/v1 when set.
	APIJWTSecret string
}

// NewRouter assembles pages, the JSON API, health and metrics endpoints.
func NewRouter(cfg RouterConfig, dashboard *DashboardHandler, api *APIHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(PrometheusMetricsMiddleware)
	if cfg.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "Churn dashboard is healthy"})
	})
	r.Handle("/metrics", promhttp.Handler())

	dashboard.RegisterRoutes(r)

	r.Route("/api/v1", func(v1Router chi.Router) {
		if cfg.APIJWTSecret != "" {
			v1Router.Use(middleware.BearerAuthMiddleware(cfg.APIJWTSecret, logger))
		}
		api.RegisterRoutes(v1Router)
	})
	return r
}
