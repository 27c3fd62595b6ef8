package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "churn",
			Subsystem: "dashboard",
			Name:      "http_requests_total",
			Help:      "Dashboard and API requests by route pattern and page kind.",
		},
		[]string{"method", "route", "surface", "status_code"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "churn",
			Subsystem: "dashboard",
			Name:      "http_request_duration_seconds",
			Help:      "Latency of dashboard and API requests.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "route", "surface"},
	)
)

// requestSurface tells the JSON API apart from the HTML pages and the operational endpoints.
func requestSurface(route string) string {
	switch {
	case strings.HasPrefix(route, "/api/"):
		return "api"
	case route == "/health" || route == "/metrics":
		return "ops"
	case route == "unknown":
		return "unmatched"
	default:
		return "page"
	}
}

// PrometheusMetricsMiddleware records request counts and durations labelled by chi route pattern,
// so /api/v1/predictions?limit=5 and /api/v1/predictions share a series.
func PrometheusMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		surface := requestSurface(route)

		statusCode := ww.Status()
		if statusCode == 0 {
			statusCode = http.StatusOK
		}

		httpRequestDurationSeconds.WithLabelValues(r.Method, route, surface).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(r.Method, route, surface, strconv.Itoa(statusCode)).Inc()
	})
}
