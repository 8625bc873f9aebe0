// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"

	"github.com/ManuGH/daytime/internal/health"
)

const (
	adminRateWindow = time.Minute
	adminSpanName   = "daytimed.admin"
)

// NewAdminHandler builds the admin router: liveness, readiness and Prometheus metrics.
// rateLimit is requests per minute per client IP; 0 disables limiting.
func NewAdminHandler(hm *health.Manager, rateLimit int) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	if rateLimit > 0 {
		r.Use(rateLimitByIP(rateLimit, adminRateWindow))
	}

	r.Get("/healthz", hm.ServeHealth)
	r.Get("/readyz", hm.ServeReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Spans go to the global provider, which is a noop unless telemetry is enabled.
	return otelhttp.NewHandler(r, adminSpanName,
		otelhttp.WithTracerProvider(otel.GetTracerProvider()),
		otelhttp.WithFilter(shouldTraceAdmin),
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			return operation + " " + r.Method + " " + r.URL.Path
		}),
	)
}

// shouldTraceAdmin skips scrapes, which would otherwise dominate the traces.
func shouldTraceAdmin(r *http.Request) bool {
	return r.URL.Path != "/metrics"
}

func rateLimitByIP(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		limit,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate_limit_exceeded"}`))
		}),
	)
}
