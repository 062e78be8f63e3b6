package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-billing/internal/billing"
	"github.com/noah-isme/backend-billing/internal/health"
	"github.com/noah-isme/backend-billing/internal/obs"
	"github.com/noah-isme/backend-billing/internal/ratelimit"
	"github.com/noah-isme/backend-billing/internal/security"
)

type routerDeps struct {
	Logger         zerolog.Logger
	Billing        *billing.Handler
	Health         health.Handler
	RateLimit      ratelimit.Handler
	HTTPMetrics    *obs.HTTPMetrics
	Metrics        http.Handler
	Tracing        bool
	AllowedOrigins []string
	BodyLimit      int64
	HSTSMaxAge     int
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if d.Tracing {
		r.Use(obs.TracingMiddleware)
	}
	if d.HTTPMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: d.HTTPMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: d.Logger}.Middleware)
	r.Use(security.Headers{HSTSMaxAge: d.HSTSMaxAge}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(d.AllowedOrigins),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:         3600,
	}))

	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics)
	}
	r.Get("/health/live", d.Health.Live)
	r.Get("/health/ready", d.Health.Ready)
	r.Get("/", d.Billing.Info)

	r.Route("/api/v1/bills", func(b chi.Router) {
		b.Get("/health", d.Billing.Health)
		b.With(
			d.RateLimit.Middleware,
			security.BodyLimit{Max: d.BodyLimit}.Middleware,
		).Post("/calculate", d.Billing.Calculate)
	})
	return r
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func metricsHandler(enabled bool) http.Handler {
	if !enabled {
		return nil
	}
	return promhttp.Handler()
}
