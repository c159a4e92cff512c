// Package api provides the HTTP API for ClimateLens.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/climatelens/climatelens/internal/api/handler"
	"github.com/climatelens/climatelens/internal/api/middleware"
	"github.com/climatelens/climatelens/internal/climate"
	"github.com/climatelens/climatelens/internal/dashboard"
	"github.com/climatelens/climatelens/internal/geocode"
	"github.com/climatelens/climatelens/internal/provider/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version   string
	BuildTime string
	Logger    zerolog.Logger
	Metrics   *middleware.Metrics

	// Registry backs /ops/status. RequiredProviders fail readiness while
	// their circuit is open.
	Registry          *resilience.Registry
	RequiredProviders []string

	Service  *dashboard.Service
	Geocoder geocode.Geocoder
	Catalog  climate.Catalog

	RequireTLS bool
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware - order matters
	r.Use(middleware.RequestID) // Generate/propagate request ID first
	r.Use(middleware.Tracing())
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))
	r.Use(middleware.ContentTypeJSON)

	catalog := cfg.Catalog
	if catalog == nil && cfg.Service != nil {
		catalog = cfg.Service.Catalog()
	}

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Registry, cfg.RequiredProviders...)
	metadataHandler := handler.NewMetadataHandler(catalog)
	seriesHandler := handler.NewSeriesHandler(cfg.Service, cfg.Logger)
	compareHandler := handler.NewCompareHandler(cfg.Service, cfg.Logger)
	geocodeHandler := handler.NewGeocodeHandler(cfg.Geocoder, cfg.Logger)
	sessionHandler := handler.NewSessionHandler(cfg.Geocoder)

	// Every call below the metadata routes reaches an upstream.
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		r.Route("/metadata", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/parameters", metadataHandler.ListParameters)
		})

		r.Group(func(r chi.Router) {
			r.Use(expensiveRateLimit)
			r.Use(middleware.RequireJSON)

			r.Post("/series:query", seriesHandler.Query)
			r.Post("/series:chart", seriesHandler.Chart)
			r.Post("/locations:compare", compareHandler.Compare)

			r.Get("/geocode/search", geocodeHandler.Search)
			r.Get("/geocode/reverse", geocodeHandler.Reverse)

			r.Post("/session/pin", sessionHandler.Pin)
		})
	})

	return r
}
