// Package main provides the entrypoint for the ClimateLens API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/climatelens/climatelens/internal/api"
	"github.com/climatelens/climatelens/internal/api/middleware"
	"github.com/climatelens/climatelens/internal/climate/power"
	"github.com/climatelens/climatelens/internal/config"
	"github.com/climatelens/climatelens/internal/dashboard"
	"github.com/climatelens/climatelens/internal/geocode/nominatim"
	"github.com/climatelens/climatelens/internal/narrator"
	"github.com/climatelens/climatelens/internal/narrator/gemini"
	"github.com/climatelens/climatelens/internal/provider/resilience"
	"github.com/climatelens/climatelens/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "climatelens-api"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting ClimateLens API")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	catalog, err := cfg.Catalog()
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.CatalogPath).Msg("failed to load parameter catalog")
	}

	ctx := context.Background()
	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Env,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TelemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.TelemetryEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}
	providerMetrics, err := telemetry.NewProviderMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize provider metrics")
		os.Exit(1)
	}

	registry := resilience.NewRegistry()

	powerHTTP := resilience.DefaultClientConfig(power.ProviderName)
	powerHTTP.Timeout = cfg.PowerTimeout
	powerHTTP.Registry = registry
	powerHTTP.Logger = log
	powerClient := power.NewClient(power.ClientConfig{
		BaseURL:    cfg.PowerBaseURL,
		HTTPClient: resilience.NewClient(powerHTTP),
		Metrics:    providerMetrics,
		Logger:     log,
	})

	geoHTTP := resilience.DefaultClientConfig(nominatim.ProviderName)
	geoHTTP.Registry = registry
	geoHTTP.Logger = log
	geocoder := nominatim.NewClient(nominatim.ClientConfig{
		BaseURL:    cfg.NominatimBaseURL,
		UserAgent:  cfg.NominatimUserAgent,
		HTTPClient: resilience.NewClient(geoHTTP),
		Metrics:    providerMetrics,
		Logger:     log,
	})

	narr := narrator.New(narrator.Config{
		Generator: newGenerator(cfg, providerMetrics, log),
		Catalog:   catalog,
		Logger:    log,
	})

	service := dashboard.NewService(dashboard.Config{
		Fetcher:   powerClient,
		Narrator:  narr,
		Catalog:   catalog,
		Community: cfg.PowerCommunity,
		Logger:    log,
	})

	router := api.NewRouter(api.RouterConfig{
		Version:           Version,
		BuildTime:         BuildTime,
		Logger:            log,
		Metrics:           metrics,
		Registry:          registry,
		RequiredProviders: []string{power.ProviderName},
		Service:           service,
		Geocoder:          geocoder,
		Catalog:           catalog,
		RequireTLS:        cfg.RequireTLS,
	})

	// Upstream calls can take up to PowerTimeout, plus narration.
	writeTimeout := cfg.PowerTimeout + 45*time.Second

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

// newGenerator returns the Gemini client, or nil when no key is configured
// so every insight uses the local fallback.
func newGenerator(cfg config.Config, metrics *telemetry.ProviderMetrics, log zerolog.Logger) narrator.TextGenerator {
	if cfg.GeminiAPIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY not set - insights will use the local summary")
		return nil
	}
	return gemini.NewClient(gemini.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		Metrics: metrics,
		Logger:  log,
	})
}
