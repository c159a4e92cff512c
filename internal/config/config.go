// Package config reads process configuration from the environment and the
// optional parameter catalog file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/climatelens/climatelens/internal/climate"
)

// Config holds the application configuration.
type Config struct {
	Port string
	Env  string

	// RequireTLS rejects plain-HTTP requests behind a TLS-terminating proxy.
	RequireTLS bool

	TelemetryEnabled bool
	OTLPEndpoint     string

	PowerBaseURL   string
	PowerCommunity string
	PowerTimeout   time.Duration

	NominatimBaseURL   string
	NominatimUserAgent string

	// GeminiAPIKey enables model insights when set.
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	// CatalogPath points to a YAML parameter catalog. Empty uses the
	// built-in catalog.
	CatalogPath string
}

// Load reads a .env file when present and then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv creates a Config from environment variables.
func FromEnv() (Config, error) {
	timeout, err := time.ParseDuration(getEnvOrDefault("POWER_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid POWER_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return Config{}, fmt.Errorf("invalid POWER_TIMEOUT: must be positive, got %s", timeout)
	}

	return Config{
		Port:               getEnvOrDefault("APP_PORT", "8080"),
		Env:                getEnvOrDefault("APP_ENV", "development"),
		RequireTLS:         os.Getenv("REQUIRE_TLS") == "true",
		TelemetryEnabled:   os.Getenv("OTEL_ENABLED") == "true",
		OTLPEndpoint:       getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		PowerBaseURL:       os.Getenv("POWER_BASE_URL"),
		PowerCommunity:     strings.ToUpper(getEnvOrDefault("POWER_COMMUNITY", climate.DefaultCommunity)),
		PowerTimeout:       timeout,
		NominatimBaseURL:   os.Getenv("NOMINATIM_BASE_URL"),
		NominatimUserAgent: os.Getenv("NOMINATIM_USER_AGENT"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        os.Getenv("GEMINI_MODEL"),
		GeminiBaseURL:      os.Getenv("GEMINI_BASE_URL"),
		CatalogPath:        os.Getenv("PARAMETER_CATALOG"),
	}, nil
}

// IsProduction reports whether APP_ENV is "production".
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Catalog returns the catalog at CatalogPath, or the built-in one.
func (c Config) Catalog() (climate.Catalog, error) {
	if c.CatalogPath == "" {
		return climate.DefaultCatalog(), nil
	}
	return LoadCatalog(c.CatalogPath)
}

type catalogFile struct {
	Parameters []climate.ParameterInfo `yaml:"parameters"`
}

// LoadCatalog reads a YAML parameter catalog of the form
//
//	parameters:
//	  - code: T2M
//	    label: Air temperature at 2 meters
//	    unit: °C
func LoadCatalog(path string) (climate.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes catalog YAML. Codes must be present and unique.
func ParseCatalog(data []byte) (climate.Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(f.Parameters) == 0 {
		return nil, errors.New("parse catalog: no parameters defined")
	}

	seen := make(map[string]bool, len(f.Parameters))
	for i, p := range f.Parameters {
		if p.Code == "" {
			return nil, fmt.Errorf("parse catalog: parameter %d has no code", i)
		}
		if seen[p.Code] {
			return nil, fmt.Errorf("parse catalog: duplicate code %q", p.Code)
		}
		seen[p.Code] = true
	}
	return climate.Catalog(f.Parameters), nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
