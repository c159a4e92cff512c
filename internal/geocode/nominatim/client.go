// Package nominatim implements geocode.Geocoder on the OpenStreetMap
// Nominatim API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/climatelens/climatelens/internal/geocode"
	"github.com/climatelens/climatelens/internal/provider/resilience"
	"github.com/climatelens/climatelens/internal/telemetry"
)

const (
	// ProviderName identifies this upstream in the registry and metrics.
	ProviderName = "nominatim"

	// DefaultBaseURL is the public Nominatim instance.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"

	// DefaultUserAgent is sent when none is configured. The public instance
	// rejects requests without one.
	DefaultUserAgent = "climatelens/1.0"
)

// ClientConfig holds configuration for the Nominatim client.
type ClientConfig struct {
	// BaseURL is the API root (optional, defaults to DefaultBaseURL).
	BaseURL string

	// UserAgent identifies the application (optional).
	UserAgent string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults and no retries.
	HTTPClient *resilience.Client

	// Metrics records call duration and outcome (optional).
	Metrics *telemetry.ProviderMetrics

	Logger zerolog.Logger
}

// Client is a Nominatim API client.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *resilience.Client
	metrics    *telemetry.ProviderMetrics
	logger     zerolog.Logger
}

// NewClient creates a new Nominatim client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: httpClient,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Search returns the best match for query.
func (c *Client) Search(ctx context.Context, query string) (place *geocode.Place, err error) {
	start := time.Now()
	defer func() { c.metrics.RecordRequest(ProviderName, "search", time.Since(start), err) }()

	v := url.Values{}
	v.Set("q", query)
	v.Set("format", "jsonv2")
	v.Set("limit", "1")

	var results []nominatimPlace
	if err := c.get(ctx, "/search?"+v.Encode(), &results); err != nil {
		return nil, &geocode.Error{Op: "search", Err: err}
	}
	if len(results) == 0 {
		return nil, &geocode.Error{Op: "search", Err: geocode.ErrNotFound}
	}

	place, err = results[0].toPlace()
	if err != nil {
		return nil, &geocode.Error{Op: "search", Err: err}
	}
	c.logger.Debug().Str("query", query).Str("name", place.Name).Msg("geocode search")
	return place, nil
}

// Reverse returns the address nearest to lat/lon. The returned place keeps
// the requested coordinates.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (place *geocode.Place, err error) {
	start := time.Now()
	defer func() { c.metrics.RecordRequest(ProviderName, "reverse", time.Since(start), err) }()

	v := url.Values{}
	v.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	v.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	v.Set("format", "jsonv2")

	var result nominatimPlace
	if err := c.get(ctx, "/reverse?"+v.Encode(), &result); err != nil {
		return nil, &geocode.Error{Op: "reverse", Err: err}
	}
	if result.Error != "" || result.DisplayName == "" {
		return nil, &geocode.Error{Op: "reverse", Err: geocode.ErrNotFound}
	}

	return &geocode.Place{Name: result.DisplayName, Latitude: lat, Longitude: lon}, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// Nominatim returns coordinates as strings.
type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

func (p nominatimPlace) toPlace() (*geocode.Place, error) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing lat %q: %w", p.Lat, err)
	}
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing lon %q: %w", p.Lon, err)
	}
	return &geocode.Place{Name: p.DisplayName, Latitude: lat, Longitude: lon}, nil
}
