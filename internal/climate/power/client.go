// Package power is a client for the NASA POWER point time-series API.
package power

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/climatelens/climatelens/internal/climate"
	"github.com/climatelens/climatelens/internal/provider/resilience"
	"github.com/climatelens/climatelens/internal/telemetry"
)

const (
	// ProviderName identifies this upstream in the registry and metrics.
	ProviderName = "power"

	// DefaultBaseURL is the POWER API root.
	DefaultBaseURL = "https://power.larc.nasa.gov/api"

	// maxBodySize bounds how much of a response is read.
	maxBodySize = 32 << 20
)

// ClientConfig holds configuration for the POWER client.
type ClientConfig struct {
	// BaseURL is the API root (optional, defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults and no retries.
	HTTPClient *resilience.Client

	// Metrics records call duration and outcome (optional).
	Metrics *telemetry.ProviderMetrics

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client fetches point time series from NASA POWER.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	metrics    *telemetry.ProviderMetrics
	logger     zerolog.Logger
}

// NewClient creates a new POWER client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Fetch issues one request for q and returns the normalized table.
//
// Dates are sent as given; callers validate the query first. Errors are
// *climate.TransportError, *climate.UpstreamMessageError or
// *climate.ShapeError.
func (c *Client) Fetch(ctx context.Context, q climate.Query) (table *climate.Table, err error) {
	start := time.Now()
	defer func() {
		c.metrics.RecordRequest(ProviderName, "fetch", time.Since(start), err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pointURL(q), http.NoBody)
	if err != nil {
		return nil, &climate.TransportError{Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &climate.TransportError{Err: fmt.Errorf("executing request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &climate.TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &climate.TransportError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status code: %d: %s", resp.StatusCode, snippet(body)),
		}
	}

	table, err = decode(body)
	if err != nil {
		c.logger.Warn().Err(err).
			Float64("lat", q.Latitude).
			Float64("lon", q.Longitude).
			Str("parameters", q.ParameterList()).
			Msg("power response rejected")
		return nil, err
	}
	table.Resolution = q.Resolution

	c.logger.Debug().
		Int("rows", len(table.Rows)).
		Str("parameters", q.ParameterList()).
		Dur("took", time.Since(start)).
		Msg("power series fetched")

	return table, nil
}

func (c *Client) pointURL(q climate.Query) string {
	v := url.Values{}
	v.Set("parameters", q.ParameterList())
	v.Set("community", q.CommunityOrDefault())
	v.Set("longitude", strconv.FormatFloat(q.Longitude, 'f', -1, 64))
	v.Set("latitude", strconv.FormatFloat(q.Latitude, 'f', -1, 64))
	v.Set("start", q.Start)
	v.Set("end", q.End)
	v.Set("format", "JSON")
	return fmt.Sprintf("%s/temporal/%s/point?%s", c.baseURL, q.Resolution, v.Encode())
}

// POWER API response structures. Parameter data is kept raw until the shape
// is known so that a bad value is reported as a shape problem rather than a
// transport one.

type pointResponse struct {
	Messages   []json.RawMessage          `json:"messages"`
	Properties *pointProperties           `json:"properties"`
	Parameter  json.RawMessage            `json:"parameter"`
	Parameters map[string]parameterDetail `json:"parameters"`
}

type pointProperties struct {
	Parameter json.RawMessage `json:"parameter"`
}

type parameterDetail struct {
	Units    string `json:"units"`
	LongName string `json:"longname"`
}

func decode(body []byte) (*climate.Table, error) {
	var resp pointResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, &climate.TransportError{StatusCode: http.StatusOK, Err: fmt.Errorf("decoding response: %w", err)}
		}
		return nil, &climate.ShapeError{Reason: "response envelope", Err: err}
	}

	if len(resp.Messages) > 0 {
		return nil, &climate.UpstreamMessageError{
			Messages: messageTexts(resp.Messages),
			Raw:      json.RawMessage(body),
		}
	}

	raw, shape := selectParameterBlock(resp)
	if raw == nil {
		return nil, &climate.ShapeError{Reason: "neither properties.parameter nor parameter present"}
	}

	var data climate.ParameterData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, &climate.ShapeError{Reason: shape, Err: err}
	}

	table, err := climate.Normalize(data)
	if err != nil {
		return nil, err
	}

	for _, code := range table.Parameters {
		if detail, ok := resp.Parameters[code]; ok && detail.Units != "" {
			if table.Units == nil {
				table.Units = make(map[string]string, len(table.Parameters))
			}
			table.Units[code] = detail.Units
		}
	}

	return table, nil
}

// selectParameterBlock picks the nested parameter map, trying the GeoJSON
// feature layout first and the flat layout second.
func selectParameterBlock(resp pointResponse) (json.RawMessage, string) {
	if resp.Properties != nil && present(resp.Properties.Parameter) {
		return resp.Properties.Parameter, "properties.parameter"
	}
	if present(resp.Parameter) {
		return resp.Parameter, "parameter"
	}
	return nil, ""
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// messageTexts renders each upstream message as text. Messages are usually
// strings; objects are rendered as compact JSON.
func messageTexts(raw []json.RawMessage) []string {
	out := make([]string, 0, len(raw))
	for _, m := range raw {
		var s string
		if err := json.Unmarshal(m, &s); err == nil {
			out = append(out, s)
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, m); err != nil {
			out = append(out, string(m))
			continue
		}
		out = append(out, buf.String())
	}
	return out
}

func snippet(body []byte) string {
	const limit = 256
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
