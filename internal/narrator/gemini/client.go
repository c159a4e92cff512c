// Package gemini is a minimal client for the Gemini generateContent API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/climatelens/climatelens/internal/telemetry"
)

const (
	// ProviderName identifies this upstream in metrics.
	ProviderName = "gemini"

	// DefaultBaseURL is the Generative Language API root.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultModel is used when ClientConfig.Model is empty.
	DefaultModel = "gemini-1.5-flash"
)

// ErrNoCandidates is returned when the response carries no text.
var ErrNoCandidates = errors.New("gemini returned no candidates")

// ClientConfig holds configuration for the Gemini client.
type ClientConfig struct {
	// APIKey is the Generative Language API key (required).
	APIKey string

	// BaseURL is the API root (optional, defaults to DefaultBaseURL).
	BaseURL string

	// Model is the model name (optional, defaults to DefaultModel).
	Model string

	// Timeout bounds one request. Default: 30 seconds.
	Timeout time.Duration

	// Metrics records call duration and outcome (optional).
	Metrics *telemetry.ProviderMetrics

	Logger zerolog.Logger
}

// Client calls generateContent for a single text prompt.
type Client struct {
	http    *resty.Client
	model   string
	metrics *telemetry.ProviderMetrics
	logger  zerolog.Logger
}

// NewClient creates a new Gemini client. Requests are never retried.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("x-goog-api-key", cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout).
		SetRetryCount(0)

	return &Client{
		http:    httpClient,
		model:   cfg.Model,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gemini api error %d %s: %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("gemini api error %d: %s", e.StatusCode, e.Message)
}

// Generate sends prompt as a single user turn and returns the text parts of
// the first candidate joined together.
func (c *Client) Generate(ctx context.Context, prompt string) (text string, err error) {
	start := time.Now()
	defer func() {
		c.metrics.RecordRequest(ProviderName, "generate", time.Since(start), err)
	}()

	body := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	}

	var result generateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		Post("/models/" + c.model + ":generateContent")
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}

	if !resp.IsSuccess() {
		return "", parseError(resp)
	}

	if len(result.Candidates) == 0 {
		return "", ErrNoCandidates
	}

	var b strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	if b.Len() == 0 {
		return "", ErrNoCandidates
	}

	c.logger.Debug().Dur("took", time.Since(start)).Int("chars", b.Len()).Msg("gemini response")
	return b.String(), nil
}

func parseError(resp *resty.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode()}

	var envelope struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body(), &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Message = envelope.Error.Message
		apiErr.Status = envelope.Error.Status
		return apiErr
	}

	apiErr.Message = resp.Status()
	return apiErr
}

// Gemini API request/response structures.

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}
