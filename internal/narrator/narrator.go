// Package narrator turns summary statistics into a short natural-language
// insight using a generative text service, degrading to a deterministic
// rule-based text when the service is unavailable.
package narrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/climatelens/climatelens/internal/climate"
	"github.com/climatelens/climatelens/internal/forecast"
)

// TextGenerator produces text for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Source tells where an insight came from.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// User-facing notices for a degraded insight.
const (
	NoticeQuota       = "Insight service quota exceeded. Please try again later."
	NoticeUnavailable = "Could not load AI insights. Showing a local analysis instead."
)

// Insight is the narration shown next to the data.
type Insight struct {
	Text   string `json:"text"`
	Source Source `json:"source"`
	// Notice explains why a fallback was used. Empty for model output.
	Notice string `json:"notice,omitempty"`
}

// NarrationServiceError wraps any failure of the text generator.
type NarrationServiceError struct {
	// Quota is true when the service reported rate or quota exhaustion.
	Quota bool
	Err   error
}

func (e *NarrationServiceError) Error() string {
	if e.Quota {
		return "narration service quota exceeded: " + e.Err.Error()
	}
	return "narration service error: " + e.Err.Error()
}

func (e *NarrationServiceError) Unwrap() error {
	return e.Err
}

// classify wraps err, flagging quota exhaustion by HTTP 429 or a "quota"
// mention in the message.
func classify(err error) *NarrationServiceError {
	var nse *NarrationServiceError
	if errors.As(err, &nse) {
		return nse
	}
	msg := strings.ToLower(err.Error())
	return &NarrationServiceError{
		Quota: strings.Contains(msg, "quota") || strings.Contains(msg, "429"),
		Err:   err,
	}
}

// Config holds configuration for the Narrator.
type Config struct {
	// Generator is the text service. When nil every insight is a fallback.
	Generator TextGenerator

	// Catalog supplies labels and units. Default: climate.DefaultCatalog().
	Catalog climate.Catalog

	// Timeout bounds one generator call. Default: 30 seconds.
	Timeout time.Duration

	Logger zerolog.Logger
}

// Narrator builds insights for dashboard results.
type Narrator struct {
	generator TextGenerator
	catalog   climate.Catalog
	timeout   time.Duration
	logger    zerolog.Logger
}

// New creates a Narrator.
func New(cfg Config) *Narrator {
	if cfg.Catalog == nil {
		cfg.Catalog = climate.DefaultCatalog()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Narrator{
		generator: cfg.Generator,
		catalog:   cfg.Catalog,
		timeout:   cfg.Timeout,
		logger:    cfg.Logger,
	}
}

// Input is everything the narrator looks at for one query.
type Input struct {
	Latitude  float64
	Longitude float64
	Table     *climate.Table
	Summaries []climate.Summary
	Forecasts []forecast.Series
}

// Narrate asks the generator for an insight on in. It never fails: generator
// errors are logged and replaced by Fallback.
func (n *Narrator) Narrate(ctx context.Context, in Input) Insight {
	return n.Complete(ctx, BuildPrompt(in.Summaries, n.catalog), func() string {
		return LocalSummary(in) + "\n\n" + Fallback(in.Summaries, n.catalog)
	})
}

// Complete sends prompt to the generator and falls back to fallback() on any
// error or an empty answer.
func (n *Narrator) Complete(ctx context.Context, prompt string, fallback func() string) Insight {
	if n.generator == nil {
		return Insight{Text: fallback(), Source: SourceFallback}
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	text, err := n.generator.Generate(ctx, prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty response")
	}
	if err != nil {
		nse := classify(err)
		n.logger.Warn().Err(nse).Bool("quota", nse.Quota).Msg("narration degraded to fallback")

		notice := NoticeUnavailable
		if nse.Quota {
			notice = NoticeQuota
		}
		return Insight{Text: fallback(), Source: SourceFallback, Notice: notice}
	}

	return Insight{Text: strings.TrimSpace(text), Source: SourceModel}
}

// BuildPrompt renders one statistics line per summary inside the analysis
// instruction sent to the generator.
func BuildPrompt(summaries []climate.Summary, catalog climate.Catalog) string {
	var b strings.Builder
	b.WriteString("Analyze this weather data and provide insights:\n")
	for _, s := range summaries {
		unit := catalog.Unit(s.Parameter)
		fmt.Fprintf(&b, "%s: mean=%.2f%s, min=%.2f%s, max=%.2f%s, latest=%s\n",
			catalog.Label(s.Parameter),
			s.Mean, unit,
			s.Min, unit,
			s.Max, unit,
			withUnit(s.Latest, unit),
		)
	}
	b.WriteString("Focus on trends and practical implications.")
	return b.String()
}

// Fallback lists the latest-versus-mean direction of each parameter.
func Fallback(summaries []climate.Summary, catalog climate.Catalog) string {
	if len(summaries) == 0 {
		return "No data available for analysis."
	}
	lines := make([]string, 0, len(summaries))
	for _, s := range summaries {
		current := "n/a"
		if s.Latest.Valid {
			current = fmt.Sprintf("%.1f", s.Latest.Float)
		}
		lines = append(lines, fmt.Sprintf("- %s: %s (Current: %s, Average: %.1f)",
			catalog.Label(s.Parameter), s.Trend(), current, s.Mean))
	}
	return strings.Join(lines, "\n")
}

func withUnit(v climate.Value, unit string) string {
	if !v.Valid {
		return v.String()
	}
	return v.String() + unit
}
