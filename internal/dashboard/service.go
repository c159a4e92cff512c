// Package dashboard runs the query pipeline: validate, fetch, summarize,
// forecast and narrate. It also compares two locations side by side.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/climatelens/climatelens/internal/climate"
	"github.com/climatelens/climatelens/internal/forecast"
	"github.com/climatelens/climatelens/internal/narrator"
)

// Notice codes attached to a Report.
const (
	NoticeForecastOmitted = "forecast_omitted"
	NoticeInsightDegraded = "insight_degraded"
	NoticeParameterNoData = "parameter_no_data"
)

// Fetcher retrieves an observation table for a query.
type Fetcher interface {
	Fetch(ctx context.Context, q climate.Query) (*climate.Table, error)
}

// Request is one dashboard query.
type Request struct {
	Query climate.Query `json:"query"`
	// Strategy selects the forecast. Empty means trend.
	Strategy forecast.Kind `json:"strategy,omitempty"`
	// Horizon overrides the strategy's default number of periods.
	Horizon int  `json:"horizon,omitempty" validate:"gte=0,lte=366"`
	Narrate bool `json:"narrate"`
}

// Notice is a non-fatal condition met while building a report.
type Notice struct {
	Code      string `json:"code"`
	Parameter string `json:"parameter,omitempty"`
	Message   string `json:"message"`
}

// Report is the full result of one query.
type Report struct {
	Query     climate.Query     `json:"query"`
	Table     *climate.Table    `json:"table"`
	Summaries []climate.Summary `json:"summaries"`
	Forecasts []forecast.Series `json:"forecasts"`
	Insight   *narrator.Insight `json:"insight,omitempty"`
	Notices   []Notice          `json:"notices"`
}

// Config holds configuration for the Service.
type Config struct {
	Fetcher Fetcher

	// Narrator is optional. Without one, Narrate requests get the local
	// fallback text.
	Narrator *narrator.Narrator

	Catalog climate.Catalog

	// Community fills queries that leave it empty. Default: AG.
	Community string

	// Now is the clock used for comparisons. Default: time.Now.
	Now func() time.Time

	Logger zerolog.Logger
}

// Service runs dashboard pipelines. It keeps no state between calls.
type Service struct {
	fetcher   Fetcher
	narrator  *narrator.Narrator
	catalog   climate.Catalog
	community string
	now       func() time.Time
	logger    zerolog.Logger
}

// NewService creates a new dashboard service.
func NewService(cfg Config) *Service {
	if cfg.Catalog == nil {
		cfg.Catalog = climate.DefaultCatalog()
	}
	if cfg.Community == "" {
		cfg.Community = climate.DefaultCommunity
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Narrator == nil {
		cfg.Narrator = narrator.New(narrator.Config{Catalog: cfg.Catalog, Logger: cfg.Logger})
	}
	return &Service{
		fetcher:   cfg.Fetcher,
		narrator:  cfg.Narrator,
		catalog:   cfg.Catalog,
		community: cfg.Community,
		now:       cfg.Now,
		logger:    cfg.Logger,
	}
}

// Catalog returns the parameter catalog in use.
func (s *Service) Catalog() climate.Catalog {
	return s.catalog
}

// Run executes the pipeline for req.
//
// Validation failures return *climate.ValidationError. Fetch failures
// (*climate.TransportError, *climate.UpstreamMessageError,
// *climate.ShapeError) abort the run. Everything else degrades into a Notice.
func (s *Service) Run(ctx context.Context, req Request) (*Report, error) {
	if req.Query.Community == "" {
		req.Query.Community = s.community
	}
	if err := req.Query.Validate(); err != nil {
		return nil, err
	}
	if err := climate.ValidateStruct(req); err != nil {
		return nil, err
	}

	strategy, err := forecast.New(req.Strategy, req.Horizon)
	if err != nil {
		return nil, &climate.ValidationError{Fields: []climate.FieldError{{
			Field:   "strategy",
			Message: err.Error(),
			Code:    "oneof",
		}}}
	}

	log := s.logger.With().
		Float64("lat", req.Query.Latitude).
		Float64("lon", req.Query.Longitude).
		Str("resolution", string(req.Query.Resolution)).
		Logger()

	table, err := s.fetcher.Fetch(ctx, req.Query)
	if err != nil {
		log.Warn().Err(err).Msg("fetch failed")
		return nil, err
	}

	report := &Report{
		Query:     req.Query,
		Table:     table,
		Summaries: climate.SummarizeAll(table),
		Forecasts: make([]forecast.Series, 0, len(table.Parameters)),
		Notices:   []Notice{},
	}

	for _, code := range table.Parameters {
		if climate.Summarize(table, code) == nil {
			report.Notices = append(report.Notices, Notice{
				Code:      NoticeParameterNoData,
				Parameter: code,
				Message:   fmt.Sprintf("%s has no data for the selected period", s.catalog.Label(code)),
			})
		}

		series, err := strategy.Forecast(table, code)
		var insufficient *forecast.InsufficientDataError
		switch {
		case errors.As(err, &insufficient):
			report.Notices = append(report.Notices, Notice{
				Code:      NoticeForecastOmitted,
				Parameter: code,
				Message:   insufficient.Error(),
			})
		case err != nil:
			log.Warn().Err(err).Str("parameter", code).Msg("forecast failed")
			report.Notices = append(report.Notices, Notice{
				Code:      NoticeForecastOmitted,
				Parameter: code,
				Message:   err.Error(),
			})
		}
		report.Forecasts = append(report.Forecasts, series)
	}

	if req.Narrate {
		insight := s.narrator.Narrate(ctx, narrator.Input{
			Latitude:  req.Query.Latitude,
			Longitude: req.Query.Longitude,
			Table:     table,
			Summaries: report.Summaries,
			Forecasts: report.Forecasts,
		})
		if insight.Notice != "" {
			report.Notices = append(report.Notices, Notice{Code: NoticeInsightDegraded, Message: insight.Notice})
		}
		report.Insight = &insight
	}

	log.Debug().Int("rows", len(table.Rows)).Int("notices", len(report.Notices)).Msg("dashboard run complete")
	return report, nil
}
