package handler

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/climatelens/climatelens/internal/api/middleware"
	"github.com/climatelens/climatelens/internal/api/models"
	"github.com/climatelens/climatelens/internal/api/response"
	"github.com/climatelens/climatelens/internal/chart"
	"github.com/climatelens/climatelens/internal/climate"
	"github.com/climatelens/climatelens/internal/dashboard"
	"github.com/climatelens/climatelens/internal/forecast"
)

// SeriesHandler runs time series queries.
type SeriesHandler struct {
	service *dashboard.Service
	logger  zerolog.Logger
}

// NewSeriesHandler creates a new SeriesHandler.
func NewSeriesHandler(service *dashboard.Service, logger zerolog.Logger) *SeriesHandler {
	return &SeriesHandler{service: service, logger: logger}
}

// Query handles POST /v1/series:query - run the pipeline and return the report.
func (h *SeriesHandler) Query(w http.ResponseWriter, r *http.Request) {
	var input models.SeriesRequest
	if !decodeJSON(w, r, &input) {
		return
	}

	report, err := h.service.Run(r.Context(), h.toRequest(input))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, report)
}

// Chart handles POST /v1/series:chart - run the pipeline and draw it as PNG.
// The optional ?parameter= query restricts the chart to one code.
func (h *SeriesHandler) Chart(w http.ResponseWriter, r *http.Request) {
	var input models.SeriesRequest
	if !decodeJSON(w, r, &input) {
		return
	}
	if code := r.URL.Query().Get("parameter"); code != "" {
		input.Parameters = []string{code}
	}

	report, err := h.service.Run(r.Context(), h.toRequest(input))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	err = chart.Series(&buf, chart.SeriesInput{
		Table:     report.Table,
		Forecasts: report.Forecasts,
		Catalog:   h.service.Catalog(),
	})
	if errors.Is(err, chart.ErrNotEnoughData) {
		traceID := middleware.GetRequestID(r.Context())
		response.Error(w, r, models.NewProblem(models.ProblemTypeValidation, "Not enough data", http.StatusUnprocessableEntity, traceID).
			WithDetail("the selected range has fewer than two periods with values"))
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.PNG(w, r, buf.Bytes())
}

func (h *SeriesHandler) toRequest(in models.SeriesRequest) dashboard.Request {
	res := climate.Resolution(in.Resolution)
	if res == "" {
		res = climate.ResolutionDaily
	}
	params := in.Parameters
	if len(params) == 0 {
		params = h.service.Catalog().DefaultParameters()
	}
	return dashboard.Request{
		Query: climate.Query{
			Latitude:   in.Latitude,
			Longitude:  in.Longitude,
			Start:      in.Start,
			End:        in.End,
			Parameters: params,
			Resolution: res,
			Community:  in.Community,
		},
		Strategy: forecast.Kind(in.Strategy),
		Horizon:  in.Horizon,
		Narrate:  in.Narrate,
	}
}

func (h *SeriesHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	logFailure(h.logger, r, err)
	response.FromError(w, r, err)
}

// logFailure logs errors that are not the client's fault.
func logFailure(logger zerolog.Logger, r *http.Request, err error) {
	var validation *climate.ValidationError
	if errors.As(err, &validation) {
		return
	}
	logger.Error().
		Err(err).
		Str("request_id", middleware.GetRequestID(r.Context())).
		Str("path", r.URL.Path).
		Msg("request failed")
}
