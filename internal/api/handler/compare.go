package handler

import (
	"bytes"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/climatelens/climatelens/internal/api/response"
	"github.com/climatelens/climatelens/internal/chart"
	"github.com/climatelens/climatelens/internal/dashboard"
)

// CompareHandler compares two locations.
type CompareHandler struct {
	service *dashboard.Service
	logger  zerolog.Logger
}

// NewCompareHandler creates a new CompareHandler.
func NewCompareHandler(service *dashboard.Service, logger zerolog.Logger) *CompareHandler {
	return &CompareHandler{service: service, logger: logger}
}

// Compare handles POST /v1/locations:compare. With ?format=png the result
// is drawn as a bar chart instead of returned as JSON.
func (h *CompareHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var input dashboard.CompareRequest
	if !decodeJSON(w, r, &input) {
		return
	}

	format := r.URL.Query().Get("format")
	if format != "" && format != "json" && format != "png" {
		response.BadRequest(w, r, "format must be json or png", nil)
		return
	}

	cmp, err := h.service.Compare(r.Context(), input)
	if err != nil {
		logFailure(h.logger, r, err)
		response.FromError(w, r, err)
		return
	}

	if format == "png" {
		var buf bytes.Buffer
		if err := chart.Comparison(&buf, cmp); err != nil {
			logFailure(h.logger, r, err)
			response.InternalError(w, r, "could not render comparison chart")
			return
		}
		response.PNG(w, r, buf.Bytes())
		return
	}
	response.JSON(w, r, http.StatusOK, cmp)
}
