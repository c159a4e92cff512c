package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/climatelens/climatelens/internal/api/models"
	"github.com/climatelens/climatelens/internal/api/response"
	"github.com/climatelens/climatelens/internal/geocode"
)

// GeocodeHandler resolves place names and coordinates.
type GeocodeHandler struct {
	geocoder geocode.Geocoder
	logger   zerolog.Logger
}

// NewGeocodeHandler creates a new GeocodeHandler.
func NewGeocodeHandler(geocoder geocode.Geocoder, logger zerolog.Logger) *GeocodeHandler {
	return &GeocodeHandler{geocoder: geocoder, logger: logger}
}

// Search handles GET /v1/geocode/search?q=.
func (h *GeocodeHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		response.BadRequest(w, r, "query parameter q is required", []models.FieldError{
			{Field: "q", Message: "is required", Code: "required"},
		})
		return
	}

	place, err := h.geocoder.Search(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, place)
}

// Reverse handles GET /v1/geocode/reverse?lat=&lon=.
func (h *GeocodeHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	var fields []models.FieldError
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		fields = append(fields, models.FieldError{Field: "lat", Message: "must be a number between -90 and 90"})
	}
	lon, err := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err != nil || lon < -180 || lon > 180 {
		fields = append(fields, models.FieldError{Field: "lon", Message: "must be a number between -180 and 180"})
	}
	if len(fields) > 0 {
		response.BadRequest(w, r, "invalid coordinates", fields)
		return
	}

	place, err := h.geocoder.Reverse(r.Context(), lat, lon)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, place)
}

func (h *GeocodeHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if !errors.Is(err, geocode.ErrNotFound) {
		logFailure(h.logger, r, err)
	}
	response.FromError(w, r, err)
}
