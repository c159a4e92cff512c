package handler

import (
	"net/http"

	"github.com/climatelens/climatelens/internal/api/models"
	"github.com/climatelens/climatelens/internal/api/response"
	"github.com/climatelens/climatelens/internal/climate"
	"github.com/climatelens/climatelens/internal/geocode"
	"github.com/climatelens/climatelens/internal/session"
)

// SessionHandler applies pin interactions to a client-held session.
type SessionHandler struct {
	geocoder geocode.Geocoder
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(geocoder geocode.Geocoder) *SessionHandler {
	return &SessionHandler{geocoder: geocoder}
}

// Pin handles POST /v1/session/pin. The session travels in the request and
// the next one is returned; the server keeps nothing.
func (h *SessionHandler) Pin(w http.ResponseWriter, r *http.Request) {
	var input models.PinRequest
	if !decodeJSON(w, r, &input) {
		return
	}
	if err := climate.ValidateStruct(input.Action); err != nil {
		response.FromError(w, r, err)
		return
	}

	current := session.New()
	if input.Session != nil {
		current = *input.Session
		if err := current.Validate(); err != nil {
			response.BadRequest(w, r, "session marker is invalid", []models.FieldError{
				{Field: "session.marker", Message: err.Error()},
			})
			return
		}
	}

	out := models.PinResponse{Session: current}
	action := input.Action
	switch action.Type {
	case models.PinActionManual:
		next, err := current.SetManual(action.Latitude, action.Longitude)
		if err != nil {
			response.BadRequest(w, r, "coordinates are out of range", []models.FieldError{
				{Field: "action", Message: err.Error()},
			})
			return
		}
		out.Session = next
	case models.PinActionSearch:
		next, notice := current.Search(r.Context(), h.geocoder, action.Query)
		out.Session, out.Notice = next, &notice
	case models.PinActionClick:
		out.Session, out.Notice = current.Click(r.Context(), h.geocoder, action.Latitude, action.Longitude)
	}

	response.JSON(w, r, http.StatusOK, out)
}
