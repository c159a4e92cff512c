// Package response writes JSON, PNG and problem responses.
package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/climatelens/climatelens/internal/api/middleware"
	"github.com/climatelens/climatelens/internal/api/models"
	"github.com/climatelens/climatelens/internal/climate"
	"github.com/climatelens/climatelens/internal/geocode"
	"github.com/climatelens/climatelens/internal/provider/resilience"
)

// JSON writes a JSON response with the given status code.
// Includes X-Request-Id header for correlation.
func JSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	setRequestID(w, r)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// PNG writes a 200 response carrying an image.
func PNG(w http.ResponseWriter, r *http.Request, data []byte) {
	setRequestID(w, r)
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func setRequestID(w http.ResponseWriter, r *http.Request) {
	if requestID := middleware.GetRequestID(r.Context()); requestID != "" {
		w.Header().Set("X-Request-Id", requestID)
	}
}

// Error writes a Problem+JSON error response.
func Error(w http.ResponseWriter, r *http.Request, problem *models.Problem) {
	problem.Instance = r.URL.Path
	problem.Write(w)
}

// BadRequest writes a 400 Bad Request error response.
func BadRequest(w http.ResponseWriter, r *http.Request, detail string, errors []models.FieldError) {
	traceID := middleware.GetRequestID(r.Context())
	Error(w, r, models.NewBadRequest(traceID, detail, errors))
}

// NotFound writes a 404 Not Found error response.
func NotFound(w http.ResponseWriter, r *http.Request, detail string) {
	traceID := middleware.GetRequestID(r.Context())
	Error(w, r, models.NewNotFound(traceID, detail))
}

// TooManyRequests writes a 429 Too Many Requests error response.
func TooManyRequests(w http.ResponseWriter, r *http.Request, detail string) {
	traceID := middleware.GetRequestID(r.Context())
	Error(w, r, models.NewTooManyRequests(traceID, detail))
}

// InternalError writes a 500 Internal Server Error response.
func InternalError(w http.ResponseWriter, r *http.Request, detail string) {
	traceID := middleware.GetRequestID(r.Context())
	Error(w, r, models.NewInternalError(traceID, detail))
}

// ServiceUnavailable writes a 503 Service Unavailable error response.
func ServiceUnavailable(w http.ResponseWriter, r *http.Request, detail string) {
	traceID := middleware.GetRequestID(r.Context())
	Error(w, r, models.NewServiceUnavailable(traceID, detail))
}

// FromError maps a service error to its problem response:
//
//	*climate.ValidationError      400 with field errors
//	*climate.UpstreamMessageError 422 with the upstream messages
//	*climate.TransportError       502
//	*climate.ShapeError           502 data-format-error
//	resilience.ErrCircuitOpen     503
//	geocode.ErrNotFound           404
//	*geocode.Error                502
//
// Anything else is a 500 with a generic detail.
func FromError(w http.ResponseWriter, r *http.Request, err error) {
	traceID := middleware.GetRequestID(r.Context())

	var validation *climate.ValidationError
	var upstream *climate.UpstreamMessageError
	var transport *climate.TransportError
	var shape *climate.ShapeError
	var lookup *geocode.Error

	switch {
	case errors.As(err, &validation):
		fields := make([]models.FieldError, 0, len(validation.Fields))
		for _, f := range validation.Fields {
			fields = append(fields, models.FieldError{Field: f.Field, Message: f.Message, Code: f.Code})
		}
		Error(w, r, models.NewBadRequest(traceID, "request has invalid fields", fields))
	case errors.As(err, &upstream):
		Error(w, r, models.NewUpstreamMessage(traceID, upstream.Messages))
	case errors.Is(err, resilience.ErrCircuitOpen):
		Error(w, r, models.NewServiceUnavailable(traceID, "an upstream service is temporarily unavailable, try again later"))
	case errors.As(err, &transport):
		Error(w, r, models.NewTransport(traceID, transport.Error()))
	case errors.As(err, &shape):
		Error(w, r, models.NewDataFormat(traceID, shape.Error()))
	case errors.Is(err, geocode.ErrNotFound):
		Error(w, r, models.NewNotFound(traceID, err.Error()))
	case errors.As(err, &lookup):
		Error(w, r, models.NewTransport(traceID, lookup.Error()))
	default:
		Error(w, r, models.NewInternalError(traceID, "an unexpected error occurred"))
	}
}
