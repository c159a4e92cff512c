package models

import (
	"encoding/json"
	"net/http"
)

// Problem is an RFC 7807 error body, sent as application/problem+json.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// TraceID is the request id, for correlating with logs.
	TraceID string `json:"traceId"`

	// Errors lists field validation failures.
	Errors []FieldError `json:"errors,omitempty"`

	// Messages carries the upstream's own messages for upstream errors.
	Messages []string `json:"messages,omitempty"`
}

// FieldError is a validation failure on one request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Problem types.
const (
	ProblemTypeValidation      = "https://climatelens.dev/problems/validation-error"
	ProblemTypeUpstreamMessage = "https://climatelens.dev/problems/upstream-message"
	ProblemTypeTransport       = "https://climatelens.dev/problems/upstream-unavailable"
	ProblemTypeDataFormat      = "https://climatelens.dev/problems/data-format-error"
	ProblemTypeNotFound        = "https://climatelens.dev/problems/not-found"
	ProblemTypeTooManyRequests = "https://climatelens.dev/problems/too-many-requests"
	ProblemTypeInternal        = "https://climatelens.dev/problems/internal-error"
	ProblemTypeUnavailable     = "https://climatelens.dev/problems/service-unavailable"
)

// NewProblem creates a new Problem with the given parameters.
func NewProblem(problemType, title string, status int, traceID string) *Problem {
	return &Problem{
		Type:    problemType,
		Title:   title,
		Status:  status,
		TraceID: traceID,
	}
}

// WithDetail adds a detail message to the Problem.
func (p *Problem) WithDetail(detail string) *Problem {
	p.Detail = detail
	return p
}

// WithInstance adds the request path to the Problem.
func (p *Problem) WithInstance(instance string) *Problem {
	p.Instance = instance
	return p
}

// WithErrors adds field errors to the Problem.
func (p *Problem) WithErrors(errors []FieldError) *Problem {
	p.Errors = errors
	return p
}

// Write writes the Problem as JSON to the ResponseWriter.
func (p *Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.Header().Set("X-Request-Id", p.TraceID)
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// NewBadRequest creates a 400 validation problem.
func NewBadRequest(traceID, detail string, errors []FieldError) *Problem {
	p := NewProblem(ProblemTypeValidation, "Validation error", http.StatusBadRequest, traceID)
	p.Detail = detail
	p.Errors = errors
	return p
}

// NewUpstreamMessage creates a 422 problem for a query the data service
// answered with error messages instead of data.
func NewUpstreamMessage(traceID string, messages []string) *Problem {
	p := NewProblem(ProblemTypeUpstreamMessage, "Upstream rejected the query", http.StatusUnprocessableEntity, traceID)
	p.Detail = "The climate data service returned messages instead of data."
	p.Messages = messages
	return p
}

// NewTransport creates a 502 problem for an unreachable or failing upstream.
func NewTransport(traceID, detail string) *Problem {
	p := NewProblem(ProblemTypeTransport, "Upstream unavailable", http.StatusBadGateway, traceID)
	p.Detail = detail
	return p
}

// NewDataFormat creates a 502 problem for an upstream answer of unexpected shape.
func NewDataFormat(traceID, detail string) *Problem {
	p := NewProblem(ProblemTypeDataFormat, "Unexpected data format", http.StatusBadGateway, traceID)
	p.Detail = detail
	return p
}

// NewNotFound creates a 404 Not Found problem.
func NewNotFound(traceID, detail string) *Problem {
	p := NewProblem(ProblemTypeNotFound, "Not found", http.StatusNotFound, traceID)
	p.Detail = detail
	return p
}

// NewTooManyRequests creates a 429 Too Many Requests problem.
func NewTooManyRequests(traceID, detail string) *Problem {
	p := NewProblem(ProblemTypeTooManyRequests, "Too many requests", http.StatusTooManyRequests, traceID)
	p.Detail = detail
	return p
}

// NewInternalError creates a 500 Internal Server Error problem.
func NewInternalError(traceID, detail string) *Problem {
	p := NewProblem(ProblemTypeInternal, "Internal server error", http.StatusInternalServerError, traceID)
	p.Detail = detail
	return p
}

// NewServiceUnavailable creates a 503 Service Unavailable problem.
func NewServiceUnavailable(traceID, detail string) *Problem {
	p := NewProblem(ProblemTypeUnavailable, "Service unavailable", http.StatusServiceUnavailable, traceID)
	p.Detail = detail
	return p
}
