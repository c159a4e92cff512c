package climate

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Climate data errors.
var (
	ErrNoParameterData = errors.New("no parameter data in response")
	ErrEmptyParameter  = errors.New("parameter has no periods")
)

// TransportError is a failure reaching the upstream API: network error,
// timeout, non-2xx status or a body that is not valid JSON.
type TransportError struct {
	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("climate api transport error (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("climate api transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UpstreamMessageError is returned when the API answered but flagged
// diagnostic messages. No table is produced; the raw payload is kept.
type UpstreamMessageError struct {
	Messages []string
	Raw      json.RawMessage
}

func (e *UpstreamMessageError) Error() string {
	return "climate api returned messages: " + strings.Join(e.Messages, "; ")
}

// ShapeError means the response did not match any expected JSON shape, or
// the per-parameter period sets disagree.
type ShapeError struct {
	Reason string
	Err    error
}

func (e *ShapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unexpected climate data shape: %s: %v", e.Reason, e.Err)
	}
	return "unexpected climate data shape: " + e.Reason
}

func (e *ShapeError) Unwrap() error {
	return e.Err
}

// FieldError describes one invalid query field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ValidationError is returned by Query.Validate.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid query: " + strings.Join(parts, "; ")
}

// IsQueryFatal reports whether err aborts the current query.
func IsQueryFatal(err error) bool {
	var transport *TransportError
	var upstream *UpstreamMessageError
	var shape *ShapeError
	return errors.As(err, &transport) || errors.As(err, &upstream) || errors.As(err, &shape)
}
