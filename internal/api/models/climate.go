package models

import (
	"github.com/climatelens/climatelens/internal/session"
)

// SeriesRequest is the body of POST /v1/series:query and /v1/series:chart.
type SeriesRequest struct {
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	Start      string   `json:"start"`
	End        string   `json:"end"`
	Parameters []string `json:"parameters"`
	// Resolution defaults to daily.
	Resolution string `json:"resolution,omitempty"`
	Community  string `json:"community,omitempty"`
	Strategy   string `json:"strategy,omitempty"`
	Horizon    int    `json:"horizon,omitempty"`
	Narrate    bool   `json:"narrate,omitempty"`
}

// Pin actions.
const (
	PinActionManual = "manual"
	PinActionSearch = "search"
	PinActionClick  = "click"
)

// PinAction is one interaction with the map pin.
type PinAction struct {
	Type      string  `json:"type" validate:"required,oneof=manual search click"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Query     string  `json:"query,omitempty" validate:"max=200"`
}

// PinRequest is the body of POST /v1/session/pin. A missing session starts
// from the default pin.
type PinRequest struct {
	Session *session.Session `json:"session,omitempty"`
	Action  PinAction        `json:"action"`
}

// PinResponse carries the next session and an optional notice.
type PinResponse struct {
	Session session.Session `json:"session"`
	Notice  *session.Notice `json:"notice,omitempty"`
}
