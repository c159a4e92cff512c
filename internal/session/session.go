// Package session holds the per-user location selection: the map pin, the
// pin it moved from, its display name and the last search term.
//
// A Session is a plain value. Every interaction takes the current session
// and returns the next one; nothing is stored between calls.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/climatelens/climatelens/internal/geocode"
)

// Default pin.
const (
	DefaultLatitude  = 28.6
	DefaultLongitude = 77.2
	DefaultName      = "New Delhi, India"
)

// Point is a latitude/longitude pair.
type Point struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// Session is the location selection of one user.
type Session struct {
	Marker         Point  `json:"marker"`
	PreviousMarker Point  `json:"previousMarker"`
	LocationName   string `json:"locationName"`
	LastSearch     string `json:"lastSearch,omitempty"`
}

// Level grades a notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a non-blocking message produced by an interaction.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// ErrOutOfRange is returned by Validate.
var ErrOutOfRange = errors.New("coordinates out of range")

// New returns a session pinned at the default location.
func New() Session {
	p := Point{Latitude: DefaultLatitude, Longitude: DefaultLongitude}
	return Session{Marker: p, PreviousMarker: p, LocationName: DefaultName}
}

// Validate checks that the marker lies on the globe.
func (s Session) Validate() error {
	return validatePoint(s.Marker)
}

func validatePoint(p Point) error {
	if p.Latitude < -90 || p.Latitude > 90 || p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("%w: lat %.4f, lon %.4f", ErrOutOfRange, p.Latitude, p.Longitude)
	}
	return nil
}

// SetManual moves the pin to typed coordinates without any lookup.
func (s Session) SetManual(lat, lon float64) (Session, error) {
	p := Point{Latitude: lat, Longitude: lon}
	if err := validatePoint(p); err != nil {
		return s, err
	}
	if p == s.Marker {
		return s, nil
	}
	s.PreviousMarker = s.Marker
	s.Marker = p
	s.LocationName = geocode.CoordinateLabel(lat, lon)
	return s, nil
}

// Search looks term up and moves the pin to the match. On failure the pin
// stays where it was and a notice explains why.
func (s Session) Search(ctx context.Context, g geocode.Geocoder, term string) (Session, Notice) {
	s.LastSearch = term
	if term == "" {
		return s, Notice{Level: LevelWarning, Message: "Enter a place name to search."}
	}

	place, err := g.Search(ctx, term)
	switch {
	case errors.Is(err, geocode.ErrNotFound):
		return s, Notice{Level: LevelWarning, Message: "Location not found. Try a different search term."}
	case err != nil:
		return s, Notice{Level: LevelError, Message: fmt.Sprintf("Search error: %v", err)}
	}

	s.PreviousMarker = s.Marker
	s.Marker = Point{Latitude: place.Latitude, Longitude: place.Longitude}
	s.LocationName = place.Name
	return s, Notice{Level: LevelSuccess, Message: "Moved to: " + place.Name}
}

// Click moves the pin to a map click and names it by reverse lookup. A click
// on the current pin changes nothing. Lookup failures fall back to a
// coordinate label.
func (s Session) Click(ctx context.Context, g geocode.Geocoder, lat, lon float64) (Session, *Notice) {
	p := Point{Latitude: lat, Longitude: lon}
	if p == s.Marker {
		return s, nil
	}
	if err := validatePoint(p); err != nil {
		return s, &Notice{Level: LevelError, Message: err.Error()}
	}

	s.PreviousMarker = s.Marker
	s.Marker = p

	place, err := g.Reverse(ctx, lat, lon)
	switch {
	case errors.Is(err, geocode.ErrNotFound):
		s.LocationName = geocode.UnnamedLabel(lat, lon)
	case err != nil:
		s.LocationName = geocode.CoordinateLabel(lat, lon)
		return s, &Notice{Level: LevelWarning, Message: "Could not name this location."}
	default:
		s.LocationName = place.Name
	}
	return s, nil
}
