// Package geocode defines the place-name lookup collaborator used to move
// the session pin.
package geocode

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a lookup succeeded but matched nothing.
var ErrNotFound = errors.New("location not found")

// Place is a resolved location.
type Place struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Geocoder resolves names to coordinates and back.
type Geocoder interface {
	Search(ctx context.Context, query string) (*Place, error)
	Reverse(ctx context.Context, lat, lon float64) (*Place, error)
}

// Error is a failed geocoder call.
type Error struct {
	// Op is "search" or "reverse".
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("geocode %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CoordinateLabel names a point when reverse lookup failed.
func CoordinateLabel(lat, lon float64) string {
	return fmt.Sprintf("Lat: %.3f, Lon: %.3f", lat, lon)
}

// UnnamedLabel names a point that reverse lookup found nothing for.
func UnnamedLabel(lat, lon float64) string {
	return fmt.Sprintf("Coordinates: %.3f, %.3f", lat, lon)
}
