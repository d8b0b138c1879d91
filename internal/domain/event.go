// Package domain contains the core data types for the event map.
// This package has zero external dependencies and is imported by every other
// internal package (repo, service, marker, handler).
package domain

import "time"

// Event is a time-bounded happening pinned to a point on the map.
// ID is assigned once at creation and never changes; every other field can be
// replaced by an update.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"` // not checked against StartDate
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
}

// Coordinates returns the event position.
func (e Event) Coordinates() Coordinates {
	return Coordinates{Lon: e.Longitude, Lat: e.Latitude}
}

// EventFields carries the six raw values of the event form, exactly as typed.
// The store parses and validates them; nothing here is trusted.
type EventFields struct {
	Title       string
	Description string
	StartDate   string
	EndDate     string
	Latitude    string
	Longitude   string
}

// Coordinates is a geographic position. Map libraries take (lng, lat), so Lon
// comes first.
type Coordinates struct {
	Lon float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// LngLat returns the position as [lng, lat], the order GeoJSON expects.
func (c Coordinates) LngLat() []float64 { return []float64{c.Lon, c.Lat} }
