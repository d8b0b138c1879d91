// Package marker keeps the markers drawn on the map congruent with the event
// collection. It owns marker lifecycle only: event data always comes from
// the caller and is never stored beyond what a popup needs to display.
package marker

import (
	"context"
	"time"

	"github.com/pkordes/eventmap/internal/domain"
)

// Handle identifies a marker within a Renderer.
type Handle string

// Content is what the renderer needs to draw a marker.
type Content struct {
	EventID  string          `json:"eventId"`
	Title    string          `json:"title"`
	Color    string          `json:"color"`
	Category domain.Category `json:"category"`
}

// Summary is the transient hover popup: title and window.
type Summary struct {
	Title string    `json:"title"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Text  string    `json:"text"`
}

// Detail is the expanded panel shown when a marker is clicked.
// Edit and Delete route back to the callbacks the Registry was built with,
// carrying the context of whoever pressed the button.
type Detail struct {
	EventID     string             `json:"eventId"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Start       time.Time          `json:"start"`
	End         time.Time          `json:"end"`
	Coordinates domain.Coordinates `json:"coordinates"`
	Status      domain.Status      `json:"status"`

	Edit   func(ctx context.Context) error `json:"-"`
	Delete func(ctx context.Context) error `json:"-"`
}

// Renderer is the slice of a map widget the registry drives.
// Removing a marker also drops the handlers attached to it.
type Renderer interface {
	AddMarkerAt(lng, lat float64, content Content) Handle
	RemoveMarker(h Handle)
	AttachClickHandler(h Handle, fn func() Detail)
	AttachHoverHandler(h Handle, fn func() Summary)
}

// Callbacks are the popup affordances, supplied by whoever owns the events.
type Callbacks struct {
	OnEdit   func(ctx context.Context, id string) error
	OnDelete func(ctx context.Context, id string) error
}

// DateLayout is how popups print dates.
const DateLayout = "January 2, 2006 at 15:04"

// FormatDate prints t for a popup.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
