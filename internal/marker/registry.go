package marker

import (
	"context"
	"errors"
	"time"

	"github.com/pkordes/eventmap/internal/domain"
	"github.com/pkordes/eventmap/internal/temporal"
)

// errNoCallback is returned by a popup action whose callback was not wired.
var errNoCallback = errors.New("marker: action not available")

type entry struct {
	handle  Handle
	eventID string
}

// Registry tracks the markers it has put on a Renderer.
// It is not safe for concurrent use; the SyncController serializes access.
type Registry struct {
	renderer  Renderer
	callbacks Callbacks
	markers   []entry
}

// NewRegistry constructs a Registry drawing on r. Popup Edit/Delete actions
// invoke cb with the event ID.
func NewRegistry(r Renderer, cb Callbacks) *Registry {
	return &Registry{renderer: r, callbacks: cb}
}

// Resync removes every marker this registry drew and draws one per event,
// coloured by its status at now. Cost is linear in old plus new marker count.
func (g *Registry) Resync(events []domain.Event, now time.Time) {
	g.ClearAll()

	g.markers = make([]entry, 0, len(events))
	for _, e := range events {
		status := temporal.ClassifyEvent(e, now)
		h := g.renderer.AddMarkerAt(e.Longitude, e.Latitude, Content{
			EventID:  e.ID,
			Title:    e.Title,
			Color:    status.Color(),
			Category: status.Category,
		})
		g.renderer.AttachHoverHandler(h, g.summary(e))
		g.renderer.AttachClickHandler(h, g.detail(e, status))
		g.markers = append(g.markers, entry{handle: h, eventID: e.ID})
	}
}

// ClearAll removes every marker this registry drew. Events are not touched.
func (g *Registry) ClearAll() {
	for _, m := range g.markers {
		g.renderer.RemoveMarker(m.handle)
	}
	g.markers = nil
}

// Len is the number of markers currently drawn.
func (g *Registry) Len() int { return len(g.markers) }

// Handles lists the drawn markers in event order.
func (g *Registry) Handles() []Handle {
	out := make([]Handle, len(g.markers))
	for i, m := range g.markers {
		out[i] = m.handle
	}
	return out
}

// HandleFor returns the marker drawn for an event.
func (g *Registry) HandleFor(eventID string) (Handle, bool) {
	for _, m := range g.markers {
		if m.eventID == eventID {
			return m.handle, true
		}
	}
	return "", false
}

func (g *Registry) summary(e domain.Event) func() Summary {
	s := Summary{
		Title: e.Title,
		Start: e.StartDate,
		End:   e.EndDate,
		Text:  "Start: " + FormatDate(e.StartDate) + " | End: " + FormatDate(e.EndDate),
	}
	return func() Summary { return s }
}

func (g *Registry) detail(e domain.Event, status domain.Status) func() Detail {
	id := e.ID
	d := Detail{
		EventID:     id,
		Title:       e.Title,
		Description: e.Description,
		Start:       e.StartDate,
		End:         e.EndDate,
		Coordinates: e.Coordinates(),
		Status:      status,
		Edit:        bind(g.callbacks.OnEdit, id),
		Delete:      bind(g.callbacks.OnDelete, id),
	}
	return func() Detail { return d }
}

func bind(fn func(context.Context, string) error, id string) func(context.Context) error {
	return func(ctx context.Context) error {
		if fn == nil {
			return errNoCallback
		}
		return fn(ctx, id)
	}
}
