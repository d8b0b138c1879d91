// Package handler implements the HTTP handlers for the event map API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (events.go, edit.go, mapview.go, export.go) but share the same Server
// struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/eventmap/internal/domain"
	"github.com/pkordes/eventmap/internal/mapview"
	"github.com/pkordes/eventmap/internal/marker"
)

// EventController defines the operations the event, form and edit handlers
// depend on. service.SyncController satisfies it; tests inject a mock.
type EventController interface {
	Events() []domain.EventStatus
	Event(id string) (domain.EventStatus, error)
	SubmitCreate(ctx context.Context, f domain.EventFields) (domain.Event, error)
	SubmitUpdate(ctx context.Context, id string, f domain.EventFields) (domain.Event, error)
	SubmitForm(ctx context.Context, f domain.EventFields) (domain.Event, error)
	Delete(ctx context.Context, id string) error
	ClearAll(ctx context.Context) error
	BeginEdit(id string) (domain.Event, error)
	CancelEdit()
	PendingEdit() (string, bool)
	EditFields(e domain.Event) domain.EventFields
	Refresh(ctx context.Context)
	MarkerCount() int
}

// MapScene is the read side of the map the marker handlers serve.
type MapScene interface {
	FeatureCollection() mapview.FeatureCollection
	Click(h marker.Handle) (marker.Detail, error)
	Hover(h marker.Handle) (marker.Summary, error)
}

// ExportServicer defines what GET /export needs.
type ExportServicer interface {
	Export() []domain.ExportRow
	Events() []domain.Event
	Now() time.Time
}

// Server serves every API endpoint.
// Wire it in main.go via Server.Handler.
type Server struct {
	events EventController
	scene  MapScene
	export ExportServicer
	log    *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// A nil logger falls back to slog.Default().
func NewServer(events EventController, scene MapScene, export ExportServicer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{events: events, scene: scene, export: export, log: log}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil, nil)
}

// Handler returns the routes of the API. Cross-cutting middleware (request
// IDs, logging, CORS, body limits) is applied by the caller.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/events", func(r chi.Router) {
		r.Get("/", s.ListEvents)
		r.Post("/", s.CreateEvent)
		r.Delete("/", s.ClearEvents)
		r.Get("/{id}", s.GetEvent)
		r.Put("/{id}", s.UpdateEvent)
		r.Delete("/{id}", s.DeleteEvent)
		r.Post("/{id}/edit", s.BeginEdit)
	})

	r.Get("/edit", s.GetPendingEdit)
	r.Delete("/edit", s.CancelEdit)
	r.Post("/form", s.SubmitForm)
	r.Post("/refresh", s.Refresh)

	r.Route("/map", func(r chi.Router) {
		r.Get("/markers", s.ListMarkers)
		r.Get("/markers/{handle}", s.ClickMarker)
		r.Get("/markers/{handle}/summary", s.HoverMarker)
		r.Post("/markers/{handle}/edit", s.EditFromMarker)
		r.Post("/markers/{handle}/delete", s.DeleteFromMarker)
		r.Post("/click", s.MapClick)
	})

	r.Get("/export", s.GetExport)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, notFoundBody("no such route"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: ErrorDetail{Code: "method_not_allowed", Message: "method not allowed"}})
	})
	return r
}
