package handler

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/eventmap/internal/domain"
)

// EventRequest is the body of POST /events, PUT /events/{id} and POST /form.
// Each value is taken exactly as typed; numbers are accepted for the
// coordinates as well as strings.
type EventRequest struct {
	Title       FormValue `json:"title"`
	Description FormValue `json:"description"`
	StartDate   FormValue `json:"startDate"`
	EndDate     FormValue `json:"endDate"`
	Latitude    FormValue `json:"latitude"`
	Longitude   FormValue `json:"longitude"`
}

// FormValue is a raw form input. A JSON string is taken verbatim, a JSON
// number keeps its literal text, and null is the empty string.
type FormValue string

func (v *FormValue) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	switch {
	case s == "null":
		*v = ""
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*v = FormValue(str)
	case strings.HasPrefix(s, "{") || strings.HasPrefix(s, "["):
		return errors.New("form values must be strings or numbers")
	default:
		*v = FormValue(s)
	}
	return nil
}

func (b EventRequest) fields() domain.EventFields {
	return domain.EventFields{
		Title:       string(b.Title),
		Description: string(b.Description),
		StartDate:   string(b.StartDate),
		EndDate:     string(b.EndDate),
		Latitude:    string(b.Latitude),
		Longitude:   string(b.Longitude),
	}
}

// EventResponse is an event with its status at the time of the request.
type EventResponse struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	StartDate   time.Time      `json:"startDate"`
	EndDate     time.Time      `json:"endDate"`
	Latitude    float64        `json:"latitude"`
	Longitude   float64        `json:"longitude"`
	Status      StatusResponse `json:"status"`
}

// StatusResponse is the classifier output plus the marker colour.
type StatusResponse struct {
	Category domain.Category `json:"category"`
	Color    string          `json:"color"`
	Label    string          `json:"label"`
}

// EventList is the paginated body of GET /events.
type EventList struct {
	Data       []EventResponse `json:"data"`
	Pagination Pagination      `json:"pagination"`
}

// Pagination echoes the effective page parameters and the collection size.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// ListEvents handles GET /events.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListEvents(w http.ResponseWriter, r *http.Request) {
	var page, limit *int
	if err := runtime.BindQueryParameter("form", true, false, "page", r.URL.Query(), &page); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("invalid page: "+err.Error()))
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("invalid limit: "+err.Error()))
		return
	}
	params := domain.NewPaginationParams(page, limit)

	all := s.events.Events()
	lo, hi := params.Bounds(len(all))
	data := make([]EventResponse, 0, hi-lo)
	for _, es := range all[lo:hi] {
		data = append(data, eventToResponse(es))
	}
	writeJSON(w, http.StatusOK, EventList{
		Data:       data,
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: len(all)},
	})
}

// CreateEvent handles POST /events.
func (s *Server) CreateEvent(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r)
	if err != nil {
		writeDecodeError(w, err)
		return
	}
	created, err := s.events.SubmitCreate(r.Context(), fields)
	if err != nil {
		s.writeServiceError(w, r, err, "event not found")
		return
	}
	s.writeEvent(w, r, http.StatusCreated, created.ID)
}

// GetEvent handles GET /events/{id}.
func (s *Server) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	s.writeEvent(w, r, http.StatusOK, id)
}

// UpdateEvent handles PUT /events/{id}. The ID in the path always wins.
func (s *Server) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	fields, err := decodeFields(r)
	if err != nil {
		writeDecodeError(w, err)
		return
	}
	if _, err := s.events.SubmitUpdate(r.Context(), id, fields); err != nil {
		s.writeServiceError(w, r, err, "event not found")
		return
	}
	s.writeEvent(w, r, http.StatusOK, id)
}

// DeleteEvent handles DELETE /events/{id}. Deleting an unknown event is not
// an error, so this answers 204 whenever the store could be written.
func (s *Server) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	if err := s.events.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err, "event not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearEvents handles DELETE /events: every event and marker is removed and
// the persisted slot is dropped.
func (s *Server) ClearEvents(w http.ResponseWriter, r *http.Request) {
	if err := s.events.ClearAll(r.Context()); err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RefreshResponse is the body of POST /refresh.
type RefreshResponse struct {
	Markers int `json:"markers"`
}

// Refresh handles POST /refresh: markers are recoloured against the current
// time without touching the stored events.
func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	s.events.Refresh(r.Context())
	writeJSON(w, http.StatusOK, RefreshResponse{Markers: s.events.MarkerCount()})
}

// --- helpers ----------------------------------------------------------------

// writeEvent looks id up again so the reply carries the status computed now.
func (s *Server) writeEvent(w http.ResponseWriter, r *http.Request, status int, id string) {
	es, err := s.events.Event(id)
	if err != nil {
		s.writeServiceError(w, r, err, "event not found")
		return
	}
	writeJSON(w, status, eventToResponse(es))
}

// pathParam binds a required simple-style path parameter. On failure it has
// already answered 422.
func pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var v string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil || strings.TrimSpace(v) == "" {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("invalid "+name+" path parameter"))
		return "", false
	}
	return v, true
}

// decodeFields reads the event form from a JSON body, or from an HTML form
// post when the content type says so.
func decodeFields(r *http.Request) (domain.EventFields, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return domain.EventFields{}, err
		}
		return domain.EventFields{
			Title:       r.PostForm.Get("title"),
			Description: r.PostForm.Get("description"),
			StartDate:   r.PostForm.Get("startDate"),
			EndDate:     r.PostForm.Get("endDate"),
			Latitude:    r.PostForm.Get("latitude"),
			Longitude:   r.PostForm.Get("longitude"),
		}, nil
	}

	if r.Body == nil {
		return domain.EventFields{}, errors.New("request body is required")
	}
	var body EventRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return domain.EventFields{}, err
	}
	return body.fields(), nil
}

func eventToResponse(es domain.EventStatus) EventResponse {
	e := es.Event
	return EventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		Latitude:    e.Latitude,
		Longitude:   e.Longitude,
		Status: StatusResponse{
			Category: es.Status.Category,
			Color:    es.Status.Color(),
			Label:    es.Status.Label,
		},
	}
}
