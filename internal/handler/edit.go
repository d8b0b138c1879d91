package handler

import (
	"net/http"

	"github.com/pkordes/eventmap/internal/domain"
)

// FormValues pre-fill the event form. Dates use the datetime-local layout.
type FormValues struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Latitude    string `json:"latitude"`
	Longitude   string `json:"longitude"`
}

// EditResponse answers a started edit: the target and its form values.
type EditResponse struct {
	ID     string     `json:"id"`
	Fields FormValues `json:"fields"`
}

// PendingEditResponse is the body of GET /edit.
type PendingEditResponse struct {
	Pending bool          `json:"pending"`
	Edit    *EditResponse `json:"edit,omitempty"`
}

// BeginEdit handles POST /events/{id}/edit. The event becomes the target of
// the next POST /form; a previous target is replaced.
func (s *Server) BeginEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	e, err := s.events.BeginEdit(id)
	if err != nil {
		s.writeServiceError(w, r, err, "event not found")
		return
	}
	writeJSON(w, http.StatusOK, s.editResponse(e))
}

// GetPendingEdit handles GET /edit.
func (s *Server) GetPendingEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := s.events.PendingEdit()
	if !ok {
		writeJSON(w, http.StatusOK, PendingEditResponse{})
		return
	}
	es, err := s.events.Event(id)
	if err != nil {
		// The target vanished between the two calls.
		writeJSON(w, http.StatusOK, PendingEditResponse{})
		return
	}
	edit := s.editResponse(es.Event)
	writeJSON(w, http.StatusOK, PendingEditResponse{Pending: true, Edit: &edit})
}

// CancelEdit handles DELETE /edit.
func (s *Server) CancelEdit(w http.ResponseWriter, _ *http.Request) {
	s.events.CancelEdit()
	w.WriteHeader(http.StatusNoContent)
}

// SubmitForm handles POST /form, the single submit button of the event
// form. It updates the pending edit target when there is one and creates a
// new event otherwise; the status code tells which happened.
func (s *Server) SubmitForm(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r)
	if err != nil {
		writeDecodeError(w, err)
		return
	}
	_, editing := s.events.PendingEdit()
	saved, err := s.events.SubmitForm(r.Context(), fields)
	if err != nil {
		s.writeServiceError(w, r, err, "event being edited no longer exists")
		return
	}
	status := http.StatusCreated
	if editing {
		status = http.StatusOK
	}
	s.writeEvent(w, r, status, saved.ID)
}

func (s *Server) editResponse(e domain.Event) EditResponse {
	f := s.events.EditFields(e)
	return EditResponse{
		ID: e.ID,
		Fields: FormValues{
			Title:       f.Title,
			Description: f.Description,
			StartDate:   f.StartDate,
			EndDate:     f.EndDate,
			Latitude:    f.Latitude,
			Longitude:   f.Longitude,
		},
	}
}
