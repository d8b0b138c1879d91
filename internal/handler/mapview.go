package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/pkordes/eventmap/internal/domain"
	"github.com/pkordes/eventmap/internal/mapview"
	"github.com/pkordes/eventmap/internal/marker"
)

// ClickRequest is a click on the map at (lng, lat).
type ClickRequest struct {
	Lng *float64 `json:"lng"`
	Lat *float64 `json:"lat"`
}

// ClickResponse carries the clicked position rounded for the form.
type ClickResponse struct {
	Coordinates domain.Coordinates `json:"coordinates"`
	Fields      FormValues         `json:"fields"`
}

// ListMarkers handles GET /map/markers with a GeoJSON FeatureCollection of
// every marker currently drawn.
func (s *Server) ListMarkers(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	json.NewEncoder(w).Encode(s.scene.FeatureCollection())
}

// HoverMarker handles GET /map/markers/{handle}/summary.
func (s *Server) HoverMarker(w http.ResponseWriter, r *http.Request) {
	h, ok := handleParam(w, r)
	if !ok {
		return
	}
	summary, err := s.scene.Hover(h)
	if err != nil {
		s.writeServiceError(w, r, err, "marker not found")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// ClickMarker handles GET /map/markers/{handle} with the detail panel.
func (s *Server) ClickMarker(w http.ResponseWriter, r *http.Request) {
	h, ok := handleParam(w, r)
	if !ok {
		return
	}
	detail, err := s.scene.Click(h)
	if err != nil {
		s.writeServiceError(w, r, err, "marker not found")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// EditFromMarker handles POST /map/markers/{handle}/edit, the Edit button of
// the detail panel.
func (s *Server) EditFromMarker(w http.ResponseWriter, r *http.Request) {
	detail, ok := s.clickFor(w, r)
	if !ok {
		return
	}
	if err := detail.Edit(r.Context()); err != nil {
		s.writeServiceError(w, r, err, "event not found")
		return
	}
	es, err := s.events.Event(detail.EventID)
	if err != nil {
		s.writeServiceError(w, r, err, "event not found")
		return
	}
	writeJSON(w, http.StatusOK, s.editResponse(es.Event))
}

// DeleteFromMarker handles POST /map/markers/{handle}/delete, the Delete
// button of the detail panel. The handle is dead afterwards.
func (s *Server) DeleteFromMarker(w http.ResponseWriter, r *http.Request) {
	detail, ok := s.clickFor(w, r)
	if !ok {
		return
	}
	if err := detail.Delete(r.Context()); err != nil {
		s.writeServiceError(w, r, err, "event not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MapClick handles POST /map/click: the position is rounded to six decimals
// and returned as form values for the coordinate inputs.
func (s *Server) MapClick(w http.ResponseWriter, r *http.Request) {
	var body ClickRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDecodeError(w, err)
		return
	}
	if body.Lng == nil || body.Lat == nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("lng and lat are required"))
		return
	}
	c := mapview.ClickAt(*body.Lng, *body.Lat)
	writeJSON(w, http.StatusOK, ClickResponse{
		Coordinates: c,
		Fields: FormValues{
			Latitude:  formatCoordinate(c.Lat),
			Longitude: formatCoordinate(c.Lon),
		},
	})
}

func (s *Server) clickFor(w http.ResponseWriter, r *http.Request) (marker.Detail, bool) {
	h, ok := handleParam(w, r)
	if !ok {
		return marker.Detail{}, false
	}
	detail, err := s.scene.Click(h)
	if err != nil {
		s.writeServiceError(w, r, err, "marker not found")
		return marker.Detail{}, false
	}
	if detail.Edit == nil || detail.Delete == nil {
		s.writeServiceError(w, r, errors.New("marker has no popup actions"), "")
		return marker.Detail{}, false
	}
	return detail, true
}

func handleParam(w http.ResponseWriter, r *http.Request) (marker.Handle, bool) {
	v, ok := pathParam(w, r, "handle")
	return marker.Handle(v), ok
}

// formatCoordinate prints a coordinate with the six fixed decimals the
// form inputs show.
func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
