// Package handler: export.go implements GET /export.
// Returns every event with its status as a flat table, or as a calendar feed.
// Supports ?format=json (default), ?format=csv and ?format=ics.
package handler

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/eventmap/internal/domain"
	"github.com/pkordes/eventmap/internal/export"
)

// Export formats accepted by ?format=.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatICS  = "ics"
)

// ExportRowResponse is one row of the JSON export.
type ExportRowResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	StartDate   string          `json:"startDate"`
	EndDate     string          `json:"endDate"`
	Latitude    float64         `json:"latitude"`
	Longitude   float64         `json:"longitude"`
	Category    domain.Category `json:"category"`
	Color       string          `json:"color"`
	Label       string          `json:"label"`
}

// GetExport implements GET /export.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	var format *string
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &format); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("invalid format: "+err.Error()))
		return
	}
	f := FormatJSON
	if format != nil && *format != "" {
		f = strings.ToLower(*format)
	}

	switch f {
	case FormatJSON:
		writeJSON(w, http.StatusOK, buildJSONResponse(s.export.Export()))
	case FormatCSV:
		var buf bytes.Buffer
		if err := export.WriteCSV(&buf, s.export.Export()); err != nil {
			s.writeServiceError(w, r, err, "")
			return
		}
		writeAttachment(w, "text/csv", "events.csv", buf.Bytes())
	case FormatICS:
		feed := export.Calendar(s.export.Events(), s.export.Now())
		writeAttachment(w, "text/calendar; charset=utf-8", "events.ics", []byte(feed))
	default:
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("format must be one of json, csv, ics"))
	}
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// buildJSONResponse converts domain rows to the JSON response type.
func buildJSONResponse(rows []domain.ExportRow) []ExportRowResponse {
	out := make([]ExportRowResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ExportRowResponse(r))
	}
	return out
}
