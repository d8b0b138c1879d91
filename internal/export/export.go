// Package export encodes the event collection for download: a flat CSV
// table and an iCalendar feed. The JSON form is the handler's business.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/pkordes/eventmap/internal/domain"
)

// ProductID identifies the feed producer in PRODID.
const ProductID = "-//eventmap//events//EN"

// CSVHeaders defines the column names written as the first row of any CSV export.
var CSVHeaders = []string{
	"id", "title", "description", "start_date", "end_date",
	"latitude", "longitude", "category", "color", "label",
}

// WriteCSV encodes rows as CSV with a header row.
func WriteCSV(w io.Writer, rows []domain.ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeaders); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(csvRecord(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// csvRecord encodes a domain.ExportRow as a flat string slice.
func csvRecord(r domain.ExportRow) []string {
	return []string{
		r.ID,
		r.Title,
		r.Description,
		r.StartDate,
		r.EndDate,
		formatFloat(r.Latitude),
		formatFloat(r.Longitude),
		string(r.Category),
		r.Color,
		r.Label,
	}
}

// Calendar renders events as an iCalendar feed so they can be subscribed to
// from a calendar app. Each event keeps its ID as UID and carries its
// position as GEO. stamp is written as DTSTAMP.
func Calendar(events []domain.Event, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(ProductID)

	for _, e := range events {
		ve := cal.AddEvent(e.ID)
		ve.SetDtStampTime(stamp)
		ve.SetStartAt(e.StartDate)
		ve.SetEndAt(e.EndDate)
		ve.SetSummary(e.Title)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		ve.SetProperty(ics.ComponentPropertyGeo, formatFloat(e.Latitude)+";"+formatFloat(e.Longitude))
	}
	return cal.Serialize()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
