package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkordes/eventmap/internal/domain"
)

// FormLayout is the layout of an HTML datetime-local input.
const FormLayout = "2006-01-02T15:04"

// zonedLayouts carry an explicit offset and are parsed as-is.
var zonedLayouts = []string{time.RFC3339Nano}

// naiveLayouts have no offset and are read in the store's location.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	FormLayout,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDate parses an ISO date-time. Values without an offset are
// interpreted in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not an ISO date-time", s)
}

// parseFields turns raw form values into an event without an ID.
// Every field is required. Problems are collected so the user sees all of
// them at once.
func parseFields(f domain.EventFields, loc *time.Location) (domain.Event, error) {
	var missing []string
	for _, field := range []struct {
		name, value string
	}{
		{"title", f.Title},
		{"description", f.Description},
		{"startDate", f.StartDate},
		{"endDate", f.EndDate},
		{"latitude", f.Latitude},
		{"longitude", f.Longitude},
	} {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return domain.Event{}, fmt.Errorf("%w: missing required fields: %s", domain.ErrValidation, strings.Join(missing, ", "))
	}

	var problems []string

	lat, err := parseCoordinate(f.Latitude, 90)
	if err != nil {
		problems = append(problems, "latitude "+err.Error())
	}
	lon, err := parseCoordinate(f.Longitude, 180)
	if err != nil {
		problems = append(problems, "longitude "+err.Error())
	}
	start, err := ParseDate(f.StartDate, loc)
	if err != nil {
		problems = append(problems, "startDate: "+err.Error())
	}
	end, err := ParseDate(f.EndDate, loc)
	if err != nil {
		problems = append(problems, "endDate: "+err.Error())
	}
	if len(problems) > 0 {
		return domain.Event{}, fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(problems, "; "))
	}

	return domain.Event{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		StartDate:   start,
		EndDate:     end,
		Latitude:    lat,
		Longitude:   lon,
	}, nil
}

// parseCoordinate parses a finite number within [-limit, limit].
func parseCoordinate(s string, limit float64) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("must be a finite number, got %q", s)
	}
	if err := checkRange(v, limit); err != nil {
		return 0, err
	}
	return v, nil
}

func checkRange(v, limit float64) error {
	if v < -limit || v > limit {
		return fmt.Errorf("must be within [-%g, %g], got %g", limit, limit, v)
	}
	return nil
}

// validateEvent enforces the rules an already-parsed event must satisfy
// before it replaces a stored one.
//   - Title must be non-empty (whitespace-only titles are rejected).
//   - Dates must be set.
//   - Coordinates must be finite and in range.
//
// EndDate is deliberately not compared with StartDate.
func validateEvent(e domain.Event) error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if e.StartDate.IsZero() || e.EndDate.IsZero() {
		return fmt.Errorf("%w: startDate and endDate are required", domain.ErrValidation)
	}
	for _, c := range []struct {
		name  string
		v     float64
		limit float64
	}{
		{"latitude", e.Latitude, 90},
		{"longitude", e.Longitude, 180},
	} {
		if math.IsNaN(c.v) || math.IsInf(c.v, 0) {
			return fmt.Errorf("%w: %s must be a finite number", domain.ErrValidation, c.name)
		}
		if err := checkRange(c.v, c.limit); err != nil {
			return fmt.Errorf("%w: %s %s", domain.ErrValidation, c.name, err.Error())
		}
	}
	return nil
}

// FieldsFromEvent renders an event back into form values, for pre-filling
// the edit form. Dates use the datetime-local layout in loc.
func FieldsFromEvent(e domain.Event, loc *time.Location) domain.EventFields {
	return domain.EventFields{
		Title:       e.Title,
		Description: e.Description,
		StartDate:   e.StartDate.In(loc).Format(FormLayout),
		EndDate:     e.EndDate.In(loc).Format(FormLayout),
		Latitude:    strconv.FormatFloat(e.Latitude, 'f', -1, 64),
		Longitude:   strconv.FormatFloat(e.Longitude, 'f', -1, 64),
	}
}

// toRecord is the persisted form of e. Dates keep their offset and any
// fractional seconds, so a reload yields the same instants.
func toRecord(e domain.Event) Record {
	return Record{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		StartDate:   e.StartDate.Format(time.RFC3339Nano),
		EndDate:     e.EndDate.Format(time.RFC3339Nano),
		Latitude:    Float(e.Latitude),
		Longitude:   Float(e.Longitude),
	}
}

// fromRecord normalizes a persisted record. Descriptions may be empty here;
// only the create form insists on one.
func fromRecord(r Record, loc *time.Location) (domain.Event, error) {
	if !r.Latitude.Valid || !r.Longitude.Valid {
		return domain.Event{}, fmt.Errorf("%w: coordinates must be finite numbers", domain.ErrValidation)
	}
	start, err := ParseDate(r.StartDate, loc)
	if err != nil {
		return domain.Event{}, fmt.Errorf("%w: startDate: %s", domain.ErrValidation, err.Error())
	}
	end, err := ParseDate(r.EndDate, loc)
	if err != nil {
		return domain.Event{}, fmt.Errorf("%w: endDate: %s", domain.ErrValidation, err.Error())
	}
	e := domain.Event{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		StartDate:   start,
		EndDate:     end,
		Latitude:    r.Latitude.Value,
		Longitude:   r.Longitude.Value,
	}
	if err := validateEvent(e); err != nil {
		return domain.Event{}, err
	}
	return e, nil
}
