package service

import (
	"time"

	"github.com/pkordes/eventmap/internal/clock"
	"github.com/pkordes/eventmap/internal/domain"
	"github.com/pkordes/eventmap/internal/temporal"
)

// EventLister is the read side of the store that the export needs.
type EventLister interface {
	All() []domain.Event
}

// ExportService assembles a flat export of every event with its status.
type ExportService struct {
	events EventLister
	clock  clock.Clock
}

// NewExportService constructs an ExportService reading from events.
func NewExportService(events EventLister, clk clock.Clock) *ExportService {
	return &ExportService{events: events, clock: clk}
}

// Export returns one row per event in insertion order, classified at the
// current time. Always returns a non-nil slice.
func (s *ExportService) Export() []domain.ExportRow {
	now := s.clock.Now()
	events := s.events.All()
	rows := make([]domain.ExportRow, 0, len(events))
	for _, e := range events {
		status := temporal.ClassifyEvent(e, now)
		rows = append(rows, domain.ExportRow{
			ID:          e.ID,
			Title:       e.Title,
			Description: e.Description,
			StartDate:   e.StartDate.Format(time.RFC3339),
			EndDate:     e.EndDate.Format(time.RFC3339),
			Latitude:    e.Latitude,
			Longitude:   e.Longitude,
			Category:    status.Category,
			Color:       status.Color(),
			Label:       status.Label,
		})
	}
	return rows
}

// Events returns the raw events, for encoders that need real times.
func (s *ExportService) Events() []domain.Event {
	return s.events.All()
}

// Now is the instant exports are stamped with.
func (s *ExportService) Now() time.Time {
	return s.clock.Now()
}
