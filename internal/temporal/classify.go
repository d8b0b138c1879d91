// Package temporal derives an event's status from its time window and an
// explicit "now". It never reads the wall clock.
package temporal

import (
	"fmt"
	"time"

	"github.com/pkordes/eventmap/internal/domain"
)

// SoonWindow is the lead time under which an upcoming event counts as soon.
const SoonWindow = 72 * time.Hour

const day = 24 * time.Hour

// PastLabel is the fixed label of every past event.
const PastLabel = "Event has passed: you missed this one!"

// Classify maps the window [start, end] and now to a status.
//
// With Δ = start − now:
//   - Δ > 72h is upcoming-far,
//   - 0 ≤ Δ ≤ 72h is upcoming-soon,
//   - Δ < 0 is past.
//
// Ties go to the more urgent bucket. The end of the window is accepted so
// callers pass the whole window, but it does not affect the category.
func Classify(start, _, now time.Time) domain.Status {
	delta := start.Sub(now)

	switch {
	case delta > SoonWindow:
		days, hours, _ := split(delta)
		return domain.Status{
			Category: domain.CategoryUpcomingFar,
			Label:    fmt.Sprintf("Starts in more than 3 days: %d days and %d hours remaining", days, hours),
		}
	case delta >= 0:
		days, hours, minutes := split(delta)
		return domain.Status{
			Category: domain.CategoryUpcomingSoon,
			Label:    fmt.Sprintf("Heads up, starts in %d days, %d hours and %d minutes", days, hours, minutes),
		}
	default:
		return domain.Status{Category: domain.CategoryPast, Label: PastLabel}
	}
}

// ClassifyEvent is Classify applied to an event's own window.
func ClassifyEvent(e domain.Event, now time.Time) domain.Status {
	return Classify(e.StartDate, e.EndDate, now)
}

// split breaks a non-negative duration into whole days, hours and minutes.
func split(d time.Duration) (days, hours, minutes int) {
	days = int(d / day)
	hours = int((d % day) / time.Hour)
	minutes = int((d % time.Hour) / time.Minute)
	return days, hours, minutes
}
