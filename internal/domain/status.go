package domain

// Category is the temporal bucket an event falls into relative to "now".
type Category string

const (
	// CategoryUpcomingFar is an event starting more than 72 hours from now.
	CategoryUpcomingFar Category = "upcoming-far"
	// CategoryUpcomingSoon is an event starting within the next 72 hours,
	// both ends inclusive.
	CategoryUpcomingSoon Category = "upcoming-soon"
	// CategoryPast is an event whose start lies before now.
	CategoryPast Category = "past"
)

// Color returns the marker colour used for the category.
func (c Category) Color() string {
	switch c {
	case CategoryUpcomingFar:
		return "green"
	case CategoryUpcomingSoon:
		return "orange"
	default:
		return "red"
	}
}

// Status is the classifier output: a category plus a human-readable label.
type Status struct {
	Category Category `json:"category"`
	Label    string   `json:"label"`
}

// Color is shorthand for s.Category.Color().
func (s Status) Color() string { return s.Category.Color() }

// EventStatus pairs an event with its status at a given instant.
type EventStatus struct {
	Event  Event
	Status Status
}
