package domain

// ExportRow is a single row of the full-data export: one row per event with
// its status computed at export time.
// Dates are RFC 3339 strings so the CSV and JSON encodings agree.
type ExportRow struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Category    Category `json:"category"`
	Color       string   `json:"color"`
	Label       string   `json:"label"`
}
