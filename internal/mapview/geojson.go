package mapview

// FeatureCollection is the GeoJSON document served to the browser map.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is one marker.
type Feature struct {
	Type       string            `json:"type"`
	ID         string            `json:"id"`
	Geometry   Point             `json:"geometry"`
	Properties FeatureProperties `json:"properties"`
}

// Point is a GeoJSON point; Coordinates is [lng, lat].
type Point struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// FeatureProperties carry what the browser needs to style the marker and to
// call back for its popups.
type FeatureProperties struct {
	EventID  string `json:"eventId"`
	Title    string `json:"title"`
	Color    string `json:"color"`
	Category string `json:"category"`
}

// FeatureCollection snapshots the map in drawing order.
func (s *Scene) FeatureCollection() FeatureCollection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fc := FeatureCollection{Type: "FeatureCollection", Features: make([]Feature, 0, len(s.order))}
	for _, h := range s.order {
		m := s.markers[h]
		fc.Features = append(fc.Features, Feature{
			Type:     "Feature",
			ID:       string(h),
			Geometry: Point{Type: "Point", Coordinates: []float64{m.lng, m.lat}},
			Properties: FeatureProperties{
				EventID:  m.content.EventID,
				Title:    m.content.Title,
				Color:    m.content.Color,
				Category: string(m.content.Category),
			},
		})
	}
	return fc
}
