// Package mapview is the in-process map the marker registry draws on. It
// holds the live markers and their popup handlers, and publishes them as a
// GeoJSON FeatureCollection for the browser map to display.
package mapview

import (
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/pkordes/eventmap/internal/domain"
	"github.com/pkordes/eventmap/internal/marker"
)

type sceneMarker struct {
	handle   marker.Handle
	lng, lat float64
	content  marker.Content
	click    func() marker.Detail
	hover    func() marker.Summary
}

// Scene implements marker.Renderer. It is safe for concurrent use: HTTP
// readers query it while the controller redraws.
type Scene struct {
	mu      sync.RWMutex
	markers map[marker.Handle]*sceneMarker
	order   []marker.Handle
}

// compile-time check: Scene must satisfy marker.Renderer.
var _ marker.Renderer = (*Scene)(nil)

// NewScene returns an empty map.
func NewScene() *Scene {
	return &Scene{markers: make(map[marker.Handle]*sceneMarker)}
}

// AddMarkerAt draws a marker and returns its handle.
func (s *Scene) AddMarkerAt(lng, lat float64, content marker.Content) marker.Handle {
	h := marker.Handle(uuid.NewString())

	s.mu.Lock()
	defer s.mu.Unlock()

	s.markers[h] = &sceneMarker{handle: h, lng: lng, lat: lat, content: content}
	s.order = append(s.order, h)
	return h
}

// RemoveMarker erases a marker together with its handlers. Unknown handles
// are ignored.
func (s *Scene) RemoveMarker(h marker.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.markers[h]; !ok {
		return
	}
	delete(s.markers, h)
	for i, o := range s.order {
		if o == h {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// AttachClickHandler sets the function producing the marker's detail panel.
func (s *Scene) AttachClickHandler(h marker.Handle, fn func() marker.Detail) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.markers[h]; ok {
		m.click = fn
	}
}

// AttachHoverHandler sets the function producing the marker's hover summary.
func (s *Scene) AttachHoverHandler(h marker.Handle, fn func() marker.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.markers[h]; ok {
		m.hover = fn
	}
}

// Len is the number of markers on the map.
func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.markers)
}

// Click activates a marker and returns its detail panel.
// Returns domain.ErrNotFound if the marker is gone or has no click handler.
// The handler runs outside the scene lock so its actions may redraw the map.
func (s *Scene) Click(h marker.Handle) (marker.Detail, error) {
	s.mu.RLock()
	m, ok := s.markers[h]
	var fn func() marker.Detail
	if ok {
		fn = m.click
	}
	s.mu.RUnlock()

	if fn == nil {
		return marker.Detail{}, fmt.Errorf("mapview.Scene.Click: marker %q: %w", h, domain.ErrNotFound)
	}
	return fn(), nil
}

// Hover returns the marker's hover summary.
// Returns domain.ErrNotFound if the marker is gone or has no hover handler.
func (s *Scene) Hover(h marker.Handle) (marker.Summary, error) {
	s.mu.RLock()
	m, ok := s.markers[h]
	var fn func() marker.Summary
	if ok {
		fn = m.hover
	}
	s.mu.RUnlock()

	if fn == nil {
		return marker.Summary{}, fmt.Errorf("mapview.Scene.Hover: marker %q: %w", h, domain.ErrNotFound)
	}
	return fn(), nil
}

// ClickAt rounds a map click to six decimals, the precision the form shows.
func ClickAt(lng, lat float64) domain.Coordinates {
	return domain.Coordinates{Lon: round6(lng), Lat: round6(lat)}
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
