package marker_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/eventmap/internal/domain"
	"github.com/pkordes/eventmap/internal/marker"
)

// spyRenderer is a hand-written marker.Renderer that records what is on screen.
type spyRenderer struct {
	next    int
	live    map[marker.Handle]spyMarker
	removed []marker.Handle
}

type spyMarker struct {
	lng, lat float64
	content  marker.Content
	click    func() marker.Detail
	hover    func() marker.Summary
}

func newSpyRenderer() *spyRenderer {
	return &spyRenderer{live: make(map[marker.Handle]spyMarker)}
}

func (r *spyRenderer) AddMarkerAt(lng, lat float64, c marker.Content) marker.Handle {
	r.next++
	h := marker.Handle(fmt.Sprintf("m%d", r.next))
	r.live[h] = spyMarker{lng: lng, lat: lat, content: c}
	return h
}

func (r *spyRenderer) RemoveMarker(h marker.Handle) {
	delete(r.live, h)
	r.removed = append(r.removed, h)
}

func (r *spyRenderer) AttachClickHandler(h marker.Handle, fn func() marker.Detail) {
	m := r.live[h]
	m.click = fn
	r.live[h] = m
}

func (r *spyRenderer) AttachHoverHandler(h marker.Handle, fn func() marker.Summary) {
	m := r.live[h]
	m.hover = fn
	r.live[h] = m
}

// compile-time check: spyRenderer must satisfy marker.Renderer.
var _ marker.Renderer = (*spyRenderer)(nil)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func eventAt(id string, start time.Time) domain.Event {
	return domain.Event{
		ID:          id,
		Title:       "Event " + id,
		Description: "About " + id,
		StartDate:   start,
		EndDate:     start.Add(2 * time.Hour),
		Latitude:    42.68,
		Longitude:   2.79,
	}
}

func TestRegistry_Resync_OneMarkerPerEvent(t *testing.T) {
	r := newSpyRenderer()
	g := marker.NewRegistry(r, marker.Callbacks{})

	events := []domain.Event{
		eventAt("a", now.Add(100*time.Hour)),
		eventAt("b", now.Add(-time.Hour)),
	}
	g.Resync(events, now)

	require.Equal(t, 2, g.Len())
	require.Len(t, r.live, 2)

	ha, ok := g.HandleFor("a")
	require.True(t, ok)
	assert.Equal(t, "green", r.live[ha].content.Color)
	assert.Equal(t, 2.79, r.live[ha].lng)
	assert.Equal(t, 42.68, r.live[ha].lat)

	hb, ok := g.HandleFor("b")
	require.True(t, ok)
	assert.Equal(t, "red", r.live[hb].content.Color)
	assert.Equal(t, domain.CategoryPast, r.live[hb].content.Category)
}

func TestRegistry_Resync_CountMatchesInputRegardlessOfPrior(t *testing.T) {
	for _, sizes := range [][2]int{{0, 3}, {5, 2}, {3, 3}, {4, 0}} {
		t.Run(fmt.Sprintf("%d->%d", sizes[0], sizes[1]), func(t *testing.T) {
			r := newSpyRenderer()
			g := marker.NewRegistry(r, marker.Callbacks{})

			g.Resync(makeEvents(sizes[0]), now)
			g.Resync(makeEvents(sizes[1]), now)

			assert.Equal(t, sizes[1], g.Len())
			assert.Len(t, r.live, sizes[1], "no orphan markers may survive a resync")
		})
	}
}

func TestRegistry_Resync_RemovesPreviousGeneration(t *testing.T) {
	r := newSpyRenderer()
	g := marker.NewRegistry(r, marker.Callbacks{})

	g.Resync(makeEvents(2), now)
	old := g.Handles()
	g.Resync(makeEvents(2), now)

	assert.ElementsMatch(t, old, r.removed)
	for _, h := range old {
		_, live := r.live[h]
		assert.False(t, live, "stale marker %s still drawn", h)
	}
}

func TestRegistry_ClearAll(t *testing.T) {
	r := newSpyRenderer()
	g := marker.NewRegistry(r, marker.Callbacks{})
	g.Resync(makeEvents(3), now)

	g.ClearAll()

	assert.Zero(t, g.Len())
	assert.Empty(t, r.live)
	assert.Empty(t, g.Handles())
}

func TestRegistry_HoverSummary(t *testing.T) {
	r := newSpyRenderer()
	g := marker.NewRegistry(r, marker.Callbacks{})
	e := eventAt("a", now.Add(100*time.Hour))
	g.Resync([]domain.Event{e}, now)

	h, _ := g.HandleFor("a")
	s := r.live[h].hover()

	assert.Equal(t, e.Title, s.Title)
	assert.True(t, s.Start.Equal(e.StartDate))
	assert.Contains(t, s.Text, marker.FormatDate(e.StartDate))
	assert.Contains(t, s.Text, marker.FormatDate(e.EndDate))
}

func TestRegistry_ClickDetail(t *testing.T) {
	r := newSpyRenderer()
	g := marker.NewRegistry(r, marker.Callbacks{})
	e := eventAt("a", now.Add(2*time.Hour))
	g.Resync([]domain.Event{e}, now)

	h, _ := g.HandleFor("a")
	d := r.live[h].click()

	assert.Equal(t, "a", d.EventID)
	assert.Equal(t, e.Description, d.Description)
	assert.Equal(t, domain.Coordinates{Lon: 2.79, Lat: 42.68}, d.Coordinates)
	assert.Equal(t, domain.CategoryUpcomingSoon, d.Status.Category)
	assert.NotEmpty(t, d.Status.Label)
}

func TestRegistry_DetailActionsRouteToCallbacks(t *testing.T) {
	var edited, deleted string
	r := newSpyRenderer()
	g := marker.NewRegistry(r, marker.Callbacks{
		OnEdit:   func(_ context.Context, id string) error { edited = id; return nil },
		OnDelete: func(_ context.Context, id string) error { deleted = id; return nil },
	})
	g.Resync([]domain.Event{eventAt("a", now), eventAt("b", now)}, now)

	hb, _ := g.HandleFor("b")
	d := r.live[hb].click()
	require.NoError(t, d.Edit(context.Background()))
	require.NoError(t, d.Delete(context.Background()))

	assert.Equal(t, "b", edited)
	assert.Equal(t, "b", deleted)
}

type ctxKey struct{}

func TestRegistry_DetailActionsCarryCallerContext(t *testing.T) {
	var got any
	r := newSpyRenderer()
	g := marker.NewRegistry(r, marker.Callbacks{
		OnDelete: func(ctx context.Context, _ string) error { got = ctx.Value(ctxKey{}); return nil },
	})
	g.Resync([]domain.Event{eventAt("a", now)}, now)

	h, _ := g.HandleFor("a")
	ctx := context.WithValue(context.Background(), ctxKey{}, "req-42")
	require.NoError(t, r.live[h].click().Delete(ctx))

	assert.Equal(t, "req-42", got)
}

func TestRegistry_DetailActionPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	r := newSpyRenderer()
	g := marker.NewRegistry(r, marker.Callbacks{
		OnDelete: func(context.Context, string) error { return boom },
	})
	g.Resync([]domain.Event{eventAt("a", now)}, now)

	h, _ := g.HandleFor("a")
	d := r.live[h].click()

	assert.ErrorIs(t, d.Delete(context.Background()), boom)
	assert.Error(t, d.Edit(context.Background()), "unwired callback should report an error")
}

func makeEvents(n int) []domain.Event {
	out := make([]domain.Event, n)
	for i := range out {
		out[i] = eventAt(fmt.Sprintf("e%d", i), now.Add(time.Duration(i)*time.Hour))
	}
	return out
}
