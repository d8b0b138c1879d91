package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/eventmap/internal/clock"
	"github.com/pkordes/eventmap/internal/domain"
	"github.com/pkordes/eventmap/internal/handler"
	"github.com/pkordes/eventmap/internal/mapview"
	"github.com/pkordes/eventmap/internal/repo"
	"github.com/pkordes/eventmap/internal/service"
)

// newStack wires the real controller, scene and export service over an
// in-memory slot, the same way main.go does with STORAGE=memory.
func newStack(t *testing.T, now time.Time) (http.Handler, *mapview.Scene) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	clk := clock.NewFixed(now)
	store := service.NewEventStore(repo.NewMemorySlotRepo(), service.WithLocation(time.UTC), service.WithLogger(log))
	scene := mapview.NewScene()
	ctrl := service.NewSyncController(store, scene, clk, log)
	ctrl.Load(context.Background())
	srv := handler.NewServer(ctrl, scene, service.NewExportService(store, clk), log)
	return srv.Handler(), scene
}

func markers(t *testing.T, h http.Handler) mapview.FeatureCollection {
	t.Helper()
	rec := do(h, http.MethodGet, "/map/markers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var fc mapview.FeatureCollection
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&fc))
	return fc
}

func TestIntegration_CreateEditDeleteThroughTheMap(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	h, scene := newStack(t, now)

	body := formBody()
	body["startDate"] = now.Add(100 * time.Hour).Format(time.RFC3339)
	rec := do(h, http.MethodPost, "/events", jsonBody(t, body))
	require.Equal(t, http.StatusCreated, rec.Code)
	var a handler.EventResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&a))
	assert.Equal(t, "green", a.Status.Color)

	body = formBody()
	body["title"] = "B"
	body["startDate"] = now.Add(-time.Hour).Format(time.RFC3339)
	rec = do(h, http.MethodPost, "/form", jsonBody(t, body))
	require.Equal(t, http.StatusCreated, rec.Code)

	fc := markers(t, h)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, 2, scene.Len())

	// Edit A from its popup, then submit the form: A is updated in place.
	var handleA string
	for _, f := range fc.Features {
		if f.Properties.EventID == a.ID {
			handleA = f.ID
		}
	}
	require.NotEmpty(t, handleA)
	rec = do(h, http.MethodPost, "/map/markers/"+handleA+"/edit", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body = formBody()
	body["title"] = "A renamed"
	body["startDate"] = now.Add(time.Hour).Format(time.RFC3339)
	rec = do(h, http.MethodPost, "/form", jsonBody(t, body))
	require.Equal(t, http.StatusOK, rec.Code)
	var updated handler.EventResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&updated))
	assert.Equal(t, a.ID, updated.ID)
	assert.Equal(t, "orange", updated.Status.Color)

	rec = do(h, http.MethodGet, "/edit", nil)
	assert.JSONEq(t, `{"pending":false}`, rec.Body.String())

	// The old handle died with the redraw.
	rec = do(h, http.MethodGet, "/map/markers/"+handleA, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(h, http.MethodDelete, "/events/"+a.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	fc = markers(t, h)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "red", fc.Features[0].Properties.Color)

	rec = do(h, http.MethodGet, "/export", nil)
	var rows []handler.ExportRowResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rows))
	require.Len(t, rows, 1)
	assert.Equal(t, domain.CategoryPast, rows[0].Category)

	rec = do(h, http.MethodDelete, "/events", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, markers(t, h).Features)
}
