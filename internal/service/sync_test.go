package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/eventmap/internal/clock"
	"github.com/pkordes/eventmap/internal/domain"
	"github.com/pkordes/eventmap/internal/mapview"
	"github.com/pkordes/eventmap/internal/marker"
	"github.com/pkordes/eventmap/internal/repo"
	"github.com/pkordes/eventmap/internal/service"
)

type fixture struct {
	slots *repo.MemorySlotRepo
	store *service.EventStore
	scene *mapview.Scene
	ctrl  *service.SyncController
	now   *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	current := now
	f := &fixture{
		slots: repo.NewMemorySlotRepo(),
		scene: mapview.NewScene(),
		now:   &current,
	}
	f.store = newStore(f.slots)
	f.ctrl = service.NewSyncController(f.store, f.scene, clock.Func(func() time.Time { return *f.now }), quietLog)
	return f
}

// colourOf returns the colour of the marker drawn for an event.
func (f *fixture) colourOf(t *testing.T, eventID string) string {
	t.Helper()
	for _, feat := range f.scene.FeatureCollection().Features {
		if feat.Properties.EventID == eventID {
			return feat.Properties.Color
		}
	}
	t.Fatalf("no marker for event %s", eventID)
	return ""
}

func TestSyncController_EndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.ctrl.SubmitCreate(ctx, domain.EventFields{
		Title:       "A",
		Description: "first",
		StartDate:   now.Add(100 * time.Hour).Format(time.RFC3339),
		EndDate:     now.Add(102 * time.Hour).Format(time.RFC3339),
		Latitude:    "42.68",
		Longitude:   "2.79",
	})
	require.NoError(t, err)
	events := f.ctrl.Events()
	require.Len(t, events, 1)
	assert.Equal(t, domain.CategoryUpcomingFar, events[0].Status.Category)
	assert.Equal(t, "green", f.colourOf(t, a.ID))

	b, err := f.ctrl.SubmitCreate(ctx, validFields(now.Add(-time.Hour)))
	require.NoError(t, err)
	require.Len(t, f.store.All(), 2)
	assert.Equal(t, 2, f.scene.Len())
	assert.Equal(t, "red", f.colourOf(t, b.ID))

	require.NoError(t, f.ctrl.Delete(ctx, a.ID))
	all := f.store.All()
	require.Len(t, all, 1)
	assert.Equal(t, b.ID, all[0].ID)
	assert.Equal(t, 1, f.scene.Len())
	assert.Equal(t, 1, f.ctrl.MarkerCount())
}

func TestSyncController_Load_DrawsPersisted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _ = f.ctrl.SubmitCreate(ctx, validFields(now))
	_, _ = f.ctrl.SubmitCreate(ctx, validFields(now))

	scene := mapview.NewScene()
	ctrl := service.NewSyncController(newStore(f.slots), scene, clock.NewFixed(now), quietLog)
	ctrl.Load(ctx)

	assert.Equal(t, 2, scene.Len())
	assert.Len(t, ctrl.Events(), 2)
}

func TestSyncController_Load_CorruptSlot(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.slots.Put(context.Background(), slotName, []byte(`<<garbage>>`)))

	f.ctrl.Load(context.Background())

	assert.Empty(t, f.ctrl.Events())
	assert.Zero(t, f.scene.Len())
}

func TestSyncController_SubmitCreate_ValidationDoesNotRedraw(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _ = f.ctrl.SubmitCreate(ctx, validFields(now))
	before := f.scene.FeatureCollection()

	bad := validFields(now)
	bad.Latitude = "abc"
	_, err := f.ctrl.SubmitCreate(ctx, bad)

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, before, f.scene.FeatureCollection())
}

func TestSyncController_SubmitUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e, _ := f.ctrl.SubmitCreate(ctx, validFields(now.Add(100*time.Hour)))

	fields := validFields(now.Add(-time.Hour))
	fields.Title = "Moved"
	got, err := f.ctrl.SubmitUpdate(ctx, e.ID, fields)

	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID, "identity is preserved")
	assert.Equal(t, "Moved", f.store.All()[0].Title)
	assert.Equal(t, "red", f.colourOf(t, e.ID))
	assert.Equal(t, 1, f.scene.Len())
}

func TestSyncController_SubmitUpdate_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.ctrl.SubmitUpdate(context.Background(), "ghost", validFields(now))

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, f.store.All())
}

func TestSyncController_SubmitUpdate_UnknownIDBeforeValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.ctrl.SubmitUpdate(context.Background(), "ghost", domain.EventFields{Title: "no dates"})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrValidation)
}

func TestSyncController_Delete_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e, _ := f.ctrl.SubmitCreate(ctx, validFields(now))

	require.NoError(t, f.ctrl.Delete(ctx, e.ID))
	require.NoError(t, f.ctrl.Delete(ctx, e.ID))

	assert.Zero(t, f.scene.Len())
}

func TestSyncController_ClearAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e, _ := f.ctrl.SubmitCreate(ctx, validFields(now))
	_, _ = f.ctrl.SubmitCreate(ctx, validFields(now))
	_, _ = f.ctrl.BeginEdit(e.ID)

	require.NoError(t, f.ctrl.ClearAll(ctx))

	assert.Empty(t, f.store.All())
	assert.Zero(t, f.scene.Len())
	assert.False(t, f.slots.Has(slotName))
	_, pending := f.ctrl.PendingEdit()
	assert.False(t, pending)
}

func TestSyncController_BeginEdit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e, _ := f.ctrl.SubmitCreate(ctx, validFields(now))

	got, err := f.ctrl.BeginEdit(e.ID)

	require.NoError(t, err)
	assert.Equal(t, e, got)
	id, ok := f.ctrl.PendingEdit()
	assert.True(t, ok)
	assert.Equal(t, e.ID, id)
}

func TestSyncController_BeginEdit_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.ctrl.BeginEdit("ghost")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, ok := f.ctrl.PendingEdit()
	assert.False(t, ok)
}

func TestSyncController_BeginEdit_LastWriterWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, _ := f.ctrl.SubmitCreate(ctx, validFields(now))
	b, _ := f.ctrl.SubmitCreate(ctx, validFields(now))

	_, _ = f.ctrl.BeginEdit(a.ID)
	_, _ = f.ctrl.BeginEdit(b.ID)

	id, _ := f.ctrl.PendingEdit()
	assert.Equal(t, b.ID, id)
}

func TestSyncController_SubmitForm_CreatesWithoutPendingEdit(t *testing.T) {
	f := newFixture(t)

	_, err := f.ctrl.SubmitForm(context.Background(), validFields(now))

	require.NoError(t, err)
	assert.Len(t, f.store.All(), 1)
}

func TestSyncController_SubmitForm_UpdatesPendingEdit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e, _ := f.ctrl.SubmitCreate(ctx, validFields(now))
	_, _ = f.ctrl.BeginEdit(e.ID)

	fields := validFields(now)
	fields.Title = "Edited"
	got, err := f.ctrl.SubmitForm(ctx, fields)

	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)
	require.Len(t, f.store.All(), 1)
	assert.Equal(t, "Edited", f.store.All()[0].Title)
	_, pending := f.ctrl.PendingEdit()
	assert.False(t, pending, "a successful update finishes the edit")
}

func TestSyncController_SubmitForm_FailedUpdateKeepsPendingEdit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e, _ := f.ctrl.SubmitCreate(ctx, validFields(now))
	_, _ = f.ctrl.BeginEdit(e.ID)

	bad := validFields(now)
	bad.Title = ""
	_, err := f.ctrl.SubmitForm(ctx, bad)

	assert.ErrorIs(t, err, domain.ErrValidation)
	id, ok := f.ctrl.PendingEdit()
	assert.True(t, ok)
	assert.Equal(t, e.ID, id)
}

func TestSyncController_CancelEdit(t *testing.T) {
	f := newFixture(t)
	e, _ := f.ctrl.SubmitCreate(context.Background(), validFields(now))
	_, _ = f.ctrl.BeginEdit(e.ID)

	f.ctrl.CancelEdit()

	_, ok := f.ctrl.PendingEdit()
	assert.False(t, ok)
}

func TestSyncController_DeletingPendingEditClearsIt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e, _ := f.ctrl.SubmitCreate(ctx, validFields(now))
	_, _ = f.ctrl.BeginEdit(e.ID)

	require.NoError(t, f.ctrl.Delete(ctx, e.ID))

	_, ok := f.ctrl.PendingEdit()
	assert.False(t, ok)
}

func TestSyncController_Refresh_FollowsClock(t *testing.T) {
	f := newFixture(t)
	e, _ := f.ctrl.SubmitCreate(context.Background(), validFields(now.Add(73*time.Hour)))
	require.Equal(t, "green", f.colourOf(t, e.ID))

	*f.now = now.Add(2 * time.Hour)
	f.ctrl.Refresh(context.Background())
	assert.Equal(t, "orange", f.colourOf(t, e.ID))

	*f.now = now.Add(74 * time.Hour)
	f.ctrl.Refresh(context.Background())
	assert.Equal(t, "red", f.colourOf(t, e.ID))
	assert.Equal(t, 1, f.scene.Len())
}

// Popup actions go through the scene and reach the controller via the
// injected callbacks.
func TestSyncController_PopupActions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, _ := f.ctrl.SubmitCreate(ctx, validFields(now))
	b, _ := f.ctrl.SubmitCreate(ctx, validFields(now))

	var handleA, handleB string
	for _, feat := range f.scene.FeatureCollection().Features {
		switch feat.Properties.EventID {
		case a.ID:
			handleA = feat.ID
		case b.ID:
			handleB = feat.ID
		}
	}

	detail, err := f.scene.Click(marker.Handle(handleA))
	require.NoError(t, err)
	require.NoError(t, detail.Edit(ctx))
	id, _ := f.ctrl.PendingEdit()
	assert.Equal(t, a.ID, id)

	detail, err = f.scene.Click(marker.Handle(handleB))
	require.NoError(t, err)
	require.NoError(t, detail.Delete(ctx))
	assert.Equal(t, []string{a.ID}, ids(f.store.All()))
	assert.Equal(t, 1, f.scene.Len())

	// Popups of the previous generation are gone.
	_, err = f.scene.Click(marker.Handle(handleA))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSyncController_Event(t *testing.T) {
	f := newFixture(t)
	e, _ := f.ctrl.SubmitCreate(context.Background(), validFields(now.Add(time.Hour)))

	got, err := f.ctrl.Event(e.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryUpcomingSoon, got.Status.Category)

	_, err = f.ctrl.Event("ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSyncController_EditFields(t *testing.T) {
	f := newFixture(t)
	e, _ := f.ctrl.SubmitCreate(context.Background(), validFields(now))

	fields := f.ctrl.EditFields(e)

	assert.Equal(t, "2025-06-01T12:00", fields.StartDate)
	assert.Equal(t, "2025-06-01T14:00", fields.EndDate)
	assert.Equal(t, "42.68", fields.Latitude)
	assert.Equal(t, "2.79", fields.Longitude)
}
