package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pkordes/eventmap/internal/clock"
	"github.com/pkordes/eventmap/internal/domain"
	"github.com/pkordes/eventmap/internal/marker"
	"github.com/pkordes/eventmap/internal/temporal"
)

// SyncController is the only writer of the event collection. Each operation
// mutates the store and then redraws the markers as one atomic unit, so the
// HTTP server and the refresh scheduler can call it concurrently.
type SyncController struct {
	store   *EventStore
	markers *marker.Registry
	clock   clock.Clock
	log     *slog.Logger

	mu          sync.Mutex
	pendingEdit string
}

// NewSyncController wires a controller over store, drawing on r. The marker
// registry is built here so its popup actions call back into the controller.
func NewSyncController(store *EventStore, r marker.Renderer, clk clock.Clock, log *slog.Logger) *SyncController {
	if log == nil {
		log = slog.Default()
	}
	c := &SyncController{store: store, clock: clk, log: log}
	c.markers = marker.NewRegistry(r, marker.Callbacks{
		OnEdit: func(_ context.Context, id string) error {
			_, err := c.BeginEdit(id)
			return err
		},
		OnDelete: func(ctx context.Context, id string) error {
			return c.Delete(ctx, id)
		},
	})
	return c
}

// Load reads the persisted collection and draws it.
func (c *SyncController) Load(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store.Load(ctx)
	c.resync()
}

// SubmitCreate creates an event from form values and redraws.
func (c *SyncController) SubmitCreate(ctx context.Context, f domain.EventFields) (domain.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.create(ctx, f)
}

// SubmitUpdate replaces event id with the form values and redraws. A pending
// edit of the same event is finished by this call.
func (c *SyncController) SubmitUpdate(ctx context.Context, id string, f domain.EventFields) (domain.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.update(ctx, id, f)
}

// SubmitForm is the single submit button of the event form: it updates the
// pending edit target if there is one, and creates otherwise.
func (c *SyncController) SubmitForm(ctx context.Context, f domain.EventFields) (domain.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pendingEdit != "" {
		return c.update(ctx, c.pendingEdit, f)
	}
	return c.create(ctx, f)
}

// Delete removes an event and redraws. Unknown IDs are a no-op.
func (c *SyncController) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.SyncController.Delete: %w", err)
	}
	if c.pendingEdit == id {
		c.pendingEdit = ""
	}
	c.resync()
	c.log.InfoContext(ctx, "event deleted", "id", id)
	return nil
}

// ClearAll removes every event, the persisted slot and every marker.
func (c *SyncController) ClearAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("service.SyncController.ClearAll: %w", err)
	}
	c.pendingEdit = ""
	c.markers.ClearAll()
	c.log.InfoContext(ctx, "all events cleared")
	return nil
}

// BeginEdit returns the event for pre-filling the form and marks it as the
// pending edit target. Starting a new edit replaces the previous target.
// Returns domain.ErrNotFound if the event does not exist.
func (c *SyncController) BeginEdit(id string) (domain.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, err := c.store.Get(id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("service.SyncController.BeginEdit: %w", err)
	}
	if c.pendingEdit != "" && c.pendingEdit != id {
		c.log.Info("pending edit replaced", "previous", c.pendingEdit, "id", id)
	}
	c.pendingEdit = id
	return e, nil
}

// CancelEdit drops the pending edit target, if any.
func (c *SyncController) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingEdit = ""
}

// PendingEdit reports the current edit target.
func (c *SyncController) PendingEdit() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingEdit, c.pendingEdit != ""
}

// Refresh redraws every marker against the current time, so colours follow
// the clock without reloading anything.
func (c *SyncController) Refresh(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resync()
	c.log.DebugContext(ctx, "markers refreshed", "count", c.markers.Len())
}

// Events returns every event with its status at the current time, in
// insertion order.
func (c *SyncController) Events() []domain.EventStatus {
	now := c.clock.Now()
	events := c.store.All()
	out := make([]domain.EventStatus, len(events))
	for i, e := range events {
		out[i] = domain.EventStatus{Event: e, Status: temporal.ClassifyEvent(e, now)}
	}
	return out
}

// Event returns one event with its status at the current time.
// Returns domain.ErrNotFound if it does not exist.
func (c *SyncController) Event(id string) (domain.EventStatus, error) {
	e, err := c.store.Get(id)
	if err != nil {
		return domain.EventStatus{}, fmt.Errorf("service.SyncController.Event: %w", err)
	}
	return domain.EventStatus{Event: e, Status: temporal.ClassifyEvent(e, c.clock.Now())}, nil
}

// EditFields returns the form values of an event, in the store's location.
func (c *SyncController) EditFields(e domain.Event) domain.EventFields {
	return FieldsFromEvent(e, c.store.Location())
}

// MarkerCount is the number of markers currently drawn.
func (c *SyncController) MarkerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.markers.Len()
}

func (c *SyncController) create(ctx context.Context, f domain.EventFields) (domain.Event, error) {
	e, err := c.store.Create(ctx, f)
	if err != nil {
		return domain.Event{}, fmt.Errorf("service.SyncController.SubmitCreate: %w", err)
	}
	c.resync()
	c.log.InfoContext(ctx, "event created", "id", e.ID, "title", e.Title)
	return e, nil
}

func (c *SyncController) update(ctx context.Context, id string, f domain.EventFields) (domain.Event, error) {
	// An unknown target is reported before any problem with the form.
	if _, err := c.store.Get(id); err != nil {
		return domain.Event{}, fmt.Errorf("service.SyncController.SubmitUpdate: %w", err)
	}
	e, err := c.store.ParseFields(f)
	if err != nil {
		return domain.Event{}, fmt.Errorf("service.SyncController.SubmitUpdate: %w", err)
	}
	e.ID = id
	if err := c.store.Update(ctx, e); err != nil {
		return domain.Event{}, fmt.Errorf("service.SyncController.SubmitUpdate: %w", err)
	}
	if c.pendingEdit == id {
		c.pendingEdit = ""
	}
	c.resync()
	c.log.InfoContext(ctx, "event updated", "id", id)
	return e, nil
}

// resync redraws from the store. Caller holds c.mu.
func (c *SyncController) resync() {
	c.markers.Resync(c.store.All(), c.clock.Now())
}
