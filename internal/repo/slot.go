// Package repo contains the durable storage behind the event collection.
// The whole collection lives in one named slot; each backend stores the
// encoded payload as opaque bytes and knows nothing about events.
// No business logic lives here, only I/O.
package repo

import "context"

// SlotRepo stores named payloads.
// The service layer depends on this interface, not on a concrete backend,
// which allows the store to be unit-tested against the in-memory slot.
type SlotRepo interface {
	// Get returns the payload stored under name.
	// Returns domain.ErrNotFound if the slot does not exist.
	Get(ctx context.Context, name string) ([]byte, error)

	// Put creates or replaces the slot. The write is complete when Put returns.
	Put(ctx context.Context, name string, payload []byte) error

	// Delete removes the slot entirely. Deleting an absent slot is not an error.
	Delete(ctx context.Context, name string) error
}
