package repo

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkordes/eventmap/internal/domain"
)

// MemorySlotRepo is a process-local SlotRepo. It backs STORAGE=memory and the
// service tests. Payloads are copied in and out.
type MemorySlotRepo struct {
	mu    sync.Mutex
	slots map[string][]byte
}

// NewMemorySlotRepo returns an empty in-memory SlotRepo.
func NewMemorySlotRepo() *MemorySlotRepo {
	return &MemorySlotRepo{slots: make(map[string][]byte)}
}

// Get returns a copy of the named payload.
func (r *MemorySlotRepo) Get(_ context.Context, name string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.slots[name]
	if !ok {
		return nil, fmt.Errorf("repo.SlotRepo.Get: %w", domain.ErrNotFound)
	}
	return append([]byte(nil), p...), nil
}

// Put stores a copy of payload.
func (r *MemorySlotRepo) Put(_ context.Context, name string, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.slots[name] = append([]byte(nil), payload...)
	return nil
}

// Delete drops the named slot.
func (r *MemorySlotRepo) Delete(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.slots, name)
	return nil
}

// Has reports whether the slot exists, which lets tests tell "no slot" from
// "empty list".
func (r *MemorySlotRepo) Has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.slots[name]
	return ok
}
