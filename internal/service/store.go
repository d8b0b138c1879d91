// Package service implements the business logic of the event map: the
// authoritative event collection (EventStore), the orchestrator that keeps
// map markers in step with it (SyncController) and the export assembly.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/eventmap/internal/domain"
	"github.com/pkordes/eventmap/internal/repo"
)

// DefaultSlotName is the slot the collection lives in unless configured
// otherwise. It matches the key the browser version used.
const DefaultSlotName = "eventDataList"

// EventStore owns the event collection and keeps it identical to the
// persisted slot. Every mutation encodes the would-be collection, writes it,
// and only then swaps it in, so a failed write leaves memory untouched.
// One mutex covers each read-modify-write.
type EventStore struct {
	slots repo.SlotRepo
	codec Codec
	slot  string
	loc   *time.Location
	log   *slog.Logger
	newID func() string

	mu     sync.Mutex
	events []domain.Event
}

// StoreOption configures an EventStore.
type StoreOption func(*EventStore)

// WithCodec sets the payload encoding. Defaults to JSON.
func WithCodec(c Codec) StoreOption {
	return func(s *EventStore) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithSlotName overrides DefaultSlotName.
func WithSlotName(name string) StoreOption {
	return func(s *EventStore) {
		if name != "" {
			s.slot = name
		}
	}
}

// WithLocation sets the zone used for form date-times that carry no offset.
// Defaults to time.Local.
func WithLocation(loc *time.Location) StoreOption {
	return func(s *EventStore) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *EventStore) {
		if l != nil {
			s.log = l
		}
	}
}

// WithIDGenerator replaces uuid.NewString, for tests that need fixed IDs.
func WithIDGenerator(fn func() string) StoreOption {
	return func(s *EventStore) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewEventStore constructs an empty EventStore backed by slots.
// Call Load to read the persisted collection.
func NewEventStore(slots repo.SlotRepo, opts ...StoreOption) *EventStore {
	s := &EventStore{
		slots: slots,
		codec: JSONCodec{},
		slot:  DefaultSlotName,
		loc:   time.Local,
		log:   slog.Default(),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location is the zone naive form date-times are read in.
func (s *EventStore) Location() *time.Location { return s.loc }

// Load replaces the in-memory collection with the persisted one.
// It never fails: a missing, unreadable or corrupt payload yields an empty
// collection. Individual records that cannot be normalized are dropped,
// records without an ID get one, and duplicate IDs keep their first record.
func (s *EventStore) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = s.read(ctx)
	s.log.InfoContext(ctx, "events loaded", "slot", s.slot, "count", len(s.events))
}

func (s *EventStore) read(ctx context.Context) []domain.Event {
	data, err := s.slots.Get(ctx, s.slot)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.WarnContext(ctx, "event slot unreadable; starting empty", "slot", s.slot, "error", err)
		}
		return nil
	}

	records, err := s.codec.Decode(data)
	if err != nil {
		s.log.WarnContext(ctx, "event slot corrupt; starting empty", "slot", s.slot, "error", err)
		return nil
	}

	events := make([]domain.Event, 0, len(records))
	seen := make(map[string]bool, len(records))
	for i, r := range records {
		e, err := fromRecord(r, s.loc)
		if err != nil {
			s.log.WarnContext(ctx, "dropping unreadable event record", "index", i, "id", r.ID, "error", err)
			continue
		}
		if e.ID == "" {
			e.ID = s.uniqueID(seen)
		}
		if seen[e.ID] {
			s.log.WarnContext(ctx, "dropping duplicate event record", "index", i, "id", e.ID)
			continue
		}
		seen[e.ID] = true
		events = append(events, e)
	}
	return events
}

// ParseFields parses raw form values into an event without an ID, reading
// naive date-times in the store's location.
// Returns domain.ErrValidation if a field is missing or malformed.
func (s *EventStore) ParseFields(f domain.EventFields) (domain.Event, error) {
	return parseFields(f, s.loc)
}

// Create validates the form values, assigns a fresh ID, appends and persists.
// Returns domain.ErrValidation for bad input and domain.ErrPersistence if the
// write failed, in which case the collection is unchanged.
func (s *EventStore) Create(ctx context.Context, f domain.EventFields) (domain.Event, error) {
	e, err := parseFields(f, s.loc)
	if err != nil {
		return domain.Event{}, fmt.Errorf("service.EventStore.Create: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = s.uniqueID(s.ids())
	next := append(slices.Clone(s.events), e)
	if err := s.commit(ctx, next); err != nil {
		return domain.Event{}, fmt.Errorf("service.EventStore.Create: %w", err)
	}
	return e, nil
}

// Update replaces the event with the same ID in place, keeping its position.
// Returns domain.ErrValidation for an invalid event, domain.ErrNotFound if no
// event has that ID, and domain.ErrPersistence if the write failed.
func (s *EventStore) Update(ctx context.Context, e domain.Event) error {
	if err := validateEvent(e); err != nil {
		return fmt.Errorf("service.EventStore.Update: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(e.ID)
	if i < 0 {
		return fmt.Errorf("service.EventStore.Update: event %q: %w", e.ID, domain.ErrNotFound)
	}
	next := slices.Clone(s.events)
	next[i] = e
	if err := s.commit(ctx, next); err != nil {
		return fmt.Errorf("service.EventStore.Update: %w", err)
	}
	return nil
}

// Delete removes the event with the given ID. Unknown IDs are a no-op.
// Returns domain.ErrPersistence if the write failed.
func (s *EventStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return nil
	}
	next := slices.Delete(slices.Clone(s.events), i, i+1)
	if err := s.commit(ctx, next); err != nil {
		return fmt.Errorf("service.EventStore.Delete: %w", err)
	}
	return nil
}

// Clear empties the collection and removes the slot itself, so the next Load
// sees "never written" rather than an empty list.
func (s *EventStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.slots.Delete(ctx, s.slot); err != nil {
		return fmt.Errorf("service.EventStore.Clear: %w: %w", domain.ErrPersistence, err)
	}
	s.events = nil
	return nil
}

// All returns a copy of the collection in insertion order.
// Always returns a non-nil slice so callers can safely range over it.
func (s *EventStore) All() []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Get returns the event with the given ID.
// Returns domain.ErrNotFound if there is none.
func (s *EventStore) Get(id string) (domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return domain.Event{}, fmt.Errorf("service.EventStore.Get: event %q: %w", id, domain.ErrNotFound)
	}
	return s.events[i], nil
}

// commit persists next and, on success, makes it the collection.
// Caller holds s.mu.
func (s *EventStore) commit(ctx context.Context, next []domain.Event) error {
	records := make([]Record, len(next))
	for i, e := range next {
		records[i] = toRecord(e)
	}
	data, err := s.codec.Encode(records)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	if err := s.slots.Put(ctx, s.slot, data); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	s.events = next
	return nil
}

func (s *EventStore) index(id string) int {
	return slices.IndexFunc(s.events, func(e domain.Event) bool { return e.ID == id })
}

func (s *EventStore) ids() map[string]bool {
	ids := make(map[string]bool, len(s.events))
	for _, e := range s.events {
		ids[e.ID] = true
	}
	return ids
}

// uniqueID draws IDs until one is not in taken.
func (s *EventStore) uniqueID(taken map[string]bool) string {
	for {
		id := s.newID()
		if id != "" && !taken[id] {
			return id
		}
	}
}
