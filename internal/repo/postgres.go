package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/eventmap/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgSlotRepo is the Postgres implementation of SlotRepo.
// Payloads are stored as text rather than jsonb so that a corrupt payload is
// kept verbatim and detected by the decoder, not rejected by the database.
type pgSlotRepo struct {
	db db
}

// NewPGSlotRepo constructs a SlotRepo backed by the event_slots table.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPGSlotRepo(db db) SlotRepo {
	return &pgSlotRepo{db: db}
}

// Get reads the payload column of the named row.
func (r *pgSlotRepo) Get(ctx context.Context, name string) ([]byte, error) {
	const q = `SELECT payload FROM event_slots WHERE name = @name`

	var payload string
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"name": name}).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("repo.SlotRepo.Get: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("repo.SlotRepo.Get: %w", err)
	}
	return []byte(payload), nil
}

// Put upserts the named row.
func (r *pgSlotRepo) Put(ctx context.Context, name string, payload []byte) error {
	const q = `
		INSERT INTO event_slots (name, payload)
		VALUES (@name, @payload)
		ON CONFLICT (name) DO UPDATE
		SET payload    = EXCLUDED.payload,
		    updated_at = now()`

	_, err := r.db.Exec(ctx, q, pgx.NamedArgs{"name": name, "payload": string(payload)})
	if err != nil {
		return fmt.Errorf("repo.SlotRepo.Put: %w", err)
	}
	return nil
}

// Delete removes the named row if it exists.
func (r *pgSlotRepo) Delete(ctx context.Context, name string) error {
	const q = `DELETE FROM event_slots WHERE name = @name`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"name": name}); err != nil {
		return fmt.Errorf("repo.SlotRepo.Delete: %w", err)
	}
	return nil
}
