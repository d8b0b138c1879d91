// Package app wires configuration into the running engine. Both the API
// server and eventctl build their storage, store and controller here so the
// two binaries always agree on where events live.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/pkordes/eventmap/internal/clock"
	"github.com/pkordes/eventmap/internal/config"
	"github.com/pkordes/eventmap/internal/mapview"
	"github.com/pkordes/eventmap/internal/repo"
	"github.com/pkordes/eventmap/internal/service"
	"github.com/pkordes/eventmap/migrations"
)

// App is the assembled engine.
type App struct {
	Store      *service.EventStore
	Scene      *mapview.Scene
	Controller *service.SyncController
	Export     *service.ExportService
	Clock      clock.Clock

	closers []func()
}

// NewLogger builds the process logger. The server logs JSON, the CLI text.
// An unknown level falls back to info.
func NewLogger(w io.Writer, level string, asJSON bool) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if asJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// New opens the configured storage and builds the engine on top of it.
// The collection is loaded and drawn before New returns. Call Close when done.
func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	codec, err := service.CodecFor(cfg.DataFormat)
	if err != nil {
		return nil, fmt.Errorf("app.New: %w", err)
	}

	a := &App{Clock: clock.NewSystem()}
	slots, err := a.openSlots(ctx, cfg, codec.Ext(), log)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Store = service.NewEventStore(slots,
		service.WithCodec(codec),
		service.WithSlotName(cfg.SlotName),
		service.WithLocation(cfg.Location()),
		service.WithLogger(log),
	)
	a.Scene = mapview.NewScene()
	a.Controller = service.NewSyncController(a.Store, a.Scene, a.Clock, log)
	a.Export = service.NewExportService(a.Store, a.Clock)

	a.Controller.Load(ctx)
	log.Info("engine ready", "storage", cfg.Storage, "format", codec.Ext(), "markers", a.Scene.Len())
	return a, nil
}

// Close releases the storage backend.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) openSlots(ctx context.Context, cfg config.Config, ext string, log *slog.Logger) (repo.SlotRepo, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		log.Warn("using in-memory storage; events are lost on exit")
		return repo.NewMemorySlotRepo(), nil

	case config.StoragePostgres:
		// pgxpool.New does not open connections immediately; Ping does.
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("app.New: create database pool: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		if err := pool.Ping(ctx); err != nil {
			return nil, fmt.Errorf("app.New: connect to database: %w", err)
		}

		sqlDB := stdlib.OpenDBFromPool(pool)
		a.closers = append(a.closers, func() { _ = sqlDB.Close() })
		n, err := migrations.Up(ctx, sqlDB)
		if err != nil {
			return nil, fmt.Errorf("app.New: %w", err)
		}
		log.Info("database ready", "migrations_applied", n)
		return repo.NewPGSlotRepo(pool), nil

	default:
		slots, err := repo.NewFileSlotRepo(cfg.DataDir, ext)
		if err != nil {
			return nil, fmt.Errorf("app.New: %w", err)
		}
		return slots, nil
	}
}
