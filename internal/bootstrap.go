package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/starford/apptcal/internal/appointments"
	"github.com/starford/apptcal/internal/index"
	"github.com/starford/apptcal/internal/storage"
)

// NewLogger returns a JSON slog logger writing to w at level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// OpenStore builds the storage provider selected by cfg. The returned close
// function releases driver resources and is never nil.
func OpenStore(ctx context.Context, cfg StorageConfig, logger *slog.Logger) (storage.Provider, func(), error) {
	switch cfg.Driver {
	case DriverPostgres:
		pool, err := storage.OpenPostgres(ctx, cfg.DSN)
		if err != nil {
			return nil, func() {}, err
		}
		pg := storage.NewPostgres(pool, logger)
		if err := pg.Migrate(ctx); err != nil {
			pool.Close()
			return nil, func() {}, err
		}
		return pg, pool.Close, nil
	default:
		file, err := storage.NewFile(cfg.Path, logger)
		if err != nil {
			return nil, func() {}, err
		}
		return file, func() {}, nil
	}
}

// OpenService opens the configured store and returns a loaded appointment
// service on top of it.
func OpenService(ctx context.Context, cfg *Config, logger *slog.Logger) (*appointments.Service, storage.Provider, func(), error) {
	store, closeStore, err := OpenStore(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, nil, closeStore, fmt.Errorf("init storage: %w", err)
	}
	svc := appointments.NewService(store, logger)
	svc.Load(ctx)
	return svc, store, closeStore, nil
}

// OpenIndex opens the SQLite index, brings it up to date with svc and keeps
// it in sync on every later change.
func OpenIndex(cfg SQLiteConfig, svc *appointments.Service, logger *slog.Logger) (*index.DB, error) {
	db, err := index.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}
	if err := index.Sync(db, svc, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}
	svc.Subscribe(func(c appointments.Change) {
		if err := index.Sync(db, svc, logger); err != nil {
			logger.Warn("index sync failed",
				slog.String("change", string(c.Kind)),
				slog.String("error", err.Error()))
		}
	})
	return db, nil
}
