package app

import (
	"context"
	"fmt"

	"erpledger/internal/config"
	"erpledger/internal/infrastructure/storage/memory"
	"erpledger/internal/infrastructure/storage/postgres"
	"erpledger/internal/infrastructure/storage/snapshot"
	"erpledger/internal/infrastructure/storage/sqlite"
	"erpledger/pkg/logger"
)

// Storage is an opened store together with its backend.
type Storage struct {
	Store *memory.Store
	// Driver is the configured STORAGE_DRIVER.
	Driver string
	// Ping probes the backend; nil for the memory driver.
	Ping func(ctx context.Context) error

	backend snapshot.Store
}

// Close releases the backend.
func (s *Storage) Close() error {
	if s.backend == nil {
		return nil
	}
	return s.backend.Close()
}

// OpenStorage builds the store for cfg.StorageDriver and loads any persisted state.
func OpenStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg.StorageDriver == config.DriverMemory {
		return &Storage{Store: memory.New(), Driver: cfg.StorageDriver}, nil
	}

	codec, err := snapshot.NewCodec(snapshot.DefaultCompressThreshold)
	if err != nil {
		return nil, err
	}

	out := &Storage{Driver: cfg.StorageDriver}
	switch cfg.StorageDriver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		out.backend = db
		out.Ping = db.Ping
		logger.Info(ctx, "sqlite storage opened", "path", db.Path())

	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
		if err != nil {
			return nil, err
		}
		ps := postgres.NewSnapshotStore(pool, postgres.NewTxManager(pool), postgres.DefaultStateTable)
		if err := ps.EnsureSchema(ctx); err != nil {
			_ = ps.Close()
			return nil, err
		}
		out.backend = ps
		out.Ping = pool.Ping

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	out.Store = memory.New(memory.WithPersistence(out.backend, codec))
	if err := out.Store.Load(ctx); err != nil {
		_ = out.Close()
		return nil, err
	}
	return out, nil
}
