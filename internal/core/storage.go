package core

import (
	"context"
	"fmt"
	"log/slog"

	"pedigreecore/internal/infra/persistence/badger"
	"pedigreecore/internal/infra/persistence/memory"
	"pedigreecore/internal/infra/persistence/postgres"
	"pedigreecore/internal/infra/persistence/sqlite"
	"pedigreecore/pkg/domain"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // ephemeral
	StorageSQLite   StorageDriver = "sqlite"   // embedded file, the default
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
	StorageBadger   StorageDriver = "badger"   // embedded key-value store
)

// StorageConfig selects and parameterises a backend.
type StorageConfig struct {
	Driver      StorageDriver
	SQLitePath  string
	PostgresDSN string
	BadgerPath  string
	Logger      *slog.Logger
}

// OpenPersistentStore opens the configured backend. The returned close
// function releases it and is never nil.
func OpenPersistentStore(ctx context.Context, cfg StorageConfig, engine *domain.RulesEngine) (PersistentStore, func() error, error) {
	noClose := func() error { return nil }
	switch cfg.Driver {
	case StorageMemory:
		return memory.NewStore(engine), noClose, nil
	case "", StorageSQLite:
		st, err := sqlite.NewStore(cfg.SQLitePath, engine)
		if err != nil {
			return nil, noClose, err
		}
		return st, st.Close, nil
	case StoragePostgres:
		st, err := postgres.NewStore(ctx, cfg.PostgresDSN, engine)
		if err != nil {
			return nil, noClose, err
		}
		return st, st.Close, nil
	case StorageBadger:
		st, err := badger.NewStore(badger.Config{Path: cfg.BadgerPath, Logger: cfg.Logger}, engine)
		if err != nil {
			return nil, noClose, err
		}
		return st, st.Close, nil
	default:
		return nil, noClose, fmt.Errorf("unknown storage driver %s", cfg.Driver)
	}
}
