package storage

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/arenaharness/harness/internal/config"
	gormstorage "github.com/arenaharness/harness/internal/storage/gorm"
	"github.com/arenaharness/harness/internal/storage/memory"
	"github.com/arenaharness/harness/internal/storage/postgres"
	sqlitestorage "github.com/arenaharness/harness/internal/storage/sqlite"
)

var (
	_ Backend = (*memory.Backend)(nil)
	_ Backend = (*gormstorage.Backend)(nil)
	_ Backend = (*sqlitestorage.Backend)(nil)
	_ Backend = (*postgres.Backend)(nil)
)

// NewBackend creates a storage backend based on configuration.
// The backend is not initialized.
func NewBackend(cfg config.StorageConfig, log zerolog.Logger) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		return postgres.New(cfg.Postgres, log), nil
	case "sqlite":
		return sqlitestorage.New(sqlitestorage.Config{Path: cfg.SQLite.Path}, log), nil
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
