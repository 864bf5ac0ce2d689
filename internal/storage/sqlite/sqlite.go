// Package sqlitestorage implements the ledger in a local SQLite file.
// It wraps the GORM backend via composition.
package sqlitestorage

import (
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/arenaharness/harness/internal/database"
	gormstorage "github.com/arenaharness/harness/internal/storage/gorm"
)

// Config holds configuration for the SQLite storage backend.
type Config struct {
	// Path is the database file, or database.MemoryPath.
	Path string
}

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	cfg Config
}

// New creates a new SQLite storage backend. The file is opened by Init.
func New(cfg Config, log zerolog.Logger) *Backend {
	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{
			Open: func() (*gorm.DB, error) {
				return database.OpenSqlite(cfg.Path, log)
			},
			Logger: log,
		}),
		cfg: cfg,
	}
}

// Backup writes a consistent copy of the ledger to path.
func (b *Backend) Backup(path string) error {
	db := b.DB()
	if db == nil {
		return errors.New("storage backend not initialized")
	}
	return database.Backup(db, path)
}
