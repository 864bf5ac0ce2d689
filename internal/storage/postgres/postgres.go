// Package postgres implements the ledger on PostgreSQL.
// It wraps the GORM backend via composition.
package postgres

import (
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/arenaharness/harness/internal/config"
	"github.com/arenaharness/harness/internal/database"
	gormstorage "github.com/arenaharness/harness/internal/storage/gorm"
)

// Backend is the GORM backend connected to Postgres.
type Backend struct {
	*gormstorage.Backend
	cfg config.PostgresConfig
}

// New creates a Postgres backend. The connection is made by Init.
func New(cfg config.PostgresConfig, log zerolog.Logger) *Backend {
	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{
			Open: func() (*gorm.DB, error) {
				return database.OpenPostgres(cfg, log)
			},
			Logger: log,
		}),
		cfg: cfg,
	}
}

// DSN is the connection string Init will use.
func (b *Backend) DSN() string {
	return database.PostgresDSN(b.cfg)
}
