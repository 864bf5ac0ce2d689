// Package database opens the GORM connections used by the match ledger.
package database

import (
	"fmt"
	"os"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/arenaharness/harness/internal/config"
	"github.com/arenaharness/harness/internal/model"
)

// MemoryPath opens a private in-memory SQLite database.
const MemoryPath = ":memory:"

// SchemaVersion is stored in harness_infos on first setup.
const SchemaVersion = 1

// PostgresDSN builds a connection string from cfg.
func PostgresDSN(cfg config.PostgresConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=%s`,
		cfg.Host,
		cfg.Port,
		cfg.Username,
		cfg.Password,
		cfg.Database,
		sslMode,
	)
}

// OpenPostgres returns a connection to the Postgres database and checks it.
func OpenPostgres(cfg config.PostgresConfig, log zerolog.Logger) (*gorm.DB, error) {
	log.Debug().Str("host", cfg.Host).Str("database", cfg.Database).Msg("Connecting to Postgres DB")

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  PostgresDSN(cfg),
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to validate connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)

	log.Info().Msg("Connected to database")
	return db, nil
}

// OpenSqlite returns a connection to a SQLite database file, creating it if
// needed. MemoryPath opens a throwaway in-memory database.
func OpenSqlite(path string, log zerolog.Logger) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite file path not set")
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	// an in-memory database lives only as long as its single connection
	if path == MemoryPath {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sql interface: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA busy_timeout = 5000;",
		"PRAGMA temp_store = MEMORY;",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("error setting PRAGMA: %s", err)
		}
	}

	log.Info().Str("path", path).Msg("Using local SQLite DB")
	return db, nil
}

// Setup migrates tables and records the schema version if it is missing.
func Setup(db *gorm.DB, log zerolog.Logger) error {
	log.Info().Msg("Migrating schema")
	if err := db.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	var count int64
	if err := db.Model(&model.HarnessInfo{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to read harness_infos: %w", err)
	}
	if count == 0 {
		err := db.Create(&model.HarnessInfo{
			SchemaVersion: SchemaVersion,
			Description:   "arena harness match ledger",
		}).Error
		if err != nil {
			return fmt.Errorf("failed to create harness_infos entry: %w", err)
		}
	}

	log.Info().Msg("Database setup complete")
	return nil
}

// Backup copies a SQLite database to path with VACUUM INTO, replacing any
// existing file.
func Backup(db *gorm.DB, path string) error {
	if path == "" {
		return fmt.Errorf("sqlite file path not set")
	}

	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("error removing existing DB file: %s", err)
		}
	}

	if err := db.Exec("VACUUM INTO ?;", path).Error; err != nil {
		return fmt.Errorf("error dumping DB to disk: %s", err)
	}
	return nil
}
