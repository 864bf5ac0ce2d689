// Package gormstorage implements the ledger on top of GORM. The SQLite and
// Postgres backends only differ in how they open the connection.
package gormstorage

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/arenaharness/harness/internal/database"
	"github.com/arenaharness/harness/internal/model"
	"github.com/arenaharness/harness/internal/model/convert"
	"github.com/arenaharness/harness/pkg/core"
)

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	// DB is used as is when set.
	DB *gorm.DB
	// Open is called by Init when DB is nil.
	Open   func() (*gorm.DB, error)
	Logger zerolog.Logger
}

// Backend implements storage.Backend using GORM.
type Backend struct {
	deps    Dependencies
	dbReady bool
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	return &Backend{deps: deps}
}

var errNotReady = errors.New("storage backend not initialized")

// Init opens the connection if needed and runs schema migration.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		if b.deps.Open == nil {
			return errors.New("no database and no way to open one")
		}
		db, err := b.deps.Open()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		b.deps.DB = db
	}

	if err := database.Setup(b.deps.DB, b.deps.Logger); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}
	b.dbReady = true
	return nil
}

// Close closes the underlying connection.
func (b *Backend) Close() error {
	if b.deps.DB == nil {
		return nil
	}
	sqlDB, err := b.deps.DB.DB()
	if err != nil {
		return err
	}
	b.dbReady = false
	return sqlDB.Close()
}

// DB exposes the connection, nil before Init.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

func (b *Backend) LoadMemory(team string) ([]int64, error) {
	if !b.dbReady {
		return nil, errNotReady
	}
	var rows []model.TeamMemory
	if err := b.deps.DB.Where("team = ?", team).Limit(1).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("loading memory for %s: %w", team, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return convert.JSONToSlots(rows[0].Slots)
}

func (b *Backend) SaveMemory(team string, slots []int64) error {
	if !b.dbReady {
		return errNotReady
	}
	raw, err := convert.SlotsToJSON(slots)
	if err != nil {
		return err
	}
	row := model.TeamMemory{Team: team, Slots: raw}
	err = b.deps.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "team"}},
		DoUpdates: clause.AssignmentColumns([]string{"slots", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("saving memory for %s: %w", team, err)
	}
	b.deps.Logger.Debug().Str("team", team).Int("slots", len(slots)).Msg("Saved team memory")
	return nil
}

func (b *Backend) RecordMatch(rec core.MatchRecord) error {
	if !b.dbReady {
		return errNotReady
	}
	row, err := convert.MatchRecordToModel(rec)
	if err != nil {
		return err
	}
	if err := b.deps.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("recording match %s: %w", rec.MatchID, err)
	}
	b.deps.Logger.Info().
		Str("match", rec.MatchID).
		Str("mode", string(rec.Mode)).
		Str("winner", rec.Verdict.Winner.String()).
		Msg("Recorded match")
	return nil
}

func (b *Backend) Matches(team string, limit int) ([]core.MatchRecord, error) {
	if !b.dbReady {
		return nil, errNotReady
	}
	q := b.deps.DB.Where("team_a = ? OR team_b = ?", team, team).Order("started_at desc, id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []model.MatchResult
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing matches for %s: %w", team, err)
	}

	out := make([]core.MatchRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := convert.MatchResultToCore(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
