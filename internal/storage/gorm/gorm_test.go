package gormstorage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/arenaharness/harness/internal/database"
	"github.com/arenaharness/harness/pkg/core"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	db, err := database.OpenSqlite(filepath.Join(t.TempDir(), "ledger.db"), zerolog.Nop())
	require.NoError(t, err)

	b := New(Dependencies{DB: db, Logger: zerolog.Nop()})
	require.NoError(t, b.Init())
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestInit_WithoutDatabase(t *testing.T) {
	b := New(Dependencies{Logger: zerolog.Nop()})
	assert.Error(t, b.Init())
}

func TestInit_UsesOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opened.db")
	opened := false
	b := New(Dependencies{
		Open: func() (*gorm.DB, error) {
			opened = true
			return database.OpenSqlite(path, zerolog.Nop())
		},
		Logger: zerolog.Nop(),
	})
	require.NoError(t, b.Init())
	defer b.Close()

	assert.True(t, opened)
	assert.NotNil(t, b.DB())
}

func TestNotReady(t *testing.T) {
	b := New(Dependencies{Logger: zerolog.Nop()})

	_, err := b.LoadMemory("alpha")
	assert.ErrorIs(t, err, errNotReady)
	assert.ErrorIs(t, b.SaveMemory("alpha", nil), errNotReady)
	assert.ErrorIs(t, b.RecordMatch(core.MatchRecord{}), errNotReady)
	_, err = b.Matches("alpha", 1)
	assert.ErrorIs(t, err, errNotReady)
	assert.NoError(t, b.Close())
}

func TestSaveMemory_Upserts(t *testing.T) {
	b := newTestBackend(t)

	slots, err := b.LoadMemory("alpha")
	require.NoError(t, err)
	assert.Nil(t, slots)

	require.NoError(t, b.SaveMemory("alpha", []int64{1, 2}))
	require.NoError(t, b.SaveMemory("alpha", []int64{3, 4, 5}))
	require.NoError(t, b.SaveMemory("bravo", []int64{9}))

	slots, err = b.LoadMemory("alpha")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4, 5}, slots)

	var count int64
	require.NoError(t, b.DB().Table("team_memories").Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestRecordMatch_AndList(t *testing.T) {
	b := newTestBackend(t)
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	first := core.MatchRecord{
		MatchID:    "m-1",
		Mode:       core.ModeCombat,
		Map:        "shrine",
		TeamA:      "alpha",
		TeamB:      "bravo",
		Verdict:    core.Verdict{Winner: core.SideA, Cause: core.CauseDestroyed, Round: 120, Decided: true},
		WinnerTeam: "alpha",
		SpawnedA:   []int32{7, 8, 9},
		SpawnedB:   []int32{10, 11, 12},
		StartedAt:  base,
		Duration:   3 * time.Second,
	}
	second := core.MatchRecord{
		MatchID:   "m-2",
		Mode:      core.ModeNavigation,
		Map:       "shrine",
		TeamA:     "alpha",
		UnitType:  "SCOUT",
		Verdict:   core.Verdict{Winner: core.SideA, Cause: core.CauseDetected, Round: 42, Decided: true},
		ProbeID:   7,
		TargetID:  8,
		StartedAt: base.Add(time.Minute),
	}
	require.NoError(t, b.RecordMatch(first))
	require.NoError(t, b.RecordMatch(second))

	got, err := b.Matches("alpha", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "m-2", got[0].MatchID)
	assert.Equal(t, core.CauseDetected, got[0].Verdict.Cause)
	assert.Equal(t, int32(8), got[0].TargetID)
	assert.Equal(t, "m-1", got[1].MatchID)
	assert.Equal(t, []int32{7, 8, 9}, got[1].SpawnedA)
	assert.Equal(t, 3*time.Second, got[1].Duration)

	bravo, err := b.Matches("bravo", 0)
	require.NoError(t, err)
	require.Len(t, bravo, 1)
	assert.Equal(t, "m-1", bravo[0].MatchID)

	// match ids are unique
	assert.Error(t, b.RecordMatch(first))
}
