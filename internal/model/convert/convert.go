// Package convert maps between core values and GORM models.
package convert

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/arenaharness/harness/internal/model"
	"github.com/arenaharness/harness/pkg/core"
	"gorm.io/datatypes"
)

// MatchRecordToModel converts a core.MatchRecord to a GORM MatchResult.
func MatchRecordToModel(r core.MatchRecord) (model.MatchResult, error) {
	spawnedA, err := json.Marshal(nonNil(r.SpawnedA))
	if err != nil {
		return model.MatchResult{}, fmt.Errorf("encoding side A spawns: %w", err)
	}
	spawnedB, err := json.Marshal(nonNil(r.SpawnedB))
	if err != nil {
		return model.MatchResult{}, fmt.Errorf("encoding side B spawns: %w", err)
	}

	return model.MatchResult{
		MatchID:    r.MatchID,
		Mode:       string(r.Mode),
		MapName:    r.Map,
		TeamA:      r.TeamA,
		TeamB:      r.TeamB,
		UnitType:   r.UnitType,
		Winner:     r.Verdict.Winner.String(),
		WinnerTeam: r.WinnerTeam,
		Cause:      r.Verdict.Cause.String(),
		EndRound:   r.Verdict.Round,
		Decided:    r.Verdict.Decided,
		SpawnedA:   datatypes.JSON(spawnedA),
		SpawnedB:   datatypes.JSON(spawnedB),
		ProbeID:    r.ProbeID,
		TargetID:   r.TargetID,
		Fallbacks:  r.Fallbacks,
		ReplayPath: r.ReplayPath,
		StartedAt:  r.StartedAt.UTC(),
		DurationMs: r.Duration.Milliseconds(),
	}, nil
}

// MatchResultToCore converts a GORM MatchResult back to a core.MatchRecord.
func MatchResultToCore(m model.MatchResult) (core.MatchRecord, error) {
	winner, err := core.ParseSide(m.Winner)
	if err != nil {
		return core.MatchRecord{}, err
	}
	var cause core.Cause
	if err := cause.UnmarshalText([]byte(m.Cause)); err != nil {
		return core.MatchRecord{}, err
	}

	var spawnedA, spawnedB []int32
	if len(m.SpawnedA) > 0 {
		if err := json.Unmarshal(m.SpawnedA, &spawnedA); err != nil {
			return core.MatchRecord{}, fmt.Errorf("decoding side A spawns: %w", err)
		}
	}
	if len(m.SpawnedB) > 0 {
		if err := json.Unmarshal(m.SpawnedB, &spawnedB); err != nil {
			return core.MatchRecord{}, fmt.Errorf("decoding side B spawns: %w", err)
		}
	}

	return core.MatchRecord{
		MatchID:  m.MatchID,
		Mode:     core.Mode(m.Mode),
		Map:      m.MapName,
		TeamA:    m.TeamA,
		TeamB:    m.TeamB,
		UnitType: m.UnitType,
		Verdict: core.Verdict{
			Winner:  winner,
			Cause:   cause,
			Round:   m.EndRound,
			Decided: m.Decided,
		},
		WinnerTeam: m.WinnerTeam,
		SpawnedA:   spawnedA,
		SpawnedB:   spawnedB,
		ProbeID:    m.ProbeID,
		TargetID:   m.TargetID,
		Fallbacks:  m.Fallbacks,
		ReplayPath: m.ReplayPath,
		StartedAt:  m.StartedAt,
		Duration:   time.Duration(m.DurationMs) * time.Millisecond,
	}, nil
}

// SlotsToJSON encodes team memory slots.
func SlotsToJSON(slots []int64) (datatypes.JSON, error) {
	raw, err := json.Marshal(nonNil(slots))
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// JSONToSlots decodes team memory slots. Empty input yields nil.
func JSONToSlots(raw datatypes.JSON) ([]int64, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var slots []int64
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, fmt.Errorf("decoding memory slots: %w", err)
	}
	return slots, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
