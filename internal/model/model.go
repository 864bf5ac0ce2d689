package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&HarnessInfo{},
	&TeamMemory{},
	&MatchResult{},
}

// HarnessInfo records the schema version of the ledger
type HarnessInfo struct {
	gorm.Model
	SchemaVersion int    `json:"schemaVersion"`
	Description   string `json:"description" gorm:"size:255"`
}

func (*HarnessInfo) TableName() string {
	return "harness_infos"
}

// TeamMemory is the persisted scratch memory of one team
type TeamMemory struct {
	ID        uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	Team      string         `json:"team" gorm:"size:127;uniqueIndex:idx_team_memory_team"`
	Slots     datatypes.JSON `json:"slots"`
	UpdatedAt time.Time      `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (*TeamMemory) TableName() string {
	return "team_memories"
}

// MatchResult is one row of the match ledger
type MatchResult struct {
	ID         uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	MatchID    string         `json:"matchId" gorm:"size:36;uniqueIndex:idx_match_result_match_id"`
	Mode       string         `json:"mode" gorm:"size:32;index:idx_match_result_mode"`
	MapName    string         `json:"mapName" gorm:"size:127"`
	TeamA      string         `json:"teamA" gorm:"size:127;index:idx_match_result_team_a"`
	TeamB      string         `json:"teamB" gorm:"size:127;index:idx_match_result_team_b"`
	UnitType   string         `json:"unitType" gorm:"size:32"`
	Winner     string         `json:"winner" gorm:"size:16"`
	WinnerTeam string         `json:"winnerTeam" gorm:"size:127"`
	Cause      string         `json:"cause" gorm:"size:16"`
	EndRound   int            `json:"endRound"`
	Decided    bool           `json:"decided"`
	SpawnedA   datatypes.JSON `json:"spawnedA"`
	SpawnedB   datatypes.JSON `json:"spawnedB"`
	ProbeID    int32          `json:"probeId"`
	TargetID   int32          `json:"targetId"`
	Fallbacks  int            `json:"fallbacks"`
	ReplayPath string         `json:"replayPath" gorm:"size:512"`
	StartedAt  time.Time      `json:"startedAt" gorm:"index:idx_match_result_started_at"`
	DurationMs int64          `json:"durationMs"`
}

func (*MatchResult) TableName() string {
	return "match_results"
}
