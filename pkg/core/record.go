package core

import "time"

// MatchRecord is what the ledger keeps about a finished match.
type MatchRecord struct {
	MatchID    string
	Mode       Mode
	Map        string
	TeamA      string
	TeamB      string
	UnitType   string
	Verdict    Verdict
	WinnerTeam string
	SpawnedA   []int32
	SpawnedB   []int32
	ProbeID    int32
	TargetID   int32
	Fallbacks  int
	ReplayPath string
	StartedAt  time.Time
	Duration   time.Duration
}
