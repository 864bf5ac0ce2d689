// Package storage keeps the match ledger and the team memory that carries
// over from one match to the next.
package storage

import "github.com/arenaharness/harness/pkg/core"

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Team memory. LoadMemory returns nil when the team has none yet.
	LoadMemory(team string) ([]int64, error)
	SaveMemory(team string, slots []int64) error

	// Ledger
	RecordMatch(rec core.MatchRecord) error
	// Matches returns the most recent matches a team played in, newest first.
	Matches(team string, limit int) ([]core.MatchRecord, error)
}
