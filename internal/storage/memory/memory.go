// Package memory is a storage backend that keeps everything in process.
// Nothing survives a restart.
package memory

import (
	"sort"
	"sync"

	"github.com/arenaharness/harness/pkg/core"
)

// Backend implements storage.Backend with maps.
type Backend struct {
	mu      sync.RWMutex
	memory  map[string][]int64
	matches []core.MatchRecord
}

// New creates an empty backend.
func New() *Backend {
	return &Backend{memory: make(map[string][]int64)}
}

func (b *Backend) Init() error  { return nil }
func (b *Backend) Close() error { return nil }

func (b *Backend) LoadMemory(team string) ([]int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	slots, ok := b.memory[team]
	if !ok {
		return nil, nil
	}
	return append([]int64(nil), slots...), nil
}

func (b *Backend) SaveMemory(team string, slots []int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.memory[team] = append([]int64(nil), slots...)
	return nil
}

func (b *Backend) RecordMatch(rec core.MatchRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.matches = append(b.matches, rec)
	return nil
}

func (b *Backend) Matches(team string, limit int) ([]core.MatchRecord, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []core.MatchRecord
	for i := len(b.matches) - 1; i >= 0; i-- {
		if m := b.matches[i]; m.TeamA == team || m.TeamB == team {
			out = append(out, m)
		}
	}
	// newest first, later inserts win ties
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
