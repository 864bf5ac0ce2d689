package engine

import (
	"fmt"
	"sync"

	"github.com/arenaharness/harness/pkg/core"
)

// MemoryLength is the number of slots each team keeps between matches.
const MemoryLength = 32

// Memory is the per-team scratch space that survives from one match to the next.
type Memory struct {
	mu    sync.Mutex
	teams map[core.Side][]int64
}

// NewMemory returns zeroed memory for both sides.
func NewMemory() *Memory {
	return &Memory{
		teams: map[core.Side][]int64{
			core.SideA: make([]int64, MemoryLength),
			core.SideB: make([]int64, MemoryLength),
		},
	}
}

// Load replaces a side's slots. Shorter input is zero padded, longer input is truncated.
func (m *Memory) Load(side core.Side, values []int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	slots := make([]int64, MemoryLength)
	copy(slots, values)
	m.teams[side] = slots
}

// Get returns a copy of a side's slots.
func (m *Memory) Get(side core.Side) []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int64, MemoryLength)
	copy(out, m.teams[side])
	return out
}

// Set writes one slot.
func (m *Memory) Set(side core.Side, index int, value int64) error {
	if index < 0 || index >= MemoryLength {
		return fmt.Errorf("memory index %d out of range [0,%d)", index, MemoryLength)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	slots, ok := m.teams[side]
	if !ok {
		return fmt.Errorf("no memory for side %s", side)
	}
	slots[index] = value
	return nil
}
