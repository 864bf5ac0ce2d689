package cache

import (
	"sort"
	"sync"

	"github.com/arenaharness/harness/pkg/core"
)

// BodyCache is the live object registry of a running match, keyed by body id.
type BodyCache struct {
	m      sync.Mutex
	Bodies map[int32]core.Body
}

func NewBodyCache() *BodyCache {
	return &BodyCache{
		m:      sync.Mutex{},
		Bodies: make(map[int32]core.Body),
	}
}

func (c *BodyCache) Get(id int32) (core.Body, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	if b, ok := c.Bodies[id]; ok {
		return b, true
	}
	return core.Body{}, false
}

func (c *BodyCache) Add(b core.Body) {
	c.m.Lock()
	defer c.m.Unlock()
	c.Bodies[b.ID] = b
}

// Remove deletes a body and reports whether it was present.
func (c *BodyCache) Remove(id int32) bool {
	c.m.Lock()
	defer c.m.Unlock()
	if _, ok := c.Bodies[id]; !ok {
		return false
	}
	delete(c.Bodies, id)
	return true
}

func (c *BodyCache) Len() int {
	c.m.Lock()
	defer c.m.Unlock()
	return len(c.Bodies)
}

// Snapshot returns every live body ordered by id.
func (c *BodyCache) Snapshot() []core.Body {
	c.m.Lock()
	defer c.m.Unlock()
	out := make([]core.Body, 0, len(c.Bodies))
	for _, b := range c.Bodies {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CountRobots returns the number of live robots per side and their summed health.
func (c *BodyCache) CountRobots() (count map[core.Side]int, health map[core.Side]float64) {
	c.m.Lock()
	defer c.m.Unlock()
	count = make(map[core.Side]int)
	health = make(map[core.Side]float64)
	for _, b := range c.Bodies {
		if !b.IsRobot() {
			continue
		}
		count[b.Side]++
		health[b.Side] += b.Robot.Health
	}
	return count, health
}

// SafeCounter is a thread-safe counter
type SafeCounter struct {
	mu sync.Mutex
	v  int
}

func (c *SafeCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *SafeCounter) Inc() {
	c.mu.Lock()
	c.v++
	c.mu.Unlock()
}
