// Package scenario layers freshly spawned units over a base map's terrain.
package scenario

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/arenaharness/harness/internal/spawn"
	"github.com/arenaharness/harness/pkg/core"
)

// ErrMissingLeader is returned when a side has no leader unit to spawn around.
var ErrMissingLeader = errors.New("side has no leader unit")

// FirstID is the id given to the first body of a built scenario.
const FirstID int32 = 1

// Builder assembles scenarios. It never mutates the base map.
type Builder struct {
	locator *spawn.Locator
	log     *slog.Logger
}

// NewBuilder creates a Builder that places units with locator.
func NewBuilder(locator *spawn.Locator, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{locator: locator, log: logger}
}

// layout accumulates bodies and hands out increasing ids.
type layout struct {
	base      core.Map
	bodies    []core.Body
	nextID    int32
	fallbacks int
}

func newLayout(base core.Map) *layout {
	return &layout{base: base, nextID: FirstID}
}

func (l *layout) id() int32 {
	id := l.nextID
	l.nextID++
	return id
}

func (l *layout) copyResources() {
	for _, r := range l.base.Resources() {
		l.bodies = append(l.bodies, r.WithID(l.id()))
	}
}

func (b *Builder) place(l *layout, side core.Side, t core.RobotType, anchor core.Location) int32 {
	p := b.locator.Locate(anchor, t.Radius(), l.base.Bounds(), l.bodies)
	if p.Fallback {
		l.fallbacks++
	}
	body := core.NewRobot(l.id(), side, t, p.Location)
	l.bodies = append(l.bodies, body)
	return body.ID
}

// Combat spawns perSide robots of type t for each side, anchored round-robin
// on that side's leaders. Resources come first, then all of side A, then side B.
func (b *Builder) Combat(base core.Map, perSide int, t core.RobotType) (core.Scenario, error) {
	leadersA := base.Leaders(core.SideA)
	if len(leadersA) == 0 {
		return core.Scenario{}, fmt.Errorf("map %q side %s: %w", base.Name, core.SideA, ErrMissingLeader)
	}
	leadersB := base.Leaders(core.SideB)
	if len(leadersB) == 0 {
		return core.Scenario{}, fmt.Errorf("map %q side %s: %w", base.Name, core.SideB, ErrMissingLeader)
	}
	if perSide < 0 {
		return core.Scenario{}, fmt.Errorf("units per side must not be negative, got %d", perSide)
	}

	l := newLayout(base)
	l.copyResources()

	sc := core.Scenario{Mode: core.ModeCombat}
	for i := 0; i < perSide; i++ {
		sc.SpawnedA = append(sc.SpawnedA, b.place(l, core.SideA, t, leadersA[i%len(leadersA)]))
	}
	for i := 0; i < perSide; i++ {
		sc.SpawnedB = append(sc.SpawnedB, b.place(l, core.SideB, t, leadersB[i%len(leadersB)]))
	}

	sc.Map = base.WithBodies(l.bodies)
	sc.Fallbacks = l.fallbacks
	b.log.Info("Built combat scenario",
		"map", base.Name,
		"perSide", perSide,
		"unitType", t.String(),
		"bodies", len(l.bodies),
		"fallbacks", l.fallbacks)
	return sc, nil
}

// Navigation places one probe of type probe near side A's first leader and a
// hidden leader-type target near side B's first leader.
func (b *Builder) Navigation(base core.Map, probe core.RobotType) (core.Scenario, error) {
	leadersA := base.Leaders(core.SideA)
	if len(leadersA) == 0 {
		return core.Scenario{}, fmt.Errorf("map %q side %s: %w", base.Name, core.SideA, ErrMissingLeader)
	}
	leadersB := base.Leaders(core.SideB)
	if len(leadersB) == 0 {
		return core.Scenario{}, fmt.Errorf("map %q side %s: %w", base.Name, core.SideB, ErrMissingLeader)
	}

	l := newLayout(base)
	l.copyResources()

	sc := core.Scenario{Mode: core.ModeNavigation}
	sc.ProbeID = b.place(l, core.SideA, probe, leadersA[0])
	sc.TargetID = b.place(l, core.SideB, core.LeaderType, leadersB[0])
	sc.SpawnedA = []int32{sc.ProbeID}
	sc.SpawnedB = []int32{sc.TargetID}

	sc.Map = base.WithBodies(l.bodies)
	sc.Fallbacks = l.fallbacks
	b.log.Info("Built navigation scenario",
		"map", base.Name,
		"probe", probe.String(),
		"probeID", sc.ProbeID,
		"targetID", sc.TargetID,
		"fallbacks", l.fallbacks)
	return sc, nil
}
