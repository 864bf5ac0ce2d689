package scenario

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/arenaharness/harness/internal/geo"
	"github.com/arenaharness/harness/internal/spawn"
	"github.com/arenaharness/harness/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuilder() *Builder {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewBuilder(spawn.NewLocator(logger), logger)
}

func twoLeaderMap() core.Map {
	return core.Map{
		Name:       "M",
		Width:      100,
		Height:     100,
		RoundLimit: 200,
		Bodies: []core.Body{
			core.NewRobot(100, core.SideA, core.Archon, core.Location{X: 10, Y: 10}),
			core.NewRobot(200, core.SideB, core.Archon, core.Location{X: 90, Y: 90}),
		},
	}
}

func assertNoOverlap(t *testing.T, bodies []core.Body) {
	t.Helper()
	for i := range bodies {
		for j := i + 1; j < len(bodies); j++ {
			a, b := geo.CircleOf(bodies[i]), geo.CircleOf(bodies[j])
			d := geo.Distance(a.Center, b.Center)
			assert.GreaterOrEqual(t, d+1e-9, a.Radius+b.Radius+spawn.DefaultClearance,
				"bodies %d and %d overlap", bodies[i].ID, bodies[j].ID)
		}
	}
}

func assertStrictlyIncreasing(t *testing.T, bodies []core.Body) {
	t.Helper()
	for i := 1; i < len(bodies); i++ {
		assert.Greater(t, bodies[i].ID, bodies[i-1].ID)
	}
}

func TestCombat_FivePerSide(t *testing.T) {
	b := newTestBuilder()
	base := twoLeaderMap()

	sc, err := b.Combat(base, 5, core.Soldier)
	require.NoError(t, err)

	bodies := sc.Map.Bodies
	require.Len(t, bodies, 10)
	assert.Len(t, sc.SpawnedA, 5)
	assert.Len(t, sc.SpawnedB, 5)
	assert.Equal(t, 0, sc.Fallbacks)
	assert.Equal(t, core.ModeCombat, sc.Mode)
	assert.Equal(t, 200, sc.Map.RoundLimit)

	for i, body := range bodies {
		require.True(t, body.IsRobotOfType(core.Soldier))
		if i < 5 {
			assert.Equal(t, core.SideA, body.Side)
		} else {
			assert.Equal(t, core.SideB, body.Side)
		}
		assert.Equal(t, 1.0, body.Radius)
	}
	assertStrictlyIncreasing(t, bodies)
	assertNoOverlap(t, bodies)

	// the first spawn of each side sits on its leader
	assert.Equal(t, core.Location{X: 10, Y: 10}, bodies[0].Location)
	assert.Equal(t, core.Location{X: 90, Y: 90}, bodies[5].Location)
}

func TestCombat_CopiesResourcesFirst(t *testing.T) {
	b := newTestBuilder()
	base := twoLeaderMap()
	inner := core.Scout
	base.Bodies = append(base.Bodies,
		core.NewTree(7, core.SideNeutral, core.Location{X: 50, Y: 50}, 3, 20, &inner),
		core.NewTree(3, core.SideNeutral, core.Location{X: 12.5, Y: 10}, 1, 0, nil),
		core.NewRobot(9, core.SideA, core.Gardener, core.Location{X: 30, Y: 30}),
	)

	sc, err := b.Combat(base, 3, core.Soldier)
	require.NoError(t, err)

	bodies := sc.Map.Bodies
	require.Len(t, bodies, 2+6)
	assert.Equal(t, core.KindTree, bodies[0].Kind)
	assert.Equal(t, core.KindTree, bodies[1].Kind)
	assert.Equal(t, FirstID, bodies[0].ID)
	assert.Equal(t, 20.0, bodies[0].Resource.ContainedBullets)
	require.NotNil(t, bodies[0].Resource.ContainedRobot)
	assert.Equal(t, core.Scout, *bodies[0].Resource.ContainedRobot)

	assertStrictlyIncreasing(t, bodies)
	assertNoOverlap(t, bodies)
	for _, body := range bodies[2:] {
		assert.True(t, body.IsRobotOfType(core.Soldier), "original non-leader robots are not carried over")
	}
}

func TestCombat_RoundRobinLeaders(t *testing.T) {
	b := newTestBuilder()
	base := twoLeaderMap()
	base.Bodies = append(base.Bodies, core.NewRobot(101, core.SideA, core.Archon, core.Location{X: 10, Y: 60}))

	sc, err := b.Combat(base, 2, core.Soldier)
	require.NoError(t, err)

	assert.Equal(t, core.Location{X: 10, Y: 10}, sc.Map.Bodies[0].Location)
	assert.Equal(t, core.Location{X: 10, Y: 60}, sc.Map.Bodies[1].Location)
}

func TestCombat_DoesNotMutateBase(t *testing.T) {
	b := newTestBuilder()
	base := twoLeaderMap()
	before := append([]core.Body(nil), base.Bodies...)

	_, err := b.Combat(base, 4, core.Tank)
	require.NoError(t, err)
	assert.Equal(t, before, base.Bodies)
}

func TestCombat_MissingLeader(t *testing.T) {
	b := newTestBuilder()
	base := twoLeaderMap()
	base.Bodies = base.Bodies[:1]

	_, err := b.Combat(base, 5, core.Soldier)
	require.ErrorIs(t, err, ErrMissingLeader)
	assert.Contains(t, err.Error(), "side B")
}

func TestCombat_ScalesWithN(t *testing.T) {
	b := newTestBuilder()
	for _, n := range []int{1, 2, 7, 12} {
		sc, err := b.Combat(twoLeaderMap(), n, core.Soldier)
		require.NoError(t, err)
		assert.Len(t, sc.Map.Bodies, 2*n)
		assertStrictlyIncreasing(t, sc.Map.Bodies)
		if sc.Fallbacks == 0 {
			assertNoOverlap(t, sc.Map.Bodies)
		}
	}
}

func TestNavigation_ProbeAndTarget(t *testing.T) {
	b := newTestBuilder()

	sc, err := b.Navigation(twoLeaderMap(), core.Scout)
	require.NoError(t, err)

	require.Len(t, sc.Map.Bodies, 2)
	probe, target := sc.Map.Bodies[0], sc.Map.Bodies[1]
	assert.Equal(t, sc.ProbeID, probe.ID)
	assert.Equal(t, sc.TargetID, target.ID)
	assert.True(t, probe.IsRobotOfType(core.Scout))
	assert.Equal(t, core.SideA, probe.Side)
	assert.True(t, target.IsRobotOfType(core.LeaderType))
	assert.Equal(t, core.SideB, target.Side)
	assert.Equal(t, core.Location{X: 10, Y: 10}, probe.Location)
	assert.Equal(t, core.Location{X: 90, Y: 90}, target.Location)
}

func TestNavigation_MissingLeader(t *testing.T) {
	b := newTestBuilder()
	base := twoLeaderMap()
	base.Bodies = base.Bodies[1:]

	_, err := b.Navigation(base, core.Scout)
	assert.ErrorIs(t, err, ErrMissingLeader)
}
