package spawn

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/arenaharness/harness/internal/geo"
	"github.com/arenaharness/harness/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBounds = core.Bounds{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}

func quietLocator() *Locator {
	return NewLocator(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
}

func TestLocate_AnchorFree(t *testing.T) {
	l := quietLocator()
	p := l.Locate(core.Location{X: 50, Y: 50}, 1, testBounds, nil)

	assert.False(t, p.Fallback)
	assert.Equal(t, core.Location{X: 50, Y: 50}, p.Location)
}

func TestLocate_FirstRingFirstAngle(t *testing.T) {
	l := quietLocator()
	placed := []core.Body{core.NewRobot(1, core.SideA, core.Soldier, core.Location{X: 50, Y: 50})}

	p := l.Locate(core.Location{X: 50, Y: 50}, 1, testBounds, placed)

	require.False(t, p.Fallback)
	// 2r+0.25 at angle 0
	assert.InDelta(t, 52.25, p.Location.X, 1e-9)
	assert.InDelta(t, 50, p.Location.Y, 1e-9)
}

func TestLocate_SkipsOutOfBoundsCandidates(t *testing.T) {
	l := quietLocator()
	// anchor pressed into the right edge: angle 0 on the first ring leaves the map
	anchor := core.Location{X: 98.5, Y: 50}
	placed := []core.Body{core.NewRobot(1, core.SideA, core.Soldier, anchor)}

	p := l.Locate(anchor, 1, testBounds, placed)

	require.False(t, p.Fallback)
	c := geo.Circle{Center: geo.XY(p.Location), Radius: 1}
	assert.True(t, geo.InBounds(c, testBounds))
	assert.False(t, geo.Intersects(c, geo.CircleOf(placed[0]), DefaultClearance))
}

func TestLocate_FallbackWhenEverythingBlocked(t *testing.T) {
	var buf bytes.Buffer
	l := NewLocator(slog.New(slog.NewTextHandler(&buf, nil)))
	anchor := core.Location{X: 50, Y: 50}
	// one huge tree covers every ring
	placed := []core.Body{core.NewTree(1, core.SideNeutral, anchor, 20, 0, nil)}

	p := l.Locate(anchor, 1, testBounds, placed)

	assert.True(t, p.Fallback)
	assert.Equal(t, anchor, p.Location)
	assert.Contains(t, buf.String(), "No clear spawn location found")
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestLocate_Deterministic(t *testing.T) {
	l := quietLocator()
	anchor := core.Location{X: 30, Y: 30}
	placed := []core.Body{
		core.NewRobot(1, core.SideA, core.Soldier, anchor),
		core.NewTree(2, core.SideNeutral, core.Location{X: 32.25, Y: 30}, 1, 0, nil),
		core.NewRobot(3, core.SideA, core.Tank, core.Location{X: 30, Y: 33}),
	}

	first := l.Locate(anchor, 1, testBounds, placed)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, l.Locate(anchor, 1, testBounds, placed))
	}
}

func TestRings(t *testing.T) {
	assert.Equal(t, []float64{2.25, 4.5, 6.75}, Rings(1))
	assert.Equal(t, []float64{4.25, 8.5, 12.75}, Rings(2))
}
