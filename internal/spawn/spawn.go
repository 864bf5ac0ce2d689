// Package spawn finds collision-free placements for new bodies.
package spawn

import (
	"log/slog"
	"math"

	"github.com/arenaharness/harness/internal/geo"
	"github.com/arenaharness/harness/pkg/core"
)

// DefaultClearance is the gap kept between two footprints beyond their radii.
const DefaultClearance = 0.01

// ringAngles is the number of samples taken on every search ring.
const ringAngles = 12

// Locator searches concentric rings around an anchor for a free spot.
// It holds no state between calls: equal inputs give equal outputs.
type Locator struct {
	Clearance float64
	Logger    *slog.Logger
}

// NewLocator returns a locator with the default clearance.
func NewLocator(logger *slog.Logger) *Locator {
	return &Locator{Clearance: DefaultClearance, Logger: logger}
}

// Placement is the result of a search.
type Placement struct {
	Location core.Location
	// Fallback is set when every candidate was blocked and the anchor was
	// accepted even though it may overlap an existing body.
	Fallback bool
}

// Rings returns the search radii for a footprint radius r.
func Rings(r float64) []float64 {
	return []float64{2*r + 0.25, 4*r + 0.5, 6*r + 0.75}
}

// Locate returns the first clear location for a circle of the given radius:
// the anchor itself, then each ring in order, sweeping 12 angles per ring.
func (l *Locator) Locate(anchor core.Location, radius float64, bounds core.Bounds, placed []core.Body) Placement {
	if l.clear(anchor, radius, bounds, placed) {
		return Placement{Location: anchor}
	}

	center := geo.XY(anchor)
	step := 2 * math.Pi / ringAngles
	for _, ring := range Rings(radius) {
		for i := 0; i < ringAngles; i++ {
			candidate := geo.Location(geo.OnRing(center, ring, float64(i)*step))
			if l.clear(candidate, radius, bounds, placed) {
				return Placement{Location: candidate}
			}
		}
	}

	l.logger().Warn("No clear spawn location found, accepting anchor with possible overlap",
		"anchor", anchor.String(),
		"radius", radius,
		"placed", len(placed))
	return Placement{Location: anchor, Fallback: true}
}

func (l *Locator) clear(loc core.Location, radius float64, bounds core.Bounds, placed []core.Body) bool {
	c := geo.Circle{Center: geo.XY(loc), Radius: radius}
	if !geo.InBounds(c, bounds) {
		return false
	}
	for _, b := range placed {
		if geo.Intersects(c, geo.CircleOf(b), l.Clearance) {
			return false
		}
	}
	return true
}

func (l *Locator) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}
