// Package geo holds the circle and rectangle arithmetic used for body placement.
package geo

import (
	"math"

	"github.com/arenaharness/harness/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// Circle is a body footprint on the map plane.
type Circle struct {
	Center geom.XY
	Radius float64
}

// XY converts a map location to a plane coordinate.
func XY(l core.Location) geom.XY {
	return geom.XY{X: l.X, Y: l.Y}
}

// Location converts a plane coordinate back to a map location.
func Location(xy geom.XY) core.Location {
	return core.Location{X: xy.X, Y: xy.Y}
}

// CircleOf returns the footprint of a body.
func CircleOf(b core.Body) Circle {
	return Circle{Center: XY(b.Location), Radius: b.Radius}
}

// Distance returns the distance between two plane coordinates.
func Distance(a, b geom.XY) float64 {
	return a.Sub(b).Length()
}

// Intersects reports whether two circles come closer than their radii plus clearance.
// Circles that touch at exactly radius+clearance do not intersect.
func Intersects(a, b Circle, clearance float64) bool {
	return Distance(a.Center, b.Center) < a.Radius+b.Radius+clearance
}

// InBounds reports whether the whole circle lies inside the rectangle.
func InBounds(c Circle, bounds core.Bounds) bool {
	return c.Center.X-c.Radius >= bounds.MinX &&
		c.Center.Y-c.Radius >= bounds.MinY &&
		c.Center.X+c.Radius <= bounds.MaxX &&
		c.Center.Y+c.Radius <= bounds.MaxY
}

// OnRing returns the point at distance radius from center, at angle radians
// measured counter-clockwise from the positive X axis.
func OnRing(center geom.XY, radius, angle float64) geom.XY {
	return center.Add(geom.XY{X: math.Cos(angle), Y: math.Sin(angle)}.Scale(radius))
}
