// pkg/core/map.go
package core

// Map is a loaded terrain description. Callers treat it as immutable:
// builders produce new Map values instead of editing one in place.
type Map struct {
	Name       string   `json:"name"`
	Width      float64  `json:"width"`
	Height     float64  `json:"height"`
	Origin     Location `json:"origin"`
	Seed       int64    `json:"seed"`
	RoundLimit int      `json:"roundLimit"`
	Bodies     []Body   `json:"bodies"`
}

// Bounds is the rectangle a body's circle must stay inside.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Bounds returns the playable rectangle of the map.
func (m Map) Bounds() Bounds {
	return Bounds{
		MinX: m.Origin.X,
		MinY: m.Origin.Y,
		MaxX: m.Origin.X + m.Width,
		MaxY: m.Origin.Y + m.Height,
	}
}

// Leaders returns the locations of every leader robot owned by side, in map order.
func (m Map) Leaders(side Side) []Location {
	var locs []Location
	for _, b := range m.Bodies {
		if b.Side == side && b.IsRobotOfType(LeaderType) {
			locs = append(locs, b.Location)
		}
	}
	return locs
}

// Resources returns the neutral non-robot bodies of the map, in map order.
func (m Map) Resources() []Body {
	var out []Body
	for _, b := range m.Bodies {
		if b.Side == SideNeutral && !b.IsRobot() {
			out = append(out, b)
		}
	}
	return out
}

// WithBodies returns a copy of m carrying a different body list.
func (m Map) WithBodies(bodies []Body) Map {
	c := m
	c.Bodies = bodies
	return c
}
