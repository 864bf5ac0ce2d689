// pkg/core/body.go
package core

import (
	"fmt"
	"math"
)

// Location is a point on the map plane.
type Location struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistanceTo returns the euclidean distance between two locations.
func (l Location) DistanceTo(o Location) float64 {
	return math.Hypot(l.X-o.X, l.Y-o.Y)
}

func (l Location) String() string {
	return fmt.Sprintf("(%.2f,%.2f)", l.X, l.Y)
}

// BodyKind separates robots from stationary resources.
type BodyKind uint8

const (
	KindRobot BodyKind = iota
	KindTree
)

func (k BodyKind) String() string {
	if k == KindTree {
		return "tree"
	}
	return "robot"
}

func (k BodyKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *BodyKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "robot":
		*k = KindRobot
	case "tree":
		*k = KindTree
	default:
		return fmt.Errorf("unknown body kind %q", b)
	}
	return nil
}

// RobotInfo holds the robot-only attributes of a body.
type RobotInfo struct {
	Type   RobotType `json:"type"`
	Health float64   `json:"health"`
}

// ResourceInfo holds the attributes of a stationary resource such as a tree.
// ContainedRobot is nil when nothing is nested inside.
type ResourceInfo struct {
	ContainedBullets float64    `json:"containedBullets"`
	ContainedRobot   *RobotType `json:"containedRobot,omitempty"`
}

// Body is any circular entity placed on a map.
// Exactly one of Robot or Resource is set, matching Kind.
type Body struct {
	ID       int32         `json:"id"`
	Kind     BodyKind      `json:"kind"`
	Side     Side          `json:"side"`
	Location Location      `json:"location"`
	Radius   float64       `json:"radius"`
	Robot    *RobotInfo    `json:"robot,omitempty"`
	Resource *ResourceInfo `json:"resource,omitempty"`
}

// NewRobot builds a robot body with the type's footprint and starting health.
func NewRobot(id int32, side Side, t RobotType, loc Location) Body {
	return Body{
		ID:       id,
		Kind:     KindRobot,
		Side:     side,
		Location: loc,
		Radius:   t.Radius(),
		Robot:    &RobotInfo{Type: t, Health: t.StartingHealth()},
	}
}

// NewTree builds a resource body.
func NewTree(id int32, side Side, loc Location, radius float64, bullets float64, contained *RobotType) Body {
	return Body{
		ID:       id,
		Kind:     KindTree,
		Side:     side,
		Location: loc,
		Radius:   radius,
		Resource: &ResourceInfo{ContainedBullets: bullets, ContainedRobot: contained},
	}
}

// IsRobot reports whether the body is a robot.
func (b Body) IsRobot() bool {
	return b.Kind == KindRobot && b.Robot != nil
}

// IsRobotOfType reports whether the body is a robot of the given type.
func (b Body) IsRobotOfType(t RobotType) bool {
	return b.IsRobot() && b.Robot.Type == t
}

// WithID returns a deep copy of b carrying a new id.
func (b Body) WithID(id int32) Body {
	c := b
	c.ID = id
	if b.Robot != nil {
		r := *b.Robot
		c.Robot = &r
	}
	if b.Resource != nil {
		r := *b.Resource
		if b.Resource.ContainedRobot != nil {
			t := *b.Resource.ContainedRobot
			r.ContainedRobot = &t
		}
		c.Resource = &r
	}
	return c
}
