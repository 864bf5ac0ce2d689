// pkg/core/robot.go
package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRobotType is returned when a robot type tag is not part of the roster.
var ErrUnknownRobotType = errors.New("unknown robot type")

// RobotType is the fixed roster of unit kinds.
type RobotType uint8

const (
	Archon RobotType = iota
	Gardener
	Lumberjack
	Soldier
	Tank
	Scout
)

// LeaderType is the high-value unit every roster must field.
const LeaderType = Archon

type robotStats struct {
	name         string
	radius       float64
	sensorRadius float64
	health       float64
}

var robotTable = [...]robotStats{
	Archon:     {"ARCHON", 2, 10, 400},
	Gardener:   {"GARDENER", 1, 7, 40},
	Lumberjack: {"LUMBERJACK", 1, 7, 50},
	Soldier:    {"SOLDIER", 1, 7, 50},
	Tank:       {"TANK", 2, 7, 200},
	Scout:      {"SCOUT", 1, 14, 10},
}

// RobotTypes lists every valid type in declaration order.
func RobotTypes() []RobotType {
	types := make([]RobotType, len(robotTable))
	for i := range robotTable {
		types[i] = RobotType(i)
	}
	return types
}

func (t RobotType) valid() bool {
	return int(t) < len(robotTable)
}

func (t RobotType) String() string {
	if !t.valid() {
		return fmt.Sprintf("RobotType(%d)", uint8(t))
	}
	return robotTable[t].name
}

// Radius is the collision footprint of the type.
func (t RobotType) Radius() float64 {
	if !t.valid() {
		return 0
	}
	return robotTable[t].radius
}

// SensorRadius is how far the type can see.
func (t RobotType) SensorRadius() float64 {
	if !t.valid() {
		return 0
	}
	return robotTable[t].sensorRadius
}

// StartingHealth is the health a freshly spawned robot of this type has.
func (t RobotType) StartingHealth() float64 {
	if !t.valid() {
		return 0
	}
	return robotTable[t].health
}

// ParseRobotType matches a type tag case-insensitively.
func ParseRobotType(s string) (RobotType, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, st := range robotTable {
		if st.name == name {
			return RobotType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRobotType, s)
}

func (t RobotType) MarshalText() ([]byte, error) {
	if !t.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRobotType, uint8(t))
	}
	return []byte(t.String()), nil
}

func (t *RobotType) UnmarshalText(b []byte) error {
	v, err := ParseRobotType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
