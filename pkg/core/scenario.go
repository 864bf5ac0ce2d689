// pkg/core/scenario.go
package core

// Mode selects how a match is set up and judged.
type Mode string

const (
	ModeCombat     Mode = "combat"
	ModeNavigation Mode = "navigation"
)

// Scenario is an augmented map plus the ids the adjudicator tracks.
// ProbeID and TargetID are only meaningful in navigation mode.
type Scenario struct {
	Mode     Mode
	Map      Map
	SpawnedA []int32
	SpawnedB []int32
	ProbeID  int32
	TargetID int32
	// Fallbacks counts spawns that were accepted at their anchor despite overlap.
	Fallbacks int
}
