package match

import (
	"log/slog"

	"github.com/arenaharness/harness/internal/engine"
	"github.com/arenaharness/harness/internal/geo"
	"github.com/arenaharness/harness/pkg/core"
)

// Combat takes whatever winner the engine assigns. A match the engine never
// decides is a draw.
type Combat struct{}

// NewCombat returns the combat adjudicator.
func NewCombat() *Combat { return &Combat{} }

func (*Combat) Mode() core.Mode { return core.ModeCombat }

// Observe is a no-op; the engine owns combat outcomes.
func (*Combat) Observe(engine.Engine) {}

func (*Combat) Verdict(eng engine.Engine) core.Verdict {
	side, cause, ok := eng.Winner()
	if !ok || eng.Running() {
		return core.Verdict{Winner: core.SideNeutral, Cause: core.CauseNone, Round: eng.Round(), Decided: true}
	}
	return core.Verdict{Winner: side, Cause: cause, Round: eng.Round(), Decided: true}
}

// Status is the navigation probe's progress.
type Status int

const (
	StatusRunning Status = iota
	StatusSuccess
	StatusFailure
	// StatusHalted means the engine stopped before the probe succeeded or failed.
	StatusHalted
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	case StatusHalted:
		return "halted"
	default:
		return "running"
	}
}

// Navigation judges a single probe trying to find a hidden target. Once it
// leaves StatusRunning it never changes again.
type Navigation struct {
	probeID  int32
	targetID int32
	sensor   float64
	log      *slog.Logger

	status  Status
	verdict core.Verdict
}

// NewNavigation tracks the probe and target of a navigation scenario.
func NewNavigation(probeID, targetID int32, probeType core.RobotType, logger *slog.Logger) *Navigation {
	if logger == nil {
		logger = slog.Default()
	}
	return &Navigation{
		probeID:  probeID,
		targetID: targetID,
		sensor:   probeType.SensorRadius(),
		log:      logger,
	}
}

func (*Navigation) Mode() core.Mode { return core.ModeNavigation }

// Status reports the current latch state.
func (n *Navigation) Status() Status { return n.status }

// Succeeded reports whether the probe reached its target.
func (n *Navigation) Succeeded() bool { return n.status == StatusSuccess }

func (n *Navigation) Observe(eng engine.Engine) {
	if n.status != StatusRunning {
		return
	}

	probe, probeAlive := eng.Lookup(n.probeID)
	if !probeAlive {
		n.latch(eng, StatusFailure, core.SideB, core.CauseDestroyed)
		return
	}
	target, targetAlive := eng.Lookup(n.targetID)
	if !targetAlive {
		n.latch(eng, StatusSuccess, core.SideA, core.CauseDestroyed)
		return
	}
	if geo.Distance(geo.XY(probe.Location), geo.XY(target.Location)) <= n.sensor {
		n.latch(eng, StatusSuccess, core.SideA, core.CauseDetected)
		return
	}

	if !eng.Running() {
		n.status = StatusHalted
		n.verdict = core.Verdict{Winner: core.SideNeutral, Cause: core.CauseNone, Round: eng.Round()}
		n.log.Info("Navigation halted without reaching the target", "round", eng.Round())
	}
}

func (n *Navigation) latch(eng engine.Engine, status Status, winner core.Side, cause core.Cause) {
	n.status = status
	n.verdict = core.Verdict{Winner: winner, Cause: cause, Round: eng.Round(), Decided: true}
	eng.SetWinner(winner, cause)
	n.log.Info("Navigation decided",
		"status", status.String(),
		"cause", cause.String(),
		"round", eng.Round())
}

func (n *Navigation) Verdict(eng engine.Engine) core.Verdict {
	if n.status == StatusRunning {
		return core.Verdict{Winner: core.SideNeutral, Cause: core.CauseNone, Round: eng.Round()}
	}
	return n.verdict
}
