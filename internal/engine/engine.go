// Package engine declares the rules engine the harness drives. The harness
// never resolves movement or combat itself; it only advances rounds and
// inspects the live registry through this interface.
package engine

import (
	"context"
	"log/slog"

	"github.com/arenaharness/harness/internal/control"
	"github.com/arenaharness/harness/pkg/core"
)

// State is what an engine reports after advancing a round.
type State int

const (
	StateRunning State = iota
	StateDone
)

func (s State) String() string {
	if s == StateDone {
		return "done"
	}
	return "running"
}

// Engine is one match world, owned by a single run.
type Engine interface {
	// RunRound advances the world by one round.
	RunRound(ctx context.Context) (State, error)
	// Round is the number of the last completed round, 0 before the first.
	Round() int
	// Lookup resolves a live body by id.
	Lookup(id int32) (core.Body, bool)
	Running() bool
	// SetWinner ends the match. Later calls are ignored.
	SetWinner(side core.Side, cause core.Cause)
	// Winner returns the assigned winner, ok is false while none is set.
	Winner() (side core.Side, cause core.Cause, ok bool)
}

// RoundRecorder receives what happens in every round.
type RoundRecorder interface {
	RecordRound(round int, bodies []core.Body)
	RecordAction(round int, id int32, action string)
}

// Config is everything needed to construct an engine.
type Config struct {
	Map       core.Map
	Providers map[core.Side]control.Provider
	Memory    *Memory
	Recorder  RoundRecorder
	Logger    *slog.Logger
}

// Factory builds an engine from a config.
type Factory func(cfg Config) (Engine, error)

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) RecordRound(int, []core.Body)     {}
func (NopRecorder) RecordAction(int, int32, string) {}
