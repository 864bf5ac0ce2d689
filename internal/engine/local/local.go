// Package local is the reference rules engine shipped with the harness.
// It keeps a live registry, asks each roster's provider for one action per
// unit per round and ends the match on domination or round-limit expiry.
// It resolves no movement or combat: actions other than the ones listed
// below are recorded verbatim and otherwise ignored.
package local

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/arenaharness/harness/internal/cache"
	"github.com/arenaharness/harness/internal/control"
	"github.com/arenaharness/harness/internal/engine"
	"github.com/arenaharness/harness/pkg/core"
)

// ActionDisintegrate removes the acting unit from the world.
const ActionDisintegrate = "disintegrate"

// Engine implements engine.Engine.
type Engine struct {
	world     core.Map
	registry  *cache.BodyCache
	round     cache.SafeCounter
	providers map[core.Side]control.Provider
	memory    *engine.Memory
	recorder  engine.RoundRecorder
	log       *slog.Logger

	running bool
	winner  core.Side
	cause   core.Cause
	decided bool
}

var _ engine.Engine = (*Engine)(nil)

// New is an engine.Factory.
func New(cfg engine.Config) (engine.Engine, error) {
	if cfg.Map.RoundLimit <= 0 {
		return nil, fmt.Errorf("map %q has no round limit", cfg.Map.Name)
	}
	providers := map[core.Side]control.Provider{
		core.SideA: control.Null{},
		core.SideB: control.Null{},
	}
	for side, p := range cfg.Providers {
		if p != nil {
			providers[side] = p
		}
	}
	if cfg.Memory == nil {
		cfg.Memory = engine.NewMemory()
	}
	if cfg.Recorder == nil {
		cfg.Recorder = engine.NopRecorder{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	registry := cache.NewBodyCache()
	for _, b := range cfg.Map.Bodies {
		if _, dup := registry.Get(b.ID); dup {
			return nil, fmt.Errorf("map %q has duplicate body id %d", cfg.Map.Name, b.ID)
		}
		registry.Add(b)
	}

	e := &Engine{
		world:     cfg.Map,
		registry:  registry,
		providers: providers,
		memory:    cfg.Memory,
		recorder:  cfg.Recorder,
		log:       cfg.Logger,
		running:   true,
	}
	e.log.Debug("Engine ready", "map", cfg.Map.Name, "bodies", registry.Len(), "roundLimit", cfg.Map.RoundLimit)
	e.recorder.RecordRound(0, registry.Snapshot())
	return e, nil
}

// RunRound implements engine.Engine.
func (e *Engine) RunRound(ctx context.Context) (engine.State, error) {
	if !e.running {
		return engine.StateDone, nil
	}
	e.round.Inc()
	round := e.round.Value()

	for _, body := range e.registry.Snapshot() {
		if !body.IsRobot() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return engine.StateDone, err
		}
		if _, alive := e.registry.Get(body.ID); !alive {
			continue
		}
		e.step(ctx, round, body)
	}

	e.recorder.RecordRound(round, e.registry.Snapshot())
	e.checkDomination()
	if e.running && round >= e.world.RoundLimit {
		e.expire()
	}

	if e.running {
		return engine.StateRunning, nil
	}
	return engine.StateDone, nil
}

func (e *Engine) step(ctx context.Context, round int, body core.Body) {
	provider, ok := e.providers[body.Side]
	if !ok {
		return
	}
	resp, err := provider.Act(ctx, control.Request{
		Round:  round,
		Team:   body.Side,
		Unit:   body,
		Memory: e.memory.Get(body.Side),
	})
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, control.ErrExited) {
			level = slog.LevelDebug
		}
		e.log.Log(ctx, level, "Unit idles after control failure",
			"team", provider.Name(), "unit", body.ID, "error", err)
		return
	}

	for idx, v := range resp.MemoryWrites {
		if err := e.memory.Set(body.Side, idx, v); err != nil {
			e.log.Debug("Ignoring memory write", "team", provider.Name(), "error", err)
		}
	}

	if resp.Action == "" {
		return
	}
	e.recorder.RecordAction(round, body.ID, resp.Action)
	if resp.Action == ActionDisintegrate {
		e.registry.Remove(body.ID)
	}
}

// checkDomination ends the match when a side has no robots left.
func (e *Engine) checkDomination() {
	count, _ := e.registry.CountRobots()
	switch {
	case count[core.SideA] == 0 && count[core.SideB] == 0:
		e.SetWinner(core.SideNeutral, core.CauseDestroyed)
	case count[core.SideA] == 0:
		e.SetWinner(core.SideB, core.CauseDestroyed)
	case count[core.SideB] == 0:
		e.SetWinner(core.SideA, core.CauseDestroyed)
	}
}

// expire picks a winner when the round limit is reached: more robots, then
// more total health, then a coin seeded from the map.
func (e *Engine) expire() {
	count, health := e.registry.CountRobots()
	switch {
	case count[core.SideA] != count[core.SideB]:
		e.SetWinner(larger(count[core.SideA], count[core.SideB]), core.CauseNone)
	case health[core.SideA] != health[core.SideB]:
		e.SetWinner(larger(health[core.SideA], health[core.SideB]), core.CauseNone)
	default:
		coin := rand.New(rand.NewSource(e.world.Seed)).Intn(2)
		if coin == 0 {
			e.SetWinner(core.SideA, core.CauseNone)
		} else {
			e.SetWinner(core.SideB, core.CauseNone)
		}
	}
	e.log.Info("Round limit reached", "round", e.Round(), "winner", e.winner.String())
}

func larger[T int | float64](a, b T) core.Side {
	if a > b {
		return core.SideA
	}
	return core.SideB
}

// Round implements engine.Engine.
func (e *Engine) Round() int {
	return e.round.Value()
}

// Lookup implements engine.Engine.
func (e *Engine) Lookup(id int32) (core.Body, bool) {
	return e.registry.Get(id)
}

// Running implements engine.Engine.
func (e *Engine) Running() bool {
	return e.running
}

// SetWinner implements engine.Engine.
func (e *Engine) SetWinner(side core.Side, cause core.Cause) {
	if e.decided {
		return
	}
	e.winner, e.cause, e.decided = side, cause, true
	e.running = false
}

// Winner implements engine.Engine.
func (e *Engine) Winner() (core.Side, core.Cause, bool) {
	return e.winner, e.cause, e.decided
}

// Remove takes a body out of the world, as environmental effects do.
func (e *Engine) Remove(id int32) bool {
	return e.registry.Remove(id)
}
