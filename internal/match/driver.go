// Package match drives an engine round by round and decides how a match ends.
package match

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/arenaharness/harness/internal/engine"
	"github.com/arenaharness/harness/pkg/core"
)

// HardRoundCeiling caps every match regardless of the map's round limit.
const HardRoundCeiling = 3000

// Adjudicator inspects the engine after every round and produces the verdict.
type Adjudicator interface {
	Mode() core.Mode
	// Observe is called once after each executed round.
	Observe(eng engine.Engine)
	// Verdict is the final decision once the loop has stopped.
	Verdict(eng engine.Engine) core.Verdict
}

// RoundObserver is notified after every executed round.
type RoundObserver interface {
	ObserveRound(ctx context.Context, round int, elapsed time.Duration)
}

// RoundObserverFunc adapts a function to RoundObserver.
type RoundObserverFunc func(ctx context.Context, round int, elapsed time.Duration)

func (f RoundObserverFunc) ObserveRound(ctx context.Context, round int, elapsed time.Duration) {
	f(ctx, round, elapsed)
}

// Driver advances an engine until it stops or the round bound is hit.
type Driver struct {
	ceiling   int
	log       *slog.Logger
	observers []RoundObserver

	rounds   metric.Int64Counter
	verdicts metric.Int64Counter
	duration metric.Float64Histogram
}

// NewDriver creates a driver. A ceiling <= 0 selects HardRoundCeiling and a
// larger one is clamped to it.
// Uses the global OTel meter for metrics (no-op if not configured).
func NewDriver(ceiling int, logger *slog.Logger, observers ...RoundObserver) (*Driver, error) {
	if ceiling <= 0 {
		ceiling = HardRoundCeiling
	}
	ceiling = min(ceiling, HardRoundCeiling)
	if logger == nil {
		logger = slog.Default()
	}
	d := &Driver{ceiling: ceiling, log: logger, observers: observers}

	m := meter()
	var err error

	d.rounds, err = m.Int64Counter(
		"match.rounds",
		metric.WithDescription("Total rounds executed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rounds counter: %w", err)
	}

	d.verdicts, err = m.Int64Counter(
		"match.verdicts",
		metric.WithDescription("Matches decided, by mode, winner and cause"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating verdicts counter: %w", err)
	}

	d.duration, err = m.Float64Histogram(
		"match.round.duration",
		metric.WithDescription("Wall time spent in one round"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating round duration histogram: %w", err)
	}

	return d, nil
}

// Bound is the maximum number of rounds executed for a map's round limit.
func (d *Driver) Bound(roundLimit int) int {
	return min(d.ceiling, roundLimit) + 1
}

// Run drives eng to completion and returns the adjudicated verdict.
// Errors from the round loop are returned without a verdict.
func (d *Driver) Run(ctx context.Context, eng engine.Engine, roundLimit int, adj Adjudicator) (core.Verdict, error) {
	bound := d.Bound(roundLimit)
	modeAttr := attribute.String("mode", string(adj.Mode()))

	executed := 0
	for executed < bound && eng.Running() {
		start := time.Now()
		state, err := eng.RunRound(ctx)
		if err != nil {
			return core.Verdict{}, fmt.Errorf("round %d: %w", eng.Round(), err)
		}
		executed++
		elapsed := time.Since(start)

		d.rounds.Add(ctx, 1, metric.WithAttributes(modeAttr))
		d.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(modeAttr))

		adj.Observe(eng)
		for _, o := range d.observers {
			o.ObserveRound(ctx, eng.Round(), elapsed)
		}

		if state == engine.StateDone {
			break
		}
	}

	verdict := adj.Verdict(eng)
	d.verdicts.Add(ctx, 1, metric.WithAttributes(
		modeAttr,
		attribute.String("winner", verdict.Winner.String()),
		attribute.String("cause", verdict.Cause.String()),
	))
	d.log.Info("Match finished",
		"mode", adj.Mode(),
		"rounds", executed,
		"verdict", verdict.String())
	return verdict, nil
}
