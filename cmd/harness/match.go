package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/arenaharness/harness/internal/config"
	"github.com/arenaharness/harness/internal/control"
	"github.com/arenaharness/harness/internal/engine"
	"github.com/arenaharness/harness/internal/engine/local"
	"github.com/arenaharness/harness/internal/influx"
	"github.com/arenaharness/harness/internal/maps"
	"github.com/arenaharness/harness/internal/match"
	"github.com/arenaharness/harness/internal/replay"
	"github.com/arenaharness/harness/internal/scenario"
	"github.com/arenaharness/harness/internal/spawn"
	"github.com/arenaharness/harness/pkg/core"
)

// engineFactory builds the world the driver advances.
var engineFactory engine.Factory = local.New

// playMatch builds the scenario, drives it to a verdict and stores the
// outcome. The summary line is written to stdout before any persistence.
func playMatch(ctx context.Context, opts options, stdout io.Writer) error {
	s := openSession(opts)
	defer s.close(context.Background())
	log := s.logger

	matchCfg := config.GetMatchConfig()
	mapName := opts.mapName
	if mapName == "" {
		mapName = maps.DefaultMap
	}
	base, err := maps.NewStore(matchCfg.MapsDir, false).Load(mapName)
	if err != nil {
		return fmt.Errorf("loading map: %w", err)
	}

	builder := scenario.NewBuilder(spawn.NewLocator(log), log)
	var sc core.Scenario
	unitTag := ""
	switch opts.mode {
	case core.ModeCombat:
		unitType, err := core.ParseRobotType(matchCfg.CombatUnitType)
		if err != nil {
			return fmt.Errorf("match.combatUnitType: %w", err)
		}
		unitTag = unitType.String()
		sc, err = builder.Combat(base, opts.units, unitType)
		if err != nil {
			return fmt.Errorf("building combat scenario: %w", err)
		}
	case core.ModeNavigation:
		unitTag = opts.unitType.String()
		sc, err = builder.Navigation(base, opts.unitType)
		if err != nil {
			return fmt.Errorf("building navigation scenario: %w", err)
		}
	}
	log.Info("Scenario ready",
		"map", sc.Map.Name,
		"bodies", len(sc.Map.Bodies),
		"spawnedA", len(sc.SpawnedA),
		"spawnedB", len(sc.SpawnedB),
		"fallbacks", sc.Fallbacks)

	ledger := openLedger(s)
	defer func() {
		if err := ledger.Close(); err != nil {
			log.Warn("Failed to close storage backend", "error", err)
		}
	}()

	teams := map[core.Side]string{core.SideA: opts.teamA}
	if opts.mode == core.ModeCombat {
		teams[core.SideB] = opts.teamB
	}
	memory := engine.NewMemory()
	loadMemory(ledger, memory, teams, log)

	recorder := replay.NewRecorder(replay.Meta{
		Mode:     opts.mode,
		Map:      sc.Map,
		TeamA:    opts.teamA,
		TeamB:    opts.teamB,
		UnitType: unitTag,
		Started:  s.start,
	})

	providers, err := startProviders(ctx, opts, matchCfg.ControlTimeout, s)
	if err != nil {
		return err
	}
	defer func() {
		for side, p := range providers {
			if err := p.Close(); err != nil {
				log.Debug("Control program closed with error", "side", side.String(), "error", err)
			}
		}
	}()

	eng, err := engineFactory(engine.Config{
		Map:       sc.Map,
		Providers: providers,
		Memory:    memory,
		Recorder:  recorder,
		Logger:    log,
	})
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}

	observers := []match.RoundObserver{
		match.RoundObserverFunc(func(_ context.Context, round int, _ time.Duration) {
			s.matchCtx.SetRound(round)
		}),
	}
	metrics := openMetrics(ctx, s)
	var matchMetrics *influx.MatchMetrics
	if metrics != nil {
		defer func() {
			if err := metrics.Close(); err != nil {
				log.Warn("Failed to close metrics", "error", err)
			}
		}()
		matchMetrics = metrics.ForMatch(s.matchID, opts.mode, sc.Map.Name)
		observers = append(observers, matchMetrics)
	}

	driver, err := match.NewDriver(matchCfg.HardRoundCeiling, log, observers...)
	if err != nil {
		return err
	}

	var adj match.Adjudicator
	var nav *match.Navigation
	if opts.mode == core.ModeNavigation {
		nav = match.NewNavigation(sc.ProbeID, sc.TargetID, opts.unitType, log)
		adj = nav
	} else {
		adj = match.NewCombat()
	}

	verdict, err := driver.Run(ctx, eng, sc.Map.RoundLimit, adj)
	if err != nil {
		return fmt.Errorf("match aborted: %w", err)
	}
	duration := time.Since(s.start)

	winnerTeam := teams[verdict.Winner]
	if nav != nil {
		fmt.Fprintf(stdout, "success=%t round=%d cause=%s\n", nav.Succeeded(), verdict.Round, verdict.Cause)
	} else {
		name := winnerTeam
		if verdict.Draw() {
			name = "draw"
		}
		fmt.Fprintf(stdout, "winner=%s round=%d\n", name, verdict.Round)
	}

	replayCfg := config.GetReplayConfig()
	naming := replay.Naming{Mode: opts.mode, Map: sc.Map.Name}
	if opts.mode == core.ModeCombat {
		naming.Matchup = replay.CombatMatchup(opts.teamA, opts.teamB)
	} else {
		naming.Matchup = opts.teamA
		naming.UnitTag = unitTag
	}
	persister := replay.NewPersister(replayCfg.OutputDir, replayCfg.Compress, log)
	replayPath, err := persister.Persist(recorder, opts.saveFile, naming, verdict.Winner)
	if err != nil {
		return fmt.Errorf("saving replay: %w", err)
	}
	fmt.Fprintf(stdout, "replay=%s\n", replayPath)

	saveMemory(ledger, memory, teams, log)
	rec := core.MatchRecord{
		MatchID:    s.matchID,
		Mode:       opts.mode,
		Map:        sc.Map.Name,
		TeamA:      opts.teamA,
		TeamB:      opts.teamB,
		UnitType:   unitTag,
		Verdict:    verdict,
		WinnerTeam: winnerTeam,
		SpawnedA:   sc.SpawnedA,
		SpawnedB:   sc.SpawnedB,
		ProbeID:    sc.ProbeID,
		TargetID:   sc.TargetID,
		Fallbacks:  sc.Fallbacks,
		ReplayPath: replayPath,
		StartedAt:  s.start,
		Duration:   duration,
	}
	if err := ledger.RecordMatch(rec); err != nil {
		log.Error("Failed to record match", "error", err)
	}
	if matchMetrics != nil {
		if err := matchMetrics.RecordVerdict(verdict, sc.Fallbacks, duration); err != nil {
			log.Warn("Failed to write match metrics", "error", err)
		}
	}
	s.telemetrySummary(ctx)
	return nil
}

// startProviders launches one control program per controlled side. The
// navigation target side is left to the engine's idle default.
func startProviders(ctx context.Context, opts options, timeout time.Duration, s *session) (map[core.Side]control.Provider, error) {
	providers := make(map[core.Side]control.Provider, 2)
	launch := func(side core.Side, team, url string) error {
		p, err := control.StartProcess(ctx, team, url, timeout, s.logger)
		if err != nil {
			return fmt.Errorf("starting %s: %w", team, err)
		}
		providers[side] = p
		return nil
	}

	if err := launch(core.SideA, opts.teamA, opts.urlA); err != nil {
		return nil, err
	}
	if opts.mode == core.ModeCombat {
		if err := launch(core.SideB, opts.teamB, opts.urlB); err != nil {
			_ = providers[core.SideA].Close()
			return nil, err
		}
	} else {
		providers[core.SideB] = control.Null{}
	}
	return providers, nil
}

// openMetrics connects to InfluxDB when enabled. Nil means metrics are off.
func openMetrics(ctx context.Context, s *session) *influx.Manager {
	cfg := config.GetInfluxConfig()
	if !cfg.Enabled {
		return nil
	}
	m := influx.NewManager(cfg, s.componentLogger("influx"))
	if err := m.Connect(ctx); err != nil {
		s.logger.Error("Failed to set up metrics, continuing without them", "error", err)
		return nil
	}
	return m
}
