package main

import (
	"log/slog"

	"github.com/arenaharness/harness/internal/config"
	"github.com/arenaharness/harness/internal/engine"
	"github.com/arenaharness/harness/internal/storage"
	"github.com/arenaharness/harness/internal/storage/memory"
	"github.com/arenaharness/harness/pkg/core"
)

// openLedger creates and initializes the configured backend. A backend that
// cannot be reached is replaced by an in-memory one so the match still runs.
func openLedger(s *session) storage.Backend {
	storageCfg := config.GetStorageConfig()

	backend, err := storage.NewBackend(storageCfg, s.componentLogger("storage"))
	if err != nil {
		s.logger.Error("Failed to create storage backend", "error", err)
		return memory.New()
	}
	if err := backend.Init(); err != nil {
		s.logger.Error("Failed to initialize storage backend, results will not be kept", "type", storageCfg.Type, "error", err)
		return memory.New()
	}
	s.logger.Info("Storage backend initialized", "type", storageCfg.Type)
	return backend
}

// loadMemory seeds each team's memory from what it saved last time.
func loadMemory(ledger storage.Backend, mem *engine.Memory, teams map[core.Side]string, log *slog.Logger) {
	for side, team := range teams {
		slots, err := ledger.LoadMemory(team)
		if err != nil {
			log.Warn("Failed to load team memory", "team", team, "error", err)
			continue
		}
		if slots != nil {
			mem.Load(side, slots)
			log.Debug("Loaded team memory", "team", team, "slots", len(slots))
		}
	}
}

// saveMemory stores each team's memory for its next match.
func saveMemory(ledger storage.Backend, mem *engine.Memory, teams map[core.Side]string, log *slog.Logger) {
	for side, team := range teams {
		if err := ledger.SaveMemory(team, mem.Get(side)); err != nil {
			log.Warn("Failed to save team memory", "team", team, "error", err)
		}
	}
}
