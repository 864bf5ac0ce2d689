package replay

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/arenaharness/harness/internal/util"
	"github.com/arenaharness/harness/pkg/core"
)

// MatchRecorder is the replay writer the persister delegates to.
type MatchRecorder interface {
	MakeHeader() error
	MakeFooter(winner core.Side) error
	WriteToFile(path string) error
}

// Naming is what a default replay file name is built from.
type Naming struct {
	Mode    core.Mode
	Matchup string
	Map     string
	// UnitTag is appended when non-empty, e.g. the probe type in navigation.
	UnitTag string
}

// Persister decides where a replay goes and writes it.
type Persister struct {
	OutputDir string
	Compress  bool
	Now       func() time.Time
	Logger    *slog.Logger
}

// NewPersister writes into outputDir.
func NewPersister(outputDir string, compress bool, logger *slog.Logger) *Persister {
	if logger == nil {
		logger = slog.Default()
	}
	return &Persister{OutputDir: outputDir, Compress: compress, Now: time.Now, Logger: logger}
}

// CombatMatchup names a combat pairing.
func CombatMatchup(teamA, teamB string) string {
	return teamA + "-vs-" + teamB
}

// DefaultPath is {outputDir}/{mode}_{matchup}_on_{map}[_{unitTag}]_{timestamp}.{ext}
// with matchup and map sanitized.
func (p *Persister) DefaultPath(n Naming) string {
	name := fmt.Sprintf("%s_%s_on_%s", n.Mode, util.SanitizeFilename(n.Matchup), util.SanitizeFilename(n.Map))
	if n.UnitTag != "" {
		name += "_" + util.SanitizeFilename(n.UnitTag)
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	name += "_" + util.FileTimestamp(now())

	ext := "json"
	if p.Compress {
		ext = "json.gz"
	}
	return filepath.Join(p.OutputDir, name+"."+ext)
}

// Persist writes rec to path, or to DefaultPath(n) when path is empty,
// creating missing parent directories. It returns the path written.
func (p *Persister) Persist(rec MatchRecorder, path string, n Naming, winner core.Side) (string, error) {
	if path == "" {
		path = p.DefaultPath(n)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := rec.MakeHeader(); err != nil {
		return "", fmt.Errorf("replay header: %w", err)
	}
	if err := rec.MakeFooter(winner); err != nil {
		return "", fmt.Errorf("replay footer: %w", err)
	}
	if err := rec.WriteToFile(path); err != nil {
		return "", fmt.Errorf("writing replay %s: %w", path, err)
	}

	if p.Logger != nil {
		p.Logger.Info("Replay saved", "path", path)
	}
	return path, nil
}
