// Package replay records what happens in a match and writes it out as JSON.
package replay

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/arenaharness/harness/internal/engine"
	"github.com/arenaharness/harness/pkg/core"
)

// FormatVersion is bumped whenever the file layout changes.
const FormatVersion = 1

// Meta describes the match being recorded.
type Meta struct {
	Mode     core.Mode
	Map      core.Map
	TeamA    string
	TeamB    string
	UnitType string
	Started  time.Time
}

// Header is the first section of a replay file.
type Header struct {
	Version    int       `json:"version"`
	Mode       core.Mode `json:"mode"`
	MapName    string    `json:"mapName"`
	Width      float64   `json:"width"`
	Height     float64   `json:"height"`
	Seed       int64     `json:"seed"`
	RoundLimit int       `json:"roundLimit"`
	TeamA      string    `json:"teamA"`
	TeamB      string    `json:"teamB,omitempty"`
	UnitType   string    `json:"unitType,omitempty"`
	StartedAt  string    `json:"startedAt"`
}

// Footer is the last section of a replay file.
type Footer struct {
	Winner     core.Side `json:"winner"`
	WinnerTeam string    `json:"winnerTeam"`
	EndRound   int       `json:"endRound"`
}

// Round is a snapshot of every live body after a round.
type Round struct {
	Round  int         `json:"round"`
	Bodies []core.Body `json:"bodies"`
}

// Action is a single decision taken by a unit.
type Action struct {
	Round  int    `json:"round"`
	ID     int32  `json:"id"`
	Action string `json:"action"`
}

// Export is the root JSON structure.
type Export struct {
	Header  *Header  `json:"header"`
	Rounds  []Round  `json:"rounds"`
	Actions []Action `json:"actions"`
	Footer  *Footer  `json:"footer"`
}

// Recorder accumulates a match in memory until it is written out.
type Recorder struct {
	mu      sync.Mutex
	meta    Meta
	header  *Header
	footer  *Footer
	rounds  []Round
	actions []Action
}

var _ engine.RoundRecorder = (*Recorder)(nil)

// NewRecorder starts an empty recording for meta.
func NewRecorder(meta Meta) *Recorder {
	if meta.Started.IsZero() {
		meta.Started = time.Now()
	}
	return &Recorder{
		meta:    meta,
		rounds:  make([]Round, 0),
		actions: make([]Action, 0),
	}
}

// RecordRound implements engine.RoundRecorder.
func (r *Recorder) RecordRound(round int, bodies []core.Body) {
	snapshot := make([]core.Body, len(bodies))
	for i, b := range bodies {
		snapshot[i] = b.WithID(b.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rounds = append(r.rounds, Round{Round: round, Bodies: snapshot})
}

// RecordAction implements engine.RoundRecorder.
func (r *Recorder) RecordAction(round int, id int32, action string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, Action{Round: round, ID: id, Action: action})
}

// MakeHeader fills in the header from the match metadata.
func (r *Recorder) MakeHeader() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.meta.Map
	r.header = &Header{
		Version:    FormatVersion,
		Mode:       r.meta.Mode,
		MapName:    m.Name,
		Width:      m.Width,
		Height:     m.Height,
		Seed:       m.Seed,
		RoundLimit: m.RoundLimit,
		TeamA:      r.meta.TeamA,
		TeamB:      r.meta.TeamB,
		UnitType:   r.meta.UnitType,
		StartedAt:  r.meta.Started.UTC().Format(time.RFC3339),
	}
	return nil
}

// MakeFooter stamps the winning side. It requires a header.
func (r *Recorder) MakeFooter(winner core.Side) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.header == nil {
		return errors.New("footer written before header")
	}
	end := 0
	if n := len(r.rounds); n > 0 {
		end = r.rounds[n-1].Round
	}
	r.footer = &Footer{Winner: winner, WinnerTeam: r.teamName(winner), EndRound: end}
	return nil
}

func (r *Recorder) teamName(side core.Side) string {
	switch side {
	case core.SideA:
		return r.meta.TeamA
	case core.SideB:
		return r.meta.TeamB
	default:
		return ""
	}
}

// Export returns the recording as it would be written.
func (r *Recorder) Export() Export {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Export{Header: r.header, Rounds: r.rounds, Actions: r.actions, Footer: r.footer}
}

// WriteToFile writes the recording to path. Paths ending in .gz are gzipped.
func (r *Recorder) WriteToFile(path string) error {
	export := r.Export()
	if export.Header == nil || export.Footer == nil {
		return errors.New("replay is missing its header or footer")
	}
	if strings.HasSuffix(path, ".gz") {
		return writeGzipJSON(path, export)
	}
	return writeJSON(path, export)
}

func writeJSON(path string, data Export) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer closeFile(f, &err)

	return json.NewEncoder(f).Encode(data)
}

func writeGzipJSON(path string, data Export) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer closeFile(f, &err)

	gzWriter := gzip.NewWriter(f)
	if err := json.NewEncoder(gzWriter).Encode(data); err != nil {
		gzWriter.Close()
		return err
	}
	return gzWriter.Close()
}

// closeFile closes f and reports its error through err unless err is already set.
func closeFile(f *os.File, err *error) {
	if cerr := f.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("failed to close %s: %w", f.Name(), cerr)
	}
}

// Read loads a replay written by WriteToFile.
func Read(path string) (Export, error) {
	f, err := os.Open(path)
	if err != nil {
		return Export{}, err
	}
	defer f.Close()

	var export Export
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return Export{}, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		err = json.NewDecoder(gz).Decode(&export)
		return export, err
	}
	err = json.NewDecoder(f).Decode(&export)
	return export, err
}
