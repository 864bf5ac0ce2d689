// Package maps reads and writes map files. A map named "x" lives in
// x.map.json or x.map.json.gz under the maps directory; maps bundled with
// the binary are used when no file is found.
package maps

import (
	"compress/gzip"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/arenaharness/harness/pkg/core"
)

// ErrMapNotFound is returned when no file or bundled map has the requested name.
var ErrMapNotFound = errors.New("map not found")

// DefaultMap is the bundled map used when no --map is given.
const DefaultMap = "shrine"

const (
	extension   = ".map.json"
	gzExtension = ".map.json.gz"
)

//go:embed embedded/*.map.json
var bundled embed.FS

// Store loads and saves maps in one directory.
type Store struct {
	Dir      string
	Compress bool
}

// NewStore uses dir for reads and writes.
func NewStore(dir string, compress bool) *Store {
	return &Store{Dir: dir, Compress: compress}
}

// Load reads the named map. Files in Dir take precedence over bundled maps.
// The returned map always carries name as its Name.
func (s *Store) Load(name string) (core.Map, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return core.Map{}, fmt.Errorf("invalid map name %q", name)
	}

	for _, ext := range []string{extension, gzExtension} {
		path := filepath.Join(s.Dir, name+ext)
		m, err := readFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return core.Map{}, fmt.Errorf("reading map %s: %w", path, err)
		}
		return validate(name, m)
	}

	raw, err := bundled.ReadFile("embedded/" + name + extension)
	if err != nil {
		return core.Map{}, fmt.Errorf("%w: %s", ErrMapNotFound, name)
	}
	var m core.Map
	if err := json.Unmarshal(raw, &m); err != nil {
		return core.Map{}, fmt.Errorf("decoding bundled map %s: %w", name, err)
	}
	return validate(name, m)
}

// Write stores m under its name, replacing any existing file.
func (s *Store) Write(m core.Map) (path string, err error) {
	if m.Name == "" {
		return "", errors.New("map has no name")
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create maps directory: %w", err)
	}

	ext := extension
	if s.Compress {
		ext = gzExtension
	}
	path = filepath.Join(s.Dir, m.Name+ext)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			path, err = "", fmt.Errorf("failed to close %s: %w", f.Name(), cerr)
		}
	}()

	var w io.Writer = f
	var gz *gzip.Writer
	if s.Compress {
		gz = gzip.NewWriter(f)
		w = gz
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return "", fmt.Errorf("encoding map %s: %w", m.Name, err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return "", err
		}
	}
	return path, nil
}

// Bundled lists the names of the maps compiled into the binary.
func Bundled() []string {
	entries, err := bundled.ReadDir("embedded")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), extension))
	}
	return names
}

func readFile(path string) (core.Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.Map{}, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return core.Map{}, err
		}
		defer gz.Close()
		r = gz
	}

	var m core.Map
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return core.Map{}, err
	}
	return m, nil
}

func validate(name string, m core.Map) (core.Map, error) {
	if m.Width <= 0 || m.Height <= 0 {
		return core.Map{}, fmt.Errorf("map %s has invalid size %gx%g", name, m.Width, m.Height)
	}
	if m.RoundLimit <= 0 {
		return core.Map{}, fmt.Errorf("map %s has no round limit", name)
	}
	seen := make(map[int32]struct{}, len(m.Bodies))
	for _, b := range m.Bodies {
		if _, dup := seen[b.ID]; dup {
			return core.Map{}, fmt.Errorf("map %s has duplicate body id %d", name, b.ID)
		}
		seen[b.ID] = struct{}{}
	}
	m.Name = name
	return m, nil
}
