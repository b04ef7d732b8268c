// Package project locates and reads decc.toml, the manifest that lists the
// fixture files of a project in collection order.
package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrNoFiles is returned for a manifest without any fixture file.
var ErrNoFiles = errors.New("project: manifest lists no files")

// Manifest is a decoded decc.toml.
//
//	[project]
//	name = "demo"
//	files = ["std.toml", "main.toml"]
//	max_diagnostics = 50
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

type Config struct {
	Project ProjectConfig `toml:"project"`
}

type ProjectConfig struct {
	Name           string   `toml:"name"`
	Files          []string `toml:"files"`
	MaxDiagnostics int      `toml:"max_diagnostics"`
}

// Load finds the manifest above startDir and decodes it. ok is false when
// there is no manifest at all.
func Load(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := LoadFile(path)
	return m, true, err
}

// LoadFile decodes the manifest at path.
func LoadFile(path string) (*Manifest, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("project") {
		return nil, fmt.Errorf("%s: missing [project] table", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if len(cfg.Project.Files) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoFiles)
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, nil
}

// Files returns the fixture paths resolved against the manifest directory.
func (m *Manifest) Files() []string {
	out := make([]string, len(m.Config.Project.Files))
	for i, f := range m.Config.Project.Files {
		if filepath.IsAbs(f) {
			out[i] = f
		} else {
			out[i] = filepath.Join(m.Root, f)
		}
	}
	return out
}
