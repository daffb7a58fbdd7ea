// Package manifest handles cloudcal.toml run configuration.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest file looked up by FindAndLoad.
const FileName = "cloudcal.toml"

// Defaults applied when a key is absent.
const (
	DefaultProgram = "input_program.txt"
	DefaultHistory = ".cloudcal/history.db"
)

// Manifest represents a cloudcal.toml configuration.
type Manifest struct {
	Program  Program  `toml:"program"`
	Eval     Eval     `toml:"eval"`
	History  History  `toml:"history"`
	Snapshot Snapshot `toml:"snapshot"`
	Log      Log      `toml:"log"`

	// Dir is the directory containing the cloudcal.toml file (set at load
	// time). Relative paths in the manifest are resolved against it.
	Dir string `toml:"-"`
}

// Program locates the listing to run.
type Program struct {
	Path string `toml:"path"`
}

// Eval configures grid evaluation.
type Eval struct {
	Workers int  `toml:"workers"`
	Trace   bool `toml:"trace"`
}

// History configures the run database.
type History struct {
	Enabled bool   `toml:"enabled"`
	DB      string `toml:"db"`
}

// Snapshot configures snapshot output. An empty Output disables it.
type Snapshot struct {
	Output string `toml:"output"`
}

// Log configures logging.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Default returns the configuration used when no cloudcal.toml exists,
// rooted at dir.
func Default(dir string) (*Manifest, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	m := &Manifest{Dir: abs}
	m.applyDefaults()
	return m, nil
}

// Load parses a cloudcal.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	m.applyDefaults()
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

// FindAndLoad walks up from startDir to find a cloudcal.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// LoadOrDefault is FindAndLoad falling back to Default(startDir).
func LoadOrDefault(startDir string) (*Manifest, error) {
	m, err := FindAndLoad(startDir)
	if err != nil || m != nil {
		return m, err
	}
	return Default(startDir)
}

func (m *Manifest) applyDefaults() {
	if m.Program.Path == "" {
		m.Program.Path = DefaultProgram
	}
	if m.History.DB == "" {
		m.History.DB = DefaultHistory
	}
}

// Validate checks value ranges that TOML decoding cannot express.
func (m *Manifest) Validate() error {
	var errs []error
	if m.Eval.Workers < 0 {
		errs = append(errs, fmt.Errorf("eval.workers must be >= 0, got %d", m.Eval.Workers))
	}
	if m.Log.Verbosity < 0 {
		errs = append(errs, fmt.Errorf("log.verbosity must be >= 0, got %d", m.Log.Verbosity))
	}
	return errors.Join(errs...)
}

// ProgramPath returns the absolute path of the program listing.
func (m *Manifest) ProgramPath() string {
	return m.resolve(m.Program.Path)
}

// HistoryPath returns the absolute path of the run database.
func (m *Manifest) HistoryPath() string {
	return m.resolve(m.History.DB)
}

// SnapshotPath returns the absolute snapshot output path, or "" when
// snapshots are disabled.
func (m *Manifest) SnapshotPath() string {
	return m.resolve(m.Snapshot.Output)
}

// LogPath returns the log file path in the form commonlog.Configure expects:
// nil logs to stderr.
func (m *Manifest) LogPath() *string {
	if m.Log.File == "" {
		return nil
	}
	path := m.resolve(m.Log.File)
	return &path
}

func (m *Manifest) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}
