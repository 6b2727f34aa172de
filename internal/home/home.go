package home

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultDirName is the default name for the surveytab home directory.
	DefaultDirName = ".surveytab"

	// RunsDirName is the subdirectory holding one directory per processing run.
	RunsDirName = "runs"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"

	// Files inside a run directory.
	PagesDirName  = "pages"
	CallsFileName = "calls.jsonl"
	LogFileName   = "surveytab.log"
)

// Dir represents the surveytab home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.surveytab).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// DotEnvPath returns the path to the home-level .env file.
func (d *Dir) DotEnvPath() string {
	return filepath.Join(d.path, ".env")
}

// RunsDir returns the directory holding all runs.
func (d *Dir) RunsDir() string {
	return filepath.Join(d.path, RunsDirName)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	if err := os.MkdirAll(d.RunsDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create runs directory: %w", err)
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

// NewRunID returns a sortable run identifier: UTC timestamp plus a short random suffix.
func NewRunID(now time.Time) string {
	return now.UTC().Format("20060102-150405") + "-" + uuid.New().String()[:8]
}

// RunDir returns the directory for a run.
func (d *Dir) RunDir(runID string) string {
	return filepath.Join(d.RunsDir(), runID)
}

// PagesDir returns the directory for a run's rendered page images.
func (d *Dir) PagesDir(runID string) string {
	return filepath.Join(d.RunDir(runID), PagesDirName)
}

// CallsPath returns the path to a run's call journal.
func (d *Dir) CallsPath(runID string) string {
	return filepath.Join(d.RunDir(runID), CallsFileName)
}

// LogPath returns the path to a run's log file.
func (d *Dir) LogPath(runID string) string {
	return filepath.Join(d.RunDir(runID), LogFileName)
}

// EnsureRunDir creates a run directory and its pages subdirectory.
func (d *Dir) EnsureRunDir(runID string) error {
	if err := os.MkdirAll(d.PagesDir(runID), 0o755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}
	return nil
}

// ListRuns returns run IDs, oldest first.
func (d *Dir) ListRuns() ([]string, error) {
	entries, err := os.ReadDir(d.RunsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	var runs []string
	for _, e := range entries {
		if e.IsDir() {
			runs = append(runs, e.Name())
		}
	}
	sort.Strings(runs)
	return runs, nil
}

// LatestRun returns the most recent run ID.
func (d *Dir) LatestRun() (string, error) {
	runs, err := d.ListRuns()
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", fmt.Errorf("no runs in %s", d.RunsDir())
	}
	return runs[len(runs)-1], nil
}
