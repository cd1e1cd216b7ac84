package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the sheaf home directory.
	DefaultDirName = ".sheaf"

	// RunsDirName is the subdirectory holding per-run assembly reports.
	RunsDirName = "runs"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
)

// Dir represents the sheaf home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.sheaf).
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

// RunsPath returns the directory where run reports are written.
func (d *Dir) RunsPath() string {
	return filepath.Join(d.path, RunsDirName)
}

// RunReportPath returns the report path for a run ID.
func (d *Dir) RunReportPath(runID string) string {
	return filepath.Join(d.RunsPath(), runID+".json")
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	// Create runs directory (this also creates the parent)
	if err := os.MkdirAll(d.RunsPath(), 0o755); err != nil {
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
