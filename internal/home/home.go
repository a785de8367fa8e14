package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the vichar home directory.
	DefaultDirName = ".vichar"

	// OutputDirName is the subdirectory for rendered ang documents.
	OutputDirName = "output"

	// DebugDirName is the subdirectory for raw generation payloads saved
	// when extraction comes up empty.
	DebugDirName = "debug"

	// ProgressFileName is the progress cursor file.
	ProgressFileName = "progress.json"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
)

// Dir represents the vichar home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.vichar).
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

// OutputPath returns the directory rendered documents are written to.
func (d *Dir) OutputPath() string {
	return filepath.Join(d.path, OutputDirName)
}

// DebugPath returns the directory for generation debug payloads.
func (d *Dir) DebugPath() string {
	return filepath.Join(d.path, DebugDirName)
}

// ProgressPath returns the path to the progress cursor file.
func (d *Dir) ProgressPath() string {
	return filepath.Join(d.path, ProgressFileName)
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	if err := os.MkdirAll(d.OutputPath(), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.MkdirAll(d.DebugPath(), 0o755); err != nil {
		return fmt.Errorf("failed to create debug directory: %w", err)
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
