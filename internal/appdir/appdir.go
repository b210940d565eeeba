// Package appdir provides constants and utilities for the per-user
// application data directory.
package appdir

import (
	"os"
	"path/filepath"
)

const (
	// Dir is the name of the application data directory.
	Dir = "ProductionManager"

	// DefaultDataFile is the default board file name (inside Dir).
	DefaultDataFile = "data.json"

	// DefaultConfigFile is the default config file name (inside Dir).
	DefaultConfigFile = "prodman.toml"
)

// Root returns the application data directory under the OS per-user config
// location. The directory is not created here; the store creates it before
// the first write. Falls back to a relative directory when the user location
// cannot be resolved.
func Root() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return Dir
	}
	return filepath.Join(base, Dir)
}

// DataPath returns the default full path to the board file.
func DataPath() string {
	return filepath.Join(Root(), DefaultDataFile)
}

// ConfigPath returns the default full path to the config file.
func ConfigPath() string {
	return filepath.Join(Root(), DefaultConfigFile)
}
