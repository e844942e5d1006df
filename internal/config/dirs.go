package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	APP_DIR_NAME = "lab-roster"
)

// DataDir is where the SQLite database lives unless a database URL is
// configured. Resolution order: $XDG_DATA_HOME, ~/.local/share, ~/.lab-roster.
func DataDir() string {
	return appDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// ConfigDir holds settings.yaml. Resolution order: $XDG_CONFIG_HOME,
// ~/.config, ~/.lab-roster.
func ConfigDir() string {
	return appDir("XDG_CONFIG_HOME", ".config")
}

func appDir(xdgVar string, homeSubdir string) string {
	if xdgDir := os.Getenv(xdgVar); xdgDir != "" {
		return filepath.Join(xdgDir, APP_DIR_NAME)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// No home directory (e.g. in a minimal container), fall back to the working directory
		if cwd, err := os.Getwd(); err == nil {
			return filepath.Join(cwd, fmt.Sprintf(".%s", APP_DIR_NAME))
		}
		return "."
	}

	if _, err := os.Stat(filepath.Join(homeDir, homeSubdir)); err == nil {
		return filepath.Join(homeDir, homeSubdir, APP_DIR_NAME)
	}

	return filepath.Join(homeDir, fmt.Sprintf(".%s", APP_DIR_NAME))
}
