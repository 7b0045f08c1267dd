// Package utils holds small helpers shared by the configuration and the CLI.
package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// homeDir is a variable so tests can pin it
var homeDir = func() (string, error) {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return home, nil
	}
	if home := os.Getenv("HOME"); home != "" {
		return home, nil
	}
	return "", os.ErrNotExist
}

// ExpandPath expands a leading ~ and environment variables in a path taken
// from configuration. Paths it cannot expand are returned unchanged.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := homeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}

	return os.ExpandEnv(path)
}
