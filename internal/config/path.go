// Package config turns the layered viper configuration into validated settings for the
// composer, the database and the Google Sheets writer.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

// DefaultDatabasePath is where runs are stored when database.path is unset.
func DefaultDatabasePath() string {
	return ExpandPath("~/.local/share/forge/forge.db")
}

// DefaultConfigFile is the YAML file read when --config is not given.
func DefaultConfigFile() string {
	return ExpandPath("~/.config/forge/config.yaml")
}
