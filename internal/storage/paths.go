// Package storage persists finished and in-progress games, user preferences
// and play statistics in a BadgerDB database.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "chessplay"

// DataDirEnv overrides the platform data directory when set.
const DataDirEnv = "CHESSPLAY_DATA_DIR"

// dataHome says where a platform keeps per-user application data: an
// environment variable consulted first, then a path under the home
// directory.
type dataHome struct {
	env      string
	fallback []string
}

var dataHomes = map[string]dataHome{
	"darwin":  {fallback: []string{"Library", "Application Support"}},
	"windows": {env: "APPDATA", fallback: []string{"AppData", "Roaming"}},
}

// XDG layout for everything else.
var defaultDataHome = dataHome{env: "XDG_DATA_HOME", fallback: []string{".local", "share"}}

func (h dataHome) resolve() (string, error) {
	if h.env != "" {
		if dir := os.Getenv(h.env); dir != "" {
			return dir, nil
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{home}, h.fallback...)...), nil
}

// GetDataDir returns the application data directory, creating it if
// needed. DataDirEnv wins over the platform default.
func GetDataDir() (string, error) {
	if dir := os.Getenv(DataDirEnv); dir != "" {
		return ensureDir(dir)
	}

	h, ok := dataHomes[runtime.GOOS]
	if !ok {
		h = defaultDataHome
	}
	base, err := h.resolve()
	if err != nil {
		return "", fmt.Errorf("locate data directory: %w", err)
	}
	return ensureDir(filepath.Join(base, appName))
}

// GetDatabaseDir returns the Badger directory inside the data directory.
func GetDatabaseDir() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return ensureDir(filepath.Join(dataDir, "db"))
}

func ensureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	return dir, nil
}
