package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	DefaultInstallRoot = `C:\Program Files\TechnoSupport\APC`
	DefaultDataRoot    = `C:\ProgramData\TechnoSupport\APC`
)

// ResolveInstallRoot returns the absolute path to the APC installation directory.
func ResolveInstallRoot() string {
	root := os.Getenv("APC_INSTALL_ROOT")
	if root == "" {
		root = DefaultInstallRoot
	}
	return root
}

// ResolveDataRoot returns the absolute path to the APC data directory.
func ResolveDataRoot() string {
	root := os.Getenv("APC_DATA_ROOT")
	if root == "" {
		root = DefaultDataRoot
	}
	return root
}

// ResolveConfigPath returns the absolute path to the configuration file.
func ResolveConfigPath(customPath string) string {
	if customPath != "" {
		return customPath
	}
	return filepath.Join(ResolveDataRoot(), "config", "default.yaml")
}

// ResolveLocalDBPath returns the path of the local SQLite database holding
// schedules, ignore flags and snapshots.
func ResolveLocalDBPath() string {
	if p := os.Getenv("APC_DB_PATH"); p != "" {
		return p
	}
	return filepath.Join(ResolveDataRoot(), "db", "apc.db")
}

// EnsureDirs creates the standard APC data subdirectories if they don't exist.
func EnsureDirs() error {
	dataRoot := ResolveDataRoot()
	subdirs := []string{
		"config",
		"logs",
		"db",
	}

	for _, sub := range subdirs {
		path := filepath.Join(dataRoot, sub)
		if err := os.MkdirAll(path, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", path, err)
		}
	}
	return nil
}
