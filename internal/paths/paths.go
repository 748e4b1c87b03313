// Package paths resolves where the funnel keeps its configuration and its
// profile data. Each directory follows flag > environment > default.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// appDirName is the directory created under the platform config and data roots.
const appDirName = "leadfunnel"

// CWD-relative directory names, used when a command asks for a local profile.
const (
	LocalConfigDirName = ".funnel"
	LocalDataDirName   = ".funnel-db"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "FUNNEL_CONFIG_DIR"
	EnvDataDir   = "FUNNEL_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	goos          string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	goos:          runtime.GOOS,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/leadfunnel (fallback ~/.config/leadfunnel)
// macOS:   ~/Library/Application Support/leadfunnel
// Windows: %APPDATA%/leadfunnel
func DefaultConfigDir() (string, error) {
	return platformPath("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform directory holding the profile store.
//
// Linux:   $XDG_DATA_HOME/leadfunnel (fallback ~/.local/share/leadfunnel)
// macOS:   ~/Library/Application Support/leadfunnel
// Windows: %APPDATA%/leadfunnel
func DefaultDataDir() (string, error) {
	return platformPath("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func platformPath(xdgEnv, homeRel string) (string, error) {
	if platformDir.goos != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appDirName), nil
	}
	if xdg := os.Getenv(xdgEnv); xdg != "" {
		return filepath.Join(xdg, appDirName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeRel, appDirName), nil
}

// ResolveConfigDir returns flag, else FUNNEL_CONFIG_DIR, else
// DefaultConfigDir(). Explicit values are made absolute.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns flag, else the data_dir value from config.yaml,
// else FUNNEL_DATA_DIR, else DefaultDataDir(). Explicit values are made
// absolute.
func ResolveDataDir(flag, configYAMLValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultDataDir()
}

// LocalDirs returns the CWD-relative config and data directories.
func LocalDirs() (configDir, dataDir string, err error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", "", err
	}
	return filepath.Join(cwd, LocalConfigDirName), filepath.Join(cwd, LocalDataDirName), nil
}
