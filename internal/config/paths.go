package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	// AppName is the application name used for log directories and the
	// unix engine registry file.
	AppName = "enginesync"
	// ConfigFileName is the default config file name.
	ConfigFileName = "enginesync.toml"
	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "ENGINESYNC"
)

// InstallDir returns the directory containing the running executable.
// The config file and optional .env live beside the binary so a synced
// engine tree is self-contained.
func InstallDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// DefaultEnginePath returns the engine root implied by the binary's own
// location: three directory levels above the executable, matching the
// tool's place inside a checked-out engine tree.
func DefaultEnginePath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	root := filepath.Dir(filepath.Dir(filepath.Dir(exe)))
	return NormalizeEnginePath(root), nil
}

// NormalizeEnginePath strips trailing path separators so the path can be
// handed to the backend CLIs and to filepath.Dir without surprises.
func NormalizeEnginePath(p string) string {
	for len(p) > 1 && (p[len(p)-1] == '/' || p[len(p)-1] == '\\') {
		p = p[:len(p)-1]
	}
	return p
}

// DefaultLogDir returns the default log directory for the current OS.
func DefaultLogDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		// %LOCALAPPDATA%\enginesync\logs
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			localAppData = filepath.Join(home, "AppData", "Local")
		}
		return filepath.Join(localAppData, AppName, "logs"), nil

	case "darwin":
		// ~/Library/Logs/enginesync
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Logs", AppName), nil

	default:
		// Linux: $XDG_STATE_HOME/enginesync or ~/.local/state/enginesync
		if xdgState := os.Getenv("XDG_STATE_HOME"); xdgState != "" {
			return filepath.Join(xdgState, AppName), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "state", AppName), nil
	}
}

// DefaultLogPath returns the full path to the default log file.
func DefaultLogPath() (string, error) {
	dir, err := DefaultLogDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName+".log"), nil
}
