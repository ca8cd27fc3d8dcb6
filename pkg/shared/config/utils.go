package config

import (
	"os"
	"path/filepath"
	"reflect"
	"time"
)

// SetThen selects the first value if set, otherwise the default.
func SetThen[T any](value T, defaultValue T) T {
	if reflect.ValueOf(value).IsZero() {
		return defaultValue
	}
	return value
}

// GetFpscanHome returns the base directory for fpscan state. The
// FPSCAN_HOME environment variable overrides the default of ~/.fpscan.
func GetFpscanHome() string {
	if env := os.Getenv("FPSCAN_HOME"); env != "" {
		return env
	}
	home, err := os.UserHomeDir()
	if err != nil {
		panic("unable to get home folder")
	}
	return filepath.Join(home, ".fpscan")
}

// GetResultsHome returns the directory findings files are written to.
func GetResultsHome(cfg *Config) string {
	if cfg != nil && cfg.Results.Dir != "" {
		return cfg.Results.Dir
	}
	return filepath.Join(GetFpscanHome(), "results")
}

// GetWorkspaceRoot returns the directory disposable clone workspaces live in.
func GetWorkspaceRoot(cfg *Config) string {
	if cfg != nil && cfg.Workspace.Root != "" {
		return cfg.Workspace.Root
	}
	return os.TempDir()
}

// GetGitCommandTimeout returns the per-invocation git timeout.
func GetGitCommandTimeout(cfg *Config) time.Duration {
	if cfg == nil {
		return 5 * time.Minute
	}
	return SetThen(cfg.Git.CommandTimeout, 5*time.Minute)
}

// GetCloneDepth returns the history limit for shallow clones.
func GetCloneDepth(cfg *Config) int {
	if cfg == nil {
		return 100
	}
	return SetThen(cfg.Git.CloneDepth, 100)
}
