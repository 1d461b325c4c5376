// Package platform provides the platform-specific side effects around a
// sync run: recording the engine install for launchers and build tools,
// installing a missing backend CLI, and running the engine's bundled
// prerequisite installer.
package platform

import (
	"log/slog"

	"github.com/spf13/afero"
)

// wingetIDs maps backend CLI names to their winget package identifiers.
var wingetIDs = map[string]string{
	"aws":    "Amazon.AWSCLI",
	"rclone": "Rclone.Rclone",
}

// Prerequisite installer locations inside the engine tree.
const (
	prereqDirBinaries = "Binaries"
	prereqDirName     = "Prerequisites"
	prereqExeWindows  = "EnginePrereqSetup.exe"
	prereqScriptUnix  = "engine-prereq-setup.sh"
)

// options carries the cross-platform construction knobs.
type options struct {
	fs          afero.Fs
	logger      *slog.Logger
	registryDir string
}

// Option configures a Registrar or Bootstrap.
type Option func(*options)

// WithFs sets the filesystem used for registry files and installer
// lookups, primarily for tests.
func WithFs(fs afero.Fs) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRegistryDir overrides the directory holding the unix engine
// registry file, primarily for tests. Ignored on Windows.
func WithRegistryDir(dir string) Option {
	return func(o *options) {
		o.registryDir = dir
	}
}

func newOptions(opts ...Option) options {
	o := options{
		fs:     afero.NewOsFs(),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
