package domain

import "context"

// Registrar records the resolved engine path in the host platform's
// engine discovery mechanism so launchers and build tools can find the
// tree.
// Implementations are platform-specific (Windows registry, config file).
type Registrar interface {
	// RegisterEngine associates name with the engine root path.
	RegisterEngine(name, path string) error
}

// Bootstrap covers the platform side effects around a sync run:
// installing a missing backend CLI, refreshing the process view of PATH
// after an install, and running the engine's bundled prerequisite
// installer.
type Bootstrap interface {
	// InstallTool installs the named backend CLI through the platform
	// package manager, streaming installer output to sink.
	InstallTool(ctx context.Context, tool string, sink LineSink) error

	// RefreshPath reloads the PATH variable visible to this process so a
	// tool installed moments ago resolves without a restart.
	RefreshPath() error

	// RunPrerequisites executes the prerequisite installer bundled under
	// the engine tree, streaming its output to sink.
	RunPrerequisites(ctx context.Context, enginePath string, sink LineSink) error
}
