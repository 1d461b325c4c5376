//go:build windows

package platform

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/sys/windows/registry"

	"github.com/coreforge/enginesync/internal/domain"
)

const (
	engineRegistryPath = `Software\EngineSync\Engines`

	machineEnvPath = `SYSTEM\CurrentControlSet\Control\Session Manager\Environment`
	userEnvPath    = `Environment`
)

// WindowsRegistrar records engine installs under HKCU so launchers and
// build tools can discover the tree.
type WindowsRegistrar struct {
	logger *slog.Logger
}

// NewRegistrar creates the registrar for the current platform.
func NewRegistrar(opts ...Option) domain.Registrar {
	o := newOptions(opts...)
	return &WindowsRegistrar{logger: o.logger}
}

// RegisterEngine writes the engine path as a string value named after
// the configured registry key. An existing value is overwritten.
func (r *WindowsRegistrar) RegisterEngine(name, path string) error {
	k, _, err := registry.CreateKey(registry.CURRENT_USER, engineRegistryPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("failed to open engine registry key: %w", err)
	}
	defer k.Close()

	if err := k.SetStringValue(name, path); err != nil {
		return fmt.Errorf("failed to register engine %q: %w", name, err)
	}

	r.logger.Info("engine registered", "name", name, "path", path)
	return nil
}

// WindowsBootstrap installs backend CLIs through winget and reloads the
// process PATH from the registry afterwards.
type WindowsBootstrap struct {
	runner domain.CommandRunner
	fs     afero.Fs
	logger *slog.Logger
}

// NewBootstrap creates the bootstrap for the current platform.
func NewBootstrap(runner domain.CommandRunner, opts ...Option) domain.Bootstrap {
	o := newOptions(opts...)
	return &WindowsBootstrap{
		runner: runner,
		fs:     o.fs,
		logger: o.logger,
	}
}

// InstallTool installs the named backend CLI with winget, streaming
// installer output to sink.
func (b *WindowsBootstrap) InstallTool(ctx context.Context, tool string, sink domain.LineSink) error {
	id, ok := wingetIDs[tool]
	if !ok {
		return fmt.Errorf("no installer mapping for %q", tool)
	}

	b.logger.Info("installing backend CLI", "tool", tool, "winget_id", id)

	spec := domain.CommandSpec{
		Path: "winget",
		Args: []string{
			"install",
			"--id", id,
			"--exact",
			"--silent",
			"--accept-package-agreements",
			"--accept-source-agreements",
		},
	}

	return b.runner.Stream(ctx, spec, sink)
}

// RefreshPath rebuilds the process PATH from the machine and user
// values in the registry, so a tool installed moments ago resolves
// without restarting the process.
func (b *WindowsBootstrap) RefreshPath() error {
	machine, err := readRegistryPath(registry.LOCAL_MACHINE, machineEnvPath)
	if err != nil {
		return fmt.Errorf("failed to read machine PATH: %w", err)
	}

	user, err := readRegistryPath(registry.CURRENT_USER, userEnvPath)
	if err != nil {
		return fmt.Errorf("failed to read user PATH: %w", err)
	}

	var parts []string
	if machine != "" {
		parts = append(parts, machine)
	}
	if user != "" {
		parts = append(parts, user)
	}

	merged := strings.Join(parts, ";")
	if err := os.Setenv("PATH", merged); err != nil {
		return fmt.Errorf("failed to set PATH: %w", err)
	}

	b.logger.Debug("process PATH refreshed from registry")
	return nil
}

// RunPrerequisites executes the engine's bundled prerequisite installer.
// An engine tree without one is skipped, not an error.
func (b *WindowsBootstrap) RunPrerequisites(ctx context.Context, enginePath string, sink domain.LineSink) error {
	installer := filepath.Join(enginePath, prereqDirBinaries, prereqDirName, prereqExeWindows)

	exists, err := afero.Exists(b.fs, installer)
	if err != nil {
		return fmt.Errorf("failed to check prerequisite installer: %w", err)
	}
	if !exists {
		b.logger.Warn("prerequisite installer not found, skipping", "path", installer)
		return nil
	}

	spec := domain.CommandSpec{
		Path: installer,
		Args: []string{"/quiet"},
	}

	return b.runner.Stream(ctx, spec, sink)
}

// readRegistryPath reads a Path value from the given hive, expanding
// REG_EXPAND_SZ references.
func readRegistryPath(hive registry.Key, keyPath string) (string, error) {
	k, err := registry.OpenKey(hive, keyPath, registry.QUERY_VALUE)
	if err != nil {
		return "", err
	}
	defer k.Close()

	v, valType, err := k.GetStringValue("Path")
	if err != nil {
		if err == registry.ErrNotExist {
			return "", nil
		}
		return "", err
	}

	if valType == registry.EXPAND_SZ {
		return registry.ExpandString(v)
	}
	return v, nil
}
