//go:build !windows

package platform

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/coreforge/enginesync/internal/config"
	"github.com/coreforge/enginesync/internal/domain"
)

const engineRegistryFile = "engines.toml"

// UnixRegistrar records engine installs in a TOML file under the user
// config directory. Engine names are matched case-insensitively; the
// file stores them lowercased.
type UnixRegistrar struct {
	fs     afero.Fs
	dir    string
	logger *slog.Logger
}

// NewRegistrar creates the registrar for the current platform.
func NewRegistrar(opts ...Option) domain.Registrar {
	o := newOptions(opts...)
	return &UnixRegistrar{
		fs:     o.fs,
		dir:    o.registryDir,
		logger: o.logger,
	}
}

// RegisterEngine upserts the engine path under the given name in
// engines.toml, creating the file on first use.
func (r *UnixRegistrar) RegisterEngine(name, path string) error {
	dir, err := r.registryDir()
	if err != nil {
		return err
	}

	if err := r.fs.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}

	file := filepath.Join(dir, engineRegistryFile)

	v := viper.New()
	v.SetFs(r.fs)
	v.SetConfigFile(file)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read engine registry: %w", err)
		}
	}

	engines := v.GetStringMapString("engines")
	if engines == nil {
		engines = make(map[string]string)
	}
	engines[name] = path
	v.Set("engines", engines)

	if err := v.WriteConfigAs(file); err != nil {
		return fmt.Errorf("failed to write engine registry: %w", err)
	}

	r.logger.Info("engine registered", "name", name, "path", path, "file", file)
	return nil
}

func (r *UnixRegistrar) registryDir() (string, error) {
	if r.dir != "" {
		return r.dir, nil
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, config.AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", config.AppName), nil
}

// UnixBootstrap covers platforms without a package manager integration:
// installs are left to the operator, and PATH needs no refresh because
// shells pick up changes on their own here.
type UnixBootstrap struct {
	runner domain.CommandRunner
	fs     afero.Fs
	logger *slog.Logger
}

// NewBootstrap creates the bootstrap for the current platform.
func NewBootstrap(runner domain.CommandRunner, opts ...Option) domain.Bootstrap {
	o := newOptions(opts...)
	return &UnixBootstrap{
		runner: runner,
		fs:     o.fs,
		logger: o.logger,
	}
}

// InstallTool reports that automatic installs are unsupported here.
func (b *UnixBootstrap) InstallTool(_ context.Context, tool string, _ domain.LineSink) error {
	return fmt.Errorf("automatic install of %s is not supported on this platform; install it with your package manager", tool)
}

// RefreshPath is a no-op.
func (b *UnixBootstrap) RefreshPath() error {
	return nil
}

// RunPrerequisites executes the engine's bundled prerequisite script.
// An engine tree without one is skipped, not an error.
func (b *UnixBootstrap) RunPrerequisites(ctx context.Context, enginePath string, sink domain.LineSink) error {
	installer := filepath.Join(enginePath, prereqDirBinaries, prereqDirName, prereqScriptUnix)

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
		Args: []string{"--quiet"},
	}

	return b.runner.Stream(ctx, spec, sink)
}
