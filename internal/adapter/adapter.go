// Package adapter provides one domain.Adapter implementation per
// supported backend CLI.
package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/coreforge/enginesync/internal/config"
	"github.com/coreforge/enginesync/internal/domain"
)

// base carries the pieces shared by every backend adapter: the loaded
// configuration, the platform bootstrap used to install a missing tool,
// and seams for binary lookup and version probing.
type base struct {
	cfg        *config.Config
	bootstrap  domain.Bootstrap
	lookPath   func(file string) (string, error)
	runVersion func(ctx context.Context, tool string) ([]byte, error)
	logger     *slog.Logger
}

// Option configures a backend adapter.
type Option func(*base)

// WithBootstrap sets the platform bootstrap used to install missing
// backend CLIs.
func WithBootstrap(bootstrap domain.Bootstrap) Option {
	return func(b *base) {
		b.bootstrap = bootstrap
	}
}

// WithLookPath overrides binary resolution, primarily for tests.
func WithLookPath(fn func(file string) (string, error)) Option {
	return func(b *base) {
		b.lookPath = fn
	}
}

// WithVersionCommand overrides the "--version" probe, primarily for tests.
func WithVersionCommand(fn func(ctx context.Context, tool string) ([]byte, error)) Option {
	return func(b *base) {
		b.runVersion = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *base) {
		b.logger = logger
	}
}

func newBase(cfg *config.Config, opts ...Option) base {
	b := base{
		cfg:      cfg,
		lookPath: exec.LookPath,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(&b)
	}

	return b
}

// New returns the adapter registered for the backend. The set of
// variants is closed; supporting another tool means adding one case
// here and one adapter file.
func New(backend domain.Backend, cfg *config.Config, opts ...Option) (domain.Adapter, error) {
	switch backend {
	case domain.BackendAWS:
		return NewAWSCLI(cfg, opts...), nil
	case domain.BackendRclone:
		return NewRclone(cfg, opts...), nil
	default:
		return nil, &domain.UnknownBackendError{Name: backend.String()}
	}
}

// ensureTool resolves the tool on PATH, installing it through the
// platform bootstrap when missing and checking again afterwards.
func (b *base) ensureTool(ctx context.Context, tool string, sink domain.LineSink) error {
	if _, err := b.lookPath(tool); err == nil {
		return nil
	}

	b.logger.Info("backend CLI not found, attempting install", "tool", tool)

	if b.bootstrap == nil {
		return &domain.ToolInstallError{Tool: tool, Err: fmt.Errorf("no installer available")}
	}

	if err := b.bootstrap.InstallTool(ctx, tool, sink); err != nil {
		return &domain.ToolInstallError{Tool: tool, Err: err}
	}

	// The install succeeded moments ago; the process PATH has to be
	// reloaded before the new binary can resolve.
	if err := b.bootstrap.RefreshPath(); err != nil {
		return fmt.Errorf("failed to refresh PATH after install: %w", err)
	}

	if _, err := b.lookPath(tool); err != nil {
		return &domain.ToolInstallError{Tool: tool, Err: err}
	}

	b.logger.Info("backend CLI installed", "tool", tool)
	return nil
}

// versionOutput runs "<tool> --version" and captures its combined output.
// aws v1 printed its version to stderr, so both streams are read.
func (b *base) versionOutput(ctx context.Context, tool string) ([]byte, error) {
	if b.runVersion != nil {
		return b.runVersion(ctx, tool)
	}

	// #nosec G204 -- tool names come from the closed backend set
	return exec.CommandContext(ctx, tool, "--version").CombinedOutput()
}

// setIfPresent adds key=value only when the value is non-empty, letting
// the tool's own defaults and ambient environment apply otherwise.
func setIfPresent(env map[string]string, key, value string) {
	if value != "" {
		env[key] = value
	}
}
