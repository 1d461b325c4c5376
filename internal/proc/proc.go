// Package proc runs external commands and streams their output.
package proc

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/coreforge/enginesync/internal/domain"
)

// Runner executes commands described by a CommandSpec, forwarding each
// stdout line to a sink as the subprocess produces it. Commands run one
// at a time; the environment overlay is applied to the child process
// only, never to the parent.
type Runner struct {
	logger *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a new Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

var _ domain.CommandRunner = (*Runner)(nil)

// Stream runs the command and forwards stdout to sink line by line, in
// order. Stderr is buffered and surfaced through CommandError when the
// command exits non-zero. A cancelled context is reported as the context
// error, not as a command failure.
func (r *Runner) Stream(ctx context.Context, spec domain.CommandSpec, sink domain.LineSink) error {
	r.logger.Debug("executing command", "path", spec.Path, "args", spec.Args)

	// #nosec G204 -- command path and args come from the backend adapters,
	// not user input
	cmd := exec.CommandContext(ctx, spec.Path, spec.Args...)

	// Start with current environment and add/override with the overlay
	if len(spec.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range spec.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to attach stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", spec.Path, err)
	}

	// Long transfer listings can produce very wide lines.
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		sink.Line(scanner.Text())
	}
	scanErr := scanner.Err()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &domain.CommandError{
				Tool:     toolName(spec.Path),
				ExitCode: exitErr.ExitCode(),
				Stderr:   strings.TrimSpace(stderr.String()),
			}
		}
		return fmt.Errorf("%s failed: %w", spec.Path, err)
	}

	if scanErr != nil {
		return fmt.Errorf("failed to read %s output: %w", spec.Path, scanErr)
	}

	return nil
}

// toolName reduces a command path to the bare tool name for error
// reporting.
func toolName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, ".exe")
}
