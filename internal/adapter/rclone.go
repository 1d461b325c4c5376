package adapter

import (
	"context"
	"fmt"
	"strings"

	goversion "github.com/hashicorp/go-version"

	"github.com/coreforge/enginesync/internal/config"
	"github.com/coreforge/enginesync/internal/domain"
)

const (
	rcloneTool = "rclone"

	// rcloneRemote is the name of the remote defined entirely through
	// environment variables; no rclone.conf is ever written.
	rcloneRemote = "engine"

	rcloneEnvPrefix = "RCLONE_CONFIG_ENGINE_"
)

// minRcloneVersion is the oldest rclone release with
// --use-server-modtime behaving as the download flow expects.
var minRcloneVersion = goversion.Must(goversion.NewVersion("1.50.0"))

// Rclone drives the rclone CLI with an environment-defined S3 remote.
type Rclone struct {
	base
}

// NewRclone creates an adapter for the rclone CLI.
func NewRclone(cfg *config.Config, opts ...Option) *Rclone {
	return &Rclone{base: newBase(cfg, opts...)}
}

var _ domain.Adapter = (*Rclone)(nil)

// Name returns the backend identifier.
func (r *Rclone) Name() domain.Backend {
	return domain.BackendRclone
}

// EnsureAvailable verifies the rclone CLI resolves on PATH, installing
// it when missing.
func (r *Rclone) EnsureAvailable(ctx context.Context, sink domain.LineSink) error {
	return r.ensureTool(ctx, rcloneTool, sink)
}

// Environment defines the "engine" remote through RCLONE_CONFIG_*
// variables. The remote type is always s3; other settings are only set
// when configured.
func (r *Rclone) Environment() map[string]string {
	env := map[string]string{
		rcloneEnvPrefix + "TYPE": "s3",
	}
	setIfPresent(env, rcloneEnvPrefix+"PROVIDER", r.cfg.Provider)
	setIfPresent(env, rcloneEnvPrefix+"ACCESS_KEY_ID", r.cfg.AccessKey)
	setIfPresent(env, rcloneEnvPrefix+"SECRET_ACCESS_KEY", r.cfg.SecretKey)
	setIfPresent(env, rcloneEnvPrefix+"ENDPOINT", r.cfg.EndpointURL)
	setIfPresent(env, rcloneEnvPrefix+"REGION", r.cfg.Region)
	setIfPresent(env, rcloneEnvPrefix+"ACL", r.cfg.ACL)
	return env
}

// SyncCommand builds the mirror invocation. Upload verifies checksums;
// download trusts server modification times and transfers with more
// parallelism, since pulling a published build is the common case.
func (r *Rclone) SyncCommand(direction domain.Direction, localPath string) domain.CommandSpec {
	remote := rcloneRemote + ":" + r.cfg.BucketName

	var args []string
	switch direction {
	case domain.DirectionUpload:
		args = []string{
			"sync", localPath, remote,
			"--checksum",
			"--checkers", "16",
			"--transfers", "16",
			"-v",
		}
	default:
		args = []string{
			"sync", remote, localPath,
			"--update",
			"--use-server-modtime",
			"--checkers", "32",
			"--transfers", "32",
			"-v",
		}
	}

	return domain.CommandSpec{
		Path: rcloneTool,
		Args: args,
		Env:  r.Environment(),
	}
}

// VersionCopyCommand builds the copy of the version marker into the
// version bucket.
func (r *Rclone) VersionCopyCommand(markerPath string) domain.CommandSpec {
	dest := rcloneRemote + ":" + r.cfg.VersionBucketName + "/" + r.cfg.VersionFile

	return domain.CommandSpec{
		Path: rcloneTool,
		Args: []string{"copyto", markerPath, dest},
		Env:  r.Environment(),
	}
}

// Validate checks the rclone CLI is present and at a supported version.
func (r *Rclone) Validate(ctx context.Context) error {
	if _, err := r.lookPath(rcloneTool); err != nil {
		return fmt.Errorf("rclone not found in PATH: %w", err)
	}

	out, err := r.versionOutput(ctx, rcloneTool)
	if err != nil {
		return fmt.Errorf("rclone failed to execute: %w", err)
	}

	v, err := parseRcloneVersion(out)
	if err != nil {
		return err
	}

	if v.LessThan(minRcloneVersion) {
		return fmt.Errorf("rclone %s is older than the minimum supported %s", v, minRcloneVersion)
	}

	return nil
}

// parseRcloneVersion extracts the version from "--version" output of the
// form "rclone v1.66.0\n- os/version: ...".
func parseRcloneVersion(out []byte) (*goversion.Version, error) {
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")

	fields := strings.Fields(line)
	if len(fields) < 2 || fields[0] != "rclone" {
		return nil, fmt.Errorf("unexpected rclone --version output: %q", line)
	}

	v, err := goversion.NewVersion(strings.TrimPrefix(fields[1], "v"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rclone version %q: %w", fields[1], err)
	}

	return v, nil
}
