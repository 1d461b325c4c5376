package adapter

import (
	"context"
	"fmt"
	"strings"

	goversion "github.com/hashicorp/go-version"

	"github.com/coreforge/enginesync/internal/config"
	"github.com/coreforge/enginesync/internal/domain"
)

const awsTool = "aws"

// minAWSVersion is the oldest aws CLI release with AWS_ENDPOINT_URL
// support usable against S3-compatible providers.
var minAWSVersion = goversion.Must(goversion.NewVersion("2.0.0"))

// AWSCLI drives the aws CLI against an S3-compatible endpoint.
type AWSCLI struct {
	base
}

// NewAWSCLI creates an adapter for the aws CLI.
func NewAWSCLI(cfg *config.Config, opts ...Option) *AWSCLI {
	return &AWSCLI{base: newBase(cfg, opts...)}
}

var _ domain.Adapter = (*AWSCLI)(nil)

// Name returns the backend identifier.
func (a *AWSCLI) Name() domain.Backend {
	return domain.BackendAWS
}

// EnsureAvailable verifies the aws CLI resolves on PATH, installing it
// when missing.
func (a *AWSCLI) EnsureAvailable(ctx context.Context, sink domain.LineSink) error {
	return a.ensureTool(ctx, awsTool, sink)
}

// Environment returns the credential and endpoint variables the aws CLI
// reads. Only configured values are set.
func (a *AWSCLI) Environment() map[string]string {
	env := make(map[string]string)
	setIfPresent(env, "AWS_ACCESS_KEY_ID", a.cfg.AccessKey)
	setIfPresent(env, "AWS_SECRET_ACCESS_KEY", a.cfg.SecretKey)
	setIfPresent(env, "AWS_DEFAULT_REGION", a.cfg.Region)
	setIfPresent(env, "AWS_ENDPOINT_URL", a.cfg.EndpointURL)
	return env
}

// SyncCommand builds the mirror invocation. Upload compares files by
// size only; the rclone backend compares checksums instead.
func (a *AWSCLI) SyncCommand(direction domain.Direction, localPath string) domain.CommandSpec {
	bucket := "s3://" + a.cfg.BucketName

	var args []string
	switch direction {
	case domain.DirectionUpload:
		args = []string{"s3", "sync", localPath, bucket, "--size-only"}
		if a.cfg.ACL != "" {
			args = append(args, "--acl", a.cfg.ACL)
		}
	default:
		args = []string{"s3", "sync", bucket, localPath}
	}

	return domain.CommandSpec{
		Path: awsTool,
		Args: args,
		Env:  a.Environment(),
	}
}

// VersionCopyCommand builds the copy of the version marker into the
// version bucket.
func (a *AWSCLI) VersionCopyCommand(markerPath string) domain.CommandSpec {
	dest := "s3://" + a.cfg.VersionBucketName + "/" + a.cfg.VersionFile

	args := []string{"s3", "cp", markerPath, dest}
	if a.cfg.ACL != "" {
		args = append(args, "--acl", a.cfg.ACL)
	}

	return domain.CommandSpec{
		Path: awsTool,
		Args: args,
		Env:  a.Environment(),
	}
}

// Validate checks the aws CLI is present and at a supported version.
func (a *AWSCLI) Validate(ctx context.Context) error {
	if _, err := a.lookPath(awsTool); err != nil {
		return fmt.Errorf("aws CLI not found in PATH: %w", err)
	}

	out, err := a.versionOutput(ctx, awsTool)
	if err != nil {
		return fmt.Errorf("aws CLI failed to execute: %w", err)
	}

	v, err := parseAWSVersion(out)
	if err != nil {
		return err
	}

	if v.LessThan(minAWSVersion) {
		return fmt.Errorf("aws CLI %s is older than the minimum supported %s", v, minAWSVersion)
	}

	return nil
}

// parseAWSVersion extracts the CLI version from "--version" output of
// the form "aws-cli/2.15.30 Python/3.11.8 ...".
func parseAWSVersion(out []byte) (*goversion.Version, error) {
	fields := strings.Fields(string(out))
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty aws --version output")
	}

	parts := strings.SplitN(fields[0], "/", 2)
	if len(parts) != 2 || parts[0] != "aws-cli" {
		return nil, fmt.Errorf("unexpected aws --version output: %q", fields[0])
	}

	v, err := goversion.NewVersion(parts[1])
	if err != nil {
		return nil, fmt.Errorf("failed to parse aws CLI version %q: %w", parts[1], err)
	}

	return v, nil
}
