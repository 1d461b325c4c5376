package adapter

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreforge/enginesync/internal/config"
	"github.com/coreforge/enginesync/internal/domain"
)

// stubBootstrap is a test double for domain.Bootstrap.
type stubBootstrap struct {
	installFunc func(ctx context.Context, tool string, sink domain.LineSink) error

	installedTools []string
	refreshed      int
	prereqPaths    []string
}

func (s *stubBootstrap) InstallTool(ctx context.Context, tool string, sink domain.LineSink) error {
	s.installedTools = append(s.installedTools, tool)
	if s.installFunc != nil {
		return s.installFunc(ctx, tool, sink)
	}
	return nil
}

func (s *stubBootstrap) RefreshPath() error {
	s.refreshed++
	return nil
}

func (s *stubBootstrap) RunPrerequisites(_ context.Context, enginePath string, _ domain.LineSink) error {
	s.prereqPaths = append(s.prereqPaths, enginePath)
	return nil
}

// nopSink discards lines.
type nopSink struct{}

func (nopSink) Line(string) {}

func fullConfig() *config.Config {
	return &config.Config{
		AccessKey:         "AKIAEXAMPLE",
		SecretKey:         "secretsecret",
		EndpointURL:       "https://s3.example.com",
		Region:            "us-east-1",
		BucketName:        "engine-builds",
		VersionBucketName: "engine-meta",
		VersionFile:       "engine-version.txt",
		Provider:          "Minio",
		ACL:               "public-read",
	}
}

func TestNew_ClosedBackendSet(t *testing.T) {
	cfg := fullConfig()

	a, err := New(domain.BackendAWS, cfg)
	require.NoError(t, err)
	assert.Equal(t, domain.BackendAWS, a.Name())

	r, err := New(domain.BackendRclone, cfg)
	require.NoError(t, err)
	assert.Equal(t, domain.BackendRclone, r.Name())

	_, err = New(domain.Backend("gsutil"), cfg)
	var ube *domain.UnknownBackendError
	require.True(t, errors.As(err, &ube))
	assert.Equal(t, "gsutil", ube.Name)
}

func TestAWSCLI_SyncCommand(t *testing.T) {
	t.Run("upload", func(t *testing.T) {
		a := NewAWSCLI(fullConfig())
		spec := a.SyncCommand(domain.DirectionUpload, "/opt/engine")

		assert.Equal(t, "aws", spec.Path)
		assert.Equal(t, []string{
			"s3", "sync", "/opt/engine", "s3://engine-builds",
			"--size-only", "--acl", "public-read",
		}, spec.Args)
	})

	t.Run("upload without acl", func(t *testing.T) {
		cfg := fullConfig()
		cfg.ACL = ""
		a := NewAWSCLI(cfg)
		spec := a.SyncCommand(domain.DirectionUpload, "/opt/engine")

		assert.Equal(t, []string{
			"s3", "sync", "/opt/engine", "s3://engine-builds", "--size-only",
		}, spec.Args)
	})

	t.Run("download", func(t *testing.T) {
		a := NewAWSCLI(fullConfig())
		spec := a.SyncCommand(domain.DirectionDownload, "/opt/engine")

		assert.Equal(t, []string{
			"s3", "sync", "s3://engine-builds", "/opt/engine",
		}, spec.Args)
		assert.NotContains(t, spec.Args, "--acl")
	})
}

func TestAWSCLI_VersionCopyCommand(t *testing.T) {
	a := NewAWSCLI(fullConfig())
	spec := a.VersionCopyCommand("/opt/engine-version.txt")

	assert.Equal(t, "aws", spec.Path)
	assert.Equal(t, []string{
		"s3", "cp", "/opt/engine-version.txt",
		"s3://engine-meta/engine-version.txt",
		"--acl", "public-read",
	}, spec.Args)
}

func TestAWSCLI_Environment(t *testing.T) {
	t.Run("configured values", func(t *testing.T) {
		a := NewAWSCLI(fullConfig())

		assert.Equal(t, map[string]string{
			"AWS_ACCESS_KEY_ID":     "AKIAEXAMPLE",
			"AWS_SECRET_ACCESS_KEY": "secretsecret",
			"AWS_DEFAULT_REGION":    "us-east-1",
			"AWS_ENDPOINT_URL":      "https://s3.example.com",
		}, a.Environment())
	})

	t.Run("empty values are omitted", func(t *testing.T) {
		a := NewAWSCLI(&config.Config{AccessKey: "AKIAEXAMPLE"})

		env := a.Environment()
		assert.Equal(t, map[string]string{"AWS_ACCESS_KEY_ID": "AKIAEXAMPLE"}, env)
		assert.NotContains(t, env, "AWS_ENDPOINT_URL")
	})
}

func TestRclone_SyncCommand(t *testing.T) {
	t.Run("upload verifies checksums", func(t *testing.T) {
		r := NewRclone(fullConfig())
		spec := r.SyncCommand(domain.DirectionUpload, "/opt/engine")

		assert.Equal(t, "rclone", spec.Path)
		assert.Equal(t, []string{
			"sync", "/opt/engine", "engine:engine-builds",
			"--checksum",
			"--checkers", "16",
			"--transfers", "16",
			"-v",
		}, spec.Args)
	})

	t.Run("download trusts server modtime", func(t *testing.T) {
		r := NewRclone(fullConfig())
		spec := r.SyncCommand(domain.DirectionDownload, "/opt/engine")

		assert.Equal(t, []string{
			"sync", "engine:engine-builds", "/opt/engine",
			"--update",
			"--use-server-modtime",
			"--checkers", "32",
			"--transfers", "32",
			"-v",
		}, spec.Args)
	})
}

func TestRclone_VersionCopyCommand(t *testing.T) {
	r := NewRclone(fullConfig())
	spec := r.VersionCopyCommand("/opt/engine-version.txt")

	assert.Equal(t, "rclone", spec.Path)
	assert.Equal(t, []string{
		"copyto", "/opt/engine-version.txt", "engine:engine-meta/engine-version.txt",
	}, spec.Args)
}

func TestRclone_Environment(t *testing.T) {
	t.Run("configured values", func(t *testing.T) {
		r := NewRclone(fullConfig())

		assert.Equal(t, map[string]string{
			"RCLONE_CONFIG_ENGINE_TYPE":              "s3",
			"RCLONE_CONFIG_ENGINE_PROVIDER":          "Minio",
			"RCLONE_CONFIG_ENGINE_ACCESS_KEY_ID":     "AKIAEXAMPLE",
			"RCLONE_CONFIG_ENGINE_SECRET_ACCESS_KEY": "secretsecret",
			"RCLONE_CONFIG_ENGINE_ENDPOINT":          "https://s3.example.com",
			"RCLONE_CONFIG_ENGINE_REGION":            "us-east-1",
			"RCLONE_CONFIG_ENGINE_ACL":               "public-read",
		}, r.Environment())
	})

	t.Run("remote type is always defined", func(t *testing.T) {
		r := NewRclone(&config.Config{})

		assert.Equal(t, map[string]string{
			"RCLONE_CONFIG_ENGINE_TYPE": "s3",
		}, r.Environment())
	})
}

func TestEnsureAvailable_AlreadyOnPath(t *testing.T) {
	a := NewAWSCLI(fullConfig(), WithLookPath(func(string) (string, error) {
		return "/usr/bin/aws", nil
	}))

	err := a.EnsureAvailable(context.Background(), nopSink{})
	assert.NoError(t, err)
}

func TestEnsureAvailable_InstallsMissingTool(t *testing.T) {
	installed := false
	bootstrap := &stubBootstrap{
		installFunc: func(_ context.Context, _ string, _ domain.LineSink) error {
			installed = true
			return nil
		},
	}

	lookPath := func(string) (string, error) {
		if installed {
			return "/usr/bin/rclone", nil
		}
		return "", exec.ErrNotFound
	}

	r := NewRclone(fullConfig(), WithBootstrap(bootstrap), WithLookPath(lookPath))

	err := r.EnsureAvailable(context.Background(), nopSink{})
	require.NoError(t, err)
	assert.Equal(t, []string{"rclone"}, bootstrap.installedTools)
	assert.Equal(t, 1, bootstrap.refreshed, "PATH must be refreshed after an install")
}

func TestEnsureAvailable_InstallFails(t *testing.T) {
	bootstrap := &stubBootstrap{
		installFunc: func(_ context.Context, _ string, _ domain.LineSink) error {
			return fmt.Errorf("winget exited with code 1")
		},
	}

	a := NewAWSCLI(fullConfig(),
		WithBootstrap(bootstrap),
		WithLookPath(func(string) (string, error) { return "", exec.ErrNotFound }),
	)

	err := a.EnsureAvailable(context.Background(), nopSink{})
	var tie *domain.ToolInstallError
	require.True(t, errors.As(err, &tie))
	assert.Equal(t, "aws", tie.Tool)
}

func TestEnsureAvailable_NoBootstrap(t *testing.T) {
	a := NewAWSCLI(fullConfig(),
		WithLookPath(func(string) (string, error) { return "", exec.ErrNotFound }),
	)

	err := a.EnsureAvailable(context.Background(), nopSink{})
	var tie *domain.ToolInstallError
	require.True(t, errors.As(err, &tie))
}

func TestAWSCLI_Validate(t *testing.T) {
	okLookPath := func(string) (string, error) { return "/usr/bin/aws", nil }

	t.Run("supported version", func(t *testing.T) {
		a := NewAWSCLI(fullConfig(),
			WithLookPath(okLookPath),
			WithVersionCommand(func(context.Context, string) ([]byte, error) {
				return []byte("aws-cli/2.15.30 Python/3.11.8 Linux/6.1.0 exe/x86_64"), nil
			}),
		)
		assert.NoError(t, a.Validate(context.Background()))
	})

	t.Run("too old", func(t *testing.T) {
		a := NewAWSCLI(fullConfig(),
			WithLookPath(okLookPath),
			WithVersionCommand(func(context.Context, string) ([]byte, error) {
				return []byte("aws-cli/1.18.69 Python/3.8.10"), nil
			}),
		)
		assert.ErrorContains(t, a.Validate(context.Background()), "older than the minimum supported")
	})

	t.Run("not installed", func(t *testing.T) {
		a := NewAWSCLI(fullConfig(),
			WithLookPath(func(string) (string, error) { return "", exec.ErrNotFound }),
		)
		assert.ErrorContains(t, a.Validate(context.Background()), "not found in PATH")
	})
}

func TestRclone_Validate(t *testing.T) {
	okLookPath := func(string) (string, error) { return "/usr/bin/rclone", nil }

	t.Run("supported version", func(t *testing.T) {
		r := NewRclone(fullConfig(),
			WithLookPath(okLookPath),
			WithVersionCommand(func(context.Context, string) ([]byte, error) {
				return []byte("rclone v1.66.0\n- os/version: ubuntu 22.04\n"), nil
			}),
		)
		assert.NoError(t, r.Validate(context.Background()))
	})

	t.Run("too old", func(t *testing.T) {
		r := NewRclone(fullConfig(),
			WithLookPath(okLookPath),
			WithVersionCommand(func(context.Context, string) ([]byte, error) {
				return []byte("rclone v1.45.0"), nil
			}),
		)
		assert.ErrorContains(t, r.Validate(context.Background()), "older than the minimum supported")
	})
}

func TestParseAWSVersion(t *testing.T) {
	v, err := parseAWSVersion([]byte("aws-cli/2.15.30 Python/3.11.8 Linux/6.1.0"))
	require.NoError(t, err)
	assert.Equal(t, "2.15.30", v.String())

	_, err = parseAWSVersion([]byte(""))
	assert.Error(t, err)

	_, err = parseAWSVersion([]byte("zsh: command not found: aws"))
	assert.Error(t, err)
}

func TestParseRcloneVersion(t *testing.T) {
	v, err := parseRcloneVersion([]byte("rclone v1.66.0\n- os/version: ubuntu 22.04 (64 bit)\n- os/kernel: 6.1.0\n"))
	require.NoError(t, err)
	assert.Equal(t, "1.66.0", v.String())

	_, err = parseRcloneVersion([]byte("not rclone output"))
	assert.Error(t, err)
}
