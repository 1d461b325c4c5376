package domain

import "context"

// Adapter drives one backend CLI. It knows how to verify or install the
// tool, which environment the tool needs, and the exact command lines for
// each transfer operation.
// This abstraction allows for different implementations (aws, rclone, mock).
type Adapter interface {
	// Name returns the backend this adapter drives.
	Name() Backend

	// EnsureAvailable verifies the backend CLI resolves on PATH,
	// installing it through the platform bootstrap when missing.
	// Installer output is streamed to sink.
	EnsureAvailable(ctx context.Context, sink LineSink) error

	// Environment returns the variables the backend CLI needs
	// (credentials, endpoint, region, tuning). Empty config values are
	// omitted so the tool's own defaults apply.
	Environment() map[string]string

	// SyncCommand builds the one-way mirror invocation for the direction.
	SyncCommand(direction Direction, localPath string) CommandSpec

	// VersionCopyCommand builds the single-file copy of the local version
	// marker into the version bucket. Only the upload flow publishes the
	// marker.
	VersionCopyCommand(markerPath string) CommandSpec

	// Validate checks the backend CLI is present and at a supported
	// version.
	Validate(ctx context.Context) error
}
