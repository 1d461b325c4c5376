package domain

import "strings"

// Backend identifies one of the supported transfer CLIs. The set is
// closed: every switch over Backend handles exactly these values plus
// an explicit default for unrecognized input.
type Backend string

const (
	// BackendAWS is the S3-compatible "aws" CLI.
	BackendAWS Backend = "aws"
	// BackendRclone is the general-purpose "rclone" CLI.
	BackendRclone Backend = "rclone"
)

// String returns the backend name.
func (b Backend) String() string {
	return string(b)
}

// Tool returns the executable name of the backend CLI.
func (b Backend) Tool() string {
	return string(b)
}

// ParseBackend maps a configured client name onto the supported set.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseBackend(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "aws":
		return BackendAWS, nil
	case "rclone":
		return BackendRclone, nil
	default:
		return "", &UnknownBackendError{Name: name}
	}
}

// Direction selects which side of the mirror is authoritative.
type Direction string

const (
	// DirectionUpload mirrors the local tree into the bucket.
	DirectionUpload Direction = "upload"
	// DirectionDownload mirrors the bucket into the local tree.
	DirectionDownload Direction = "download"
)

// String returns the direction name.
func (d Direction) String() string {
	return string(d)
}
