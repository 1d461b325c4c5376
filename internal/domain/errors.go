package domain

import "fmt"

// UnknownBackendError reports a client name outside the supported set.
// Callers that hit it during dispatch log and continue; it aborts a run
// only when surfaced from explicit validation.
type UnknownBackendError struct {
	Name string
}

func (e *UnknownBackendError) Error() string {
	return fmt.Sprintf("unrecognized client %q (supported: aws, rclone)", e.Name)
}

// VersionFormatError reports a version marker whose content is not a
// plain base-10 integer.
type VersionFormatError struct {
	// Source is "remote" or the local marker path.
	Source string
	Raw    string
}

func (e *VersionFormatError) Error() string {
	return fmt.Sprintf("version marker from %s is not an integer: %q", e.Source, e.Raw)
}

// FetchError reports a failed retrieval of the published version marker.
type FetchError struct {
	URL string
	// Status is set when the server answered with a non-2xx code.
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ToolInstallError reports a backend CLI that is missing and could not
// be installed on this platform.
type ToolInstallError struct {
	Tool string
	Err  error
}

func (e *ToolInstallError) Error() string {
	return fmt.Sprintf("%s is not installed and could not be installed: %v", e.Tool, e.Err)
}

func (e *ToolInstallError) Unwrap() error {
	return e.Err
}

// CommandError reports a backend CLI invocation that exited non-zero.
// Stderr carries the tool's own diagnostics verbatim.
type CommandError struct {
	Tool     string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s exited with code %d", e.Tool, e.ExitCode)
	}
	return fmt.Sprintf("%s exited with code %d: %s", e.Tool, e.ExitCode, e.Stderr)
}
