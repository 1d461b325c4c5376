package proc

import (
	"context"
	"errors"
	"os"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreforge/enginesync/internal/domain"
)

// recordingSink collects lines for assertions.
type recordingSink struct {
	lines []string
}

func (s *recordingSink) Line(text string) {
	s.lines = append(s.lines, text)
}

func requireUnixShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test shells out to sh")
	}
}

func TestRunner_Stream_LinesInOrder(t *testing.T) {
	requireUnixShell(t)

	runner := NewRunner()
	sink := &recordingSink{}

	spec := domain.CommandSpec{
		Path: "sh",
		Args: []string{"-c", `printf 'first\nsecond\nthird\n'`},
	}

	err := runner.Stream(context.Background(), spec, sink)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, sink.lines)
}

func TestRunner_Stream_EnvOverlay(t *testing.T) {
	requireUnixShell(t)

	runner := NewRunner()
	sink := &recordingSink{}

	spec := domain.CommandSpec{
		Path: "sh",
		Args: []string{"-c", `echo "$ENGINESYNC_TEST_OVERLAY"`},
		Env:  map[string]string{"ENGINESYNC_TEST_OVERLAY": "applied"},
	}

	err := runner.Stream(context.Background(), spec, sink)
	require.NoError(t, err)
	require.Len(t, sink.lines, 1)
	assert.Equal(t, "applied", sink.lines[0])

	// The overlay belongs to the subprocess only.
	_, present := os.LookupEnv("ENGINESYNC_TEST_OVERLAY")
	assert.False(t, present)
}

func TestRunner_Stream_NonZeroExit(t *testing.T) {
	requireUnixShell(t)

	runner := NewRunner()
	sink := &recordingSink{}

	spec := domain.CommandSpec{
		Path: "sh",
		Args: []string{"-c", `echo progress; echo "bucket not found" >&2; exit 3`},
	}

	err := runner.Stream(context.Background(), spec, sink)
	require.Error(t, err)

	var cmdErr *domain.CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, "sh", cmdErr.Tool)
	assert.Equal(t, 3, cmdErr.ExitCode)
	assert.Equal(t, "bucket not found", cmdErr.Stderr)

	// Output produced before the failure still reached the sink.
	assert.Equal(t, []string{"progress"}, sink.lines)
}

func TestRunner_Stream_MissingBinary(t *testing.T) {
	runner := NewRunner()
	sink := &recordingSink{}

	spec := domain.CommandSpec{
		Path: "enginesync-test-no-such-tool",
	}

	err := runner.Stream(context.Background(), spec, sink)
	require.Error(t, err)

	var cmdErr *domain.CommandError
	assert.False(t, errors.As(err, &cmdErr), "a missing binary is a start failure, not an exit code")
}

func TestRunner_Stream_ContextCancelled(t *testing.T) {
	requireUnixShell(t)

	runner := NewRunner()
	sink := &recordingSink{}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	spec := domain.CommandSpec{
		Path: "sh",
		Args: []string{"-c", "sleep 10"},
	}

	err := runner.Stream(ctx, spec, sink)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestToolName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "aws", want: "aws"},
		{path: "/usr/local/bin/rclone", want: "rclone"},
		{path: "aws.exe", want: "aws"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, toolName(tt.path))
		})
	}
}

func TestMockRunner_RecordsSpecs(t *testing.T) {
	mock := &MockRunner{Output: []string{"line"}}
	sink := &recordingSink{}

	spec := domain.CommandSpec{Path: "aws", Args: []string{"s3", "sync"}}
	require.NoError(t, mock.Stream(context.Background(), spec, sink))

	require.Len(t, mock.Specs, 1)
	assert.Equal(t, spec.Path, mock.Specs[0].Path)
	assert.Equal(t, []string{"line"}, sink.lines)

	mock.Reset()
	assert.Empty(t, mock.Specs)
}
