package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBackend(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Backend
	}{
		{name: "aws", input: "aws", want: BackendAWS},
		{name: "rclone", input: "rclone", want: BackendRclone},
		{name: "mixed case", input: "AWS", want: BackendAWS},
		{name: "surrounding whitespace", input: "  rclone\n", want: BackendRclone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBackend(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBackendUnknown(t *testing.T) {
	for _, input := range []string{"", "gsutil", "s3cmd", "aws2"} {
		t.Run("input "+input, func(t *testing.T) {
			_, err := ParseBackend(input)
			require.Error(t, err)

			var ube *UnknownBackendError
			require.True(t, errors.As(err, &ube))
			assert.Equal(t, input, ube.Name)
		})
	}
}

func TestCommandSpecString(t *testing.T) {
	spec := CommandSpec{
		Path: "aws",
		Args: []string{"s3", "sync", "/opt/engine", "s3://builds"},
		Env:  map[string]string{"AWS_ACCESS_KEY_ID": "secret"},
	}

	s := spec.String()
	assert.Equal(t, "aws s3 sync /opt/engine s3://builds", s)
	assert.NotContains(t, s, "secret")
}

func TestTransferResultComplete(t *testing.T) {
	r := NewTransferResult(OperationMirror)
	r.Complete(nil)

	assert.True(t, r.Success)
	assert.Empty(t, r.Error)
	assert.False(t, r.EndTime.Before(r.StartTime))
}

func TestRunResultComplete(t *testing.T) {
	r := NewRunResult(BackendRclone, DirectionDownload)
	r.AddTransfer(nil)
	require.Empty(t, r.Transfers)

	mirror := NewTransferResult(OperationMirror)
	mirror.Complete(errors.New("rclone exited with code 3"))
	r.AddTransfer(mirror)
	r.Complete(errors.New("rclone exited with code 3"))

	assert.False(t, r.Success)
	assert.Len(t, r.Transfers, 1)
	assert.Equal(t, "rclone exited with code 3", r.Error)
}
