package domain

import (
	"context"
	"strings"
)

// CommandSpec describes a single backend CLI invocation: the executable,
// its argument list, and the environment overlay for the subprocess. The
// overlay is applied on top of the inherited environment of the child
// process only; the parent process environment is never modified.
type CommandSpec struct {
	Path string
	Args []string
	Env  map[string]string
}

// String renders the invocation for logging, without the environment.
func (s CommandSpec) String() string {
	if len(s.Args) == 0 {
		return s.Path
	}
	return s.Path + " " + strings.Join(s.Args, " ")
}

// LineSink receives subprocess output one line at a time, in order.
type LineSink interface {
	Line(text string)
}

// Reporter presents progress lines to the operator.
type Reporter interface {
	LineSink

	// Close releases the display surface. It is safe to call more than
	// once; later calls are no-ops.
	Close() error
}

// CommandRunner executes a CommandSpec and streams its stdout to a sink.
type CommandRunner interface {
	Stream(ctx context.Context, spec CommandSpec, sink LineSink) error
}
