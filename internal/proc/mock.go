package proc

import (
	"context"

	"github.com/coreforge/enginesync/internal/domain"
)

// MockRunner is a mock implementation of domain.CommandRunner for testing.
type MockRunner struct {
	// StreamFunc allows customizing Stream behavior. When nil, Stream
	// emits Output to the sink and returns nil.
	StreamFunc func(ctx context.Context, spec domain.CommandSpec, sink domain.LineSink) error

	// Output is emitted line by line on each Stream call when StreamFunc
	// is nil.
	Output []string

	// Specs records every spec passed to Stream, in call order.
	Specs []domain.CommandSpec
}

// Stream records the spec and delegates to StreamFunc if set.
func (m *MockRunner) Stream(ctx context.Context, spec domain.CommandSpec, sink domain.LineSink) error {
	m.Specs = append(m.Specs, spec)

	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, spec, sink)
	}

	for _, line := range m.Output {
		sink.Line(line)
	}
	return nil
}

// Reset clears recorded calls.
func (m *MockRunner) Reset() {
	m.Specs = nil
}

var _ domain.CommandRunner = (*MockRunner)(nil)
