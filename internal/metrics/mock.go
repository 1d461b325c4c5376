package metrics

import (
	"context"

	"github.com/coreforge/enginesync/internal/domain"
)

// MockPusher records pushed metrics for testing.
type MockPusher struct {
	// PushFunc overrides the result of Push. The snapshot is recorded
	// either way.
	PushFunc func(ctx context.Context, metrics *domain.Metrics) error

	// ValidateFunc overrides the result of Validate.
	ValidateFunc func(ctx context.Context) error

	// PushedMetrics holds every snapshot passed to Push, in order.
	PushedMetrics []*domain.Metrics
}

// Push records the metrics and delegates to PushFunc if set.
func (m *MockPusher) Push(ctx context.Context, metrics *domain.Metrics) error {
	m.PushedMetrics = append(m.PushedMetrics, metrics)

	if m.PushFunc != nil {
		return m.PushFunc(ctx, metrics)
	}
	return nil
}

// Validate delegates to ValidateFunc if set.
func (m *MockPusher) Validate(ctx context.Context) error {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx)
	}
	return nil
}

var _ domain.MetricsPusher = (*MockPusher)(nil)
