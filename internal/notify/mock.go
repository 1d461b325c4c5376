package notify

import (
	"context"

	"github.com/coreforge/enginesync/internal/domain"
)

// MockNotifier records notifications for testing.
type MockNotifier struct {
	// NotifyFunc overrides the result of Notify. The notification is
	// recorded either way.
	NotifyFunc func(ctx context.Context, notification *domain.Notification) error

	// ValidateFunc overrides the result of Validate.
	ValidateFunc func(ctx context.Context) error

	// Notifications holds every notification passed to Notify, in order.
	Notifications []*domain.Notification
}

// Notify records the notification and delegates to NotifyFunc if set.
func (m *MockNotifier) Notify(ctx context.Context, notification *domain.Notification) error {
	m.Notifications = append(m.Notifications, notification)

	if m.NotifyFunc != nil {
		return m.NotifyFunc(ctx, notification)
	}
	return nil
}

// Validate delegates to ValidateFunc if set.
func (m *MockNotifier) Validate(ctx context.Context) error {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx)
	}
	return nil
}

var _ domain.Notifier = (*MockNotifier)(nil)
