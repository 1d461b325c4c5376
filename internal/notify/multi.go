package notify

import (
	"context"
	"errors"

	"github.com/coreforge/enginesync/internal/domain"
)

// MultiNotifier fans a notification out to several notifiers.
type MultiNotifier struct {
	notifiers []domain.Notifier
}

// NewMultiNotifier creates a notifier that forwards to all given
// notifiers.
func NewMultiNotifier(notifiers ...domain.Notifier) *MultiNotifier {
	return &MultiNotifier{
		notifiers: notifiers,
	}
}

// Notify sends the notification to every notifier, attempting all of
// them before reporting any failure.
func (m *MultiNotifier) Notify(ctx context.Context, notification *domain.Notification) error {
	var errs []error

	for _, n := range m.notifiers {
		if err := n.Notify(ctx, notification); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate validates every notifier.
func (m *MultiNotifier) Validate(ctx context.Context) error {
	var errs []error

	for _, n := range m.notifiers {
		if err := n.Validate(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Ensure MultiNotifier implements domain.Notifier.
var _ domain.Notifier = (*MultiNotifier)(nil)
