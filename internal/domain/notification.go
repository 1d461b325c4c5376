package domain

import "context"

// NotificationLevel represents the severity of a notification.
type NotificationLevel string

const (
	// NotificationLevelInfo is for informational messages, such as a
	// completed engine update.
	NotificationLevelInfo NotificationLevel = "info"
	// NotificationLevelError is for failed runs.
	NotificationLevelError NotificationLevel = "error"
)

// Notification represents a notification to be sent.
type Notification struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Level NotificationLevel `json:"level"`
}

// InfoNotification creates an info-level notification.
func InfoNotification(title, body string) *Notification {
	return &Notification{Title: title, Body: body, Level: NotificationLevelInfo}
}

// ErrorNotification creates an error-level notification.
func ErrorNotification(title, body string) *Notification {
	return &Notification{Title: title, Body: body, Level: NotificationLevelError}
}

// Notifier defines the interface for sending notifications.
type Notifier interface {
	// Notify sends a notification.
	Notify(ctx context.Context, notification *Notification) error

	// Validate checks if the notifier is properly configured.
	Validate(ctx context.Context) error
}

// NopNotifier is a no-op notifier that does nothing.
type NopNotifier struct{}

// Notify does nothing.
func (n *NopNotifier) Notify(_ context.Context, _ *Notification) error {
	return nil
}

// Validate always returns nil.
func (n *NopNotifier) Validate(_ context.Context) error {
	return nil
}
