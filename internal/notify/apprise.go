// Package notify delivers run outcome notifications through an Apprise
// server.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/coreforge/enginesync/internal/domain"
	"github.com/coreforge/enginesync/internal/http"
)

// Apprise rejects oversized bodies; long stderr dumps are trimmed to fit.
const maxBodyLength = 1000

// AppriseClient posts notifications to an Apprise API server. At most
// one notification is sent per sync run.
type AppriseClient struct {
	serverURL  string
	key        string
	httpClient *http.Client
	logger     *slog.Logger
}

// AppriseOption configures an AppriseClient.
type AppriseOption func(*AppriseClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) AppriseOption {
	return func(a *AppriseClient) {
		a.httpClient = client
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) AppriseOption {
	return func(a *AppriseClient) {
		a.logger = logger
	}
}

// NewAppriseClient creates a client for the Apprise server at serverURL,
// posting through the named configuration key.
func NewAppriseClient(serverURL, key string, opts ...AppriseOption) *AppriseClient {
	a := &AppriseClient{
		serverURL:  strings.TrimSuffix(serverURL, "/"),
		key:        key,
		httpClient: http.NewClient(),
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// appriseRequest is the JSON body of a notify call.
type appriseRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Type  string `json:"type,omitempty"`
}

// Notify posts the notification. The body is truncated to the Apprise
// size limit; the notification level selects the Apprise message type.
func (a *AppriseClient) Notify(ctx context.Context, notification *domain.Notification) error {
	payload, err := json.Marshal(appriseRequest{
		Title: notification.Title,
		Body:  truncate(notification.Body, maxBodyLength),
		Type:  appriseType(notification.Level),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	url := fmt.Sprintf("%s/notify/%s", a.serverURL, a.key)

	a.logger.Debug("sending notification",
		"url", url,
		"title", notification.Title,
		"level", notification.Level,
	)

	resp, err := a.httpClient.Post(ctx, url, "application/json", payload)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("apprise returned status %d: %s", resp.StatusCode, string(resp.Body))
	}

	return nil
}

// Validate checks that the Apprise server is reachable: the key's
// details endpoint first, then the server root.
func (a *AppriseClient) Validate(ctx context.Context) error {
	probes := []string{
		fmt.Sprintf("%s/details/%s", a.serverURL, a.key),
		a.serverURL,
	}

	var lastErr error
	for _, url := range probes {
		err := a.httpClient.CheckConnectivity(ctx, url)
		if err == nil {
			return nil
		}
		lastErr = err
	}

	return fmt.Errorf("apprise server not reachable at %s: %w", a.serverURL, lastErr)
}

// appriseType maps a notification level onto the Apprise message type.
// Failed runs render as "failure"; everything else is informational.
func appriseType(level domain.NotificationLevel) string {
	if level == domain.NotificationLevelError {
		return "failure"
	}
	return "info"
}

// truncate shortens s to at most n bytes, marking the cut with an
// ellipsis.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// Ensure AppriseClient implements domain.Notifier.
var _ domain.Notifier = (*AppriseClient)(nil)
