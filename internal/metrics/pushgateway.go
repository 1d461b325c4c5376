// Package metrics provides implementations for pushing metrics to remote endpoints.
package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/coreforge/enginesync/internal/domain"
	"github.com/coreforge/enginesync/internal/http"
)

const (
	metricsJobName = "enginesync"
	contentType    = "text/plain; charset=utf-8"
)

// PushgatewayClient pushes metrics to a Prometheus Pushgateway.
type PushgatewayClient struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// PushgatewayOption configures a PushgatewayClient.
type PushgatewayOption func(*PushgatewayClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) PushgatewayOption {
	return func(p *PushgatewayClient) {
		p.httpClient = client
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) PushgatewayOption {
	return func(p *PushgatewayClient) {
		p.logger = logger
	}
}

// NewPushgatewayClient creates a new PushgatewayClient.
func NewPushgatewayClient(url string, opts ...PushgatewayOption) *PushgatewayClient {
	p := &PushgatewayClient{
		url:        strings.TrimSuffix(url, "/"),
		httpClient: http.NewClient(),
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Push sends metrics to the Pushgateway. The grouping key is the
// hostname, and PUT replaces the previous run's series for it.
func (p *PushgatewayClient) Push(ctx context.Context, metrics *domain.Metrics) error {
	body := p.buildMetrics(metrics)

	pushURL := fmt.Sprintf("%s/metrics/job/%s/instance/%s", p.url, metricsJobName, metrics.Hostname)

	p.logger.Debug("pushing metrics to pushgateway", "url", pushURL)

	resp, err := p.httpClient.Put(ctx, pushURL, contentType, []byte(body))
	if err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("pushgateway returned status %d: %s", resp.StatusCode, string(resp.Body))
	}

	p.logger.Debug("metrics pushed successfully")
	return nil
}

// Validate checks if the Pushgateway is reachable.
func (p *PushgatewayClient) Validate(ctx context.Context) error {
	// Pushgateway typically has a /-/ready endpoint
	readyURL := fmt.Sprintf("%s/-/ready", p.url)

	if err := p.httpClient.CheckConnectivity(ctx, readyURL); err != nil {
		// Try the root URL as fallback
		if err2 := p.httpClient.CheckConnectivity(ctx, p.url); err2 != nil {
			return fmt.Errorf("pushgateway not reachable at %s: %w", p.url, err)
		}
	}

	return nil
}

// buildMetrics constructs the Prometheus text format metrics.
func (p *PushgatewayClient) buildMetrics(m *domain.Metrics) string {
	var b strings.Builder

	b.WriteString("# HELP enginesync_info Build information\n")
	b.WriteString("# TYPE enginesync_info gauge\n")
	b.WriteString(fmt.Sprintf("enginesync_info{version=%q,go_version=%q} 1\n",
		m.Version, m.GoVersion))
	b.WriteString("\n")

	if m.Run == nil {
		return b.String()
	}

	run := m.Run
	backend := run.Backend.String()
	direction := run.Direction.String()

	success := 0
	if run.Success {
		success = 1
	}
	skipped := 0
	if run.Skipped {
		skipped = 1
	}

	b.WriteString("# HELP enginesync_last_run_timestamp_seconds Unix timestamp of last run\n")
	b.WriteString("# TYPE enginesync_last_run_timestamp_seconds gauge\n")
	b.WriteString("# HELP enginesync_last_run_success Whether the last run succeeded\n")
	b.WriteString("# TYPE enginesync_last_run_success gauge\n")
	b.WriteString("# HELP enginesync_last_run_skipped Whether the version gate skipped the last run\n")
	b.WriteString("# TYPE enginesync_last_run_skipped gauge\n")
	b.WriteString("# HELP enginesync_last_run_duration_seconds Duration of last run\n")
	b.WriteString("# TYPE enginesync_last_run_duration_seconds gauge\n")
	b.WriteString("# HELP enginesync_engine_version_local Local engine version marker\n")
	b.WriteString("# TYPE enginesync_engine_version_local gauge\n")
	b.WriteString("# HELP enginesync_engine_version_remote Remote engine version marker\n")
	b.WriteString("# TYPE enginesync_engine_version_remote gauge\n")
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("enginesync_last_run_timestamp_seconds{backend=%q,direction=%q} %d\n", backend, direction, run.EndTime.Unix()))
	b.WriteString(fmt.Sprintf("enginesync_last_run_success{backend=%q,direction=%q} %d\n", backend, direction, success))
	b.WriteString(fmt.Sprintf("enginesync_last_run_skipped{backend=%q,direction=%q} %d\n", backend, direction, skipped))
	b.WriteString(fmt.Sprintf("enginesync_last_run_duration_seconds{backend=%q,direction=%q} %.3f\n", backend, direction, run.Duration.Seconds()))
	b.WriteString(fmt.Sprintf("enginesync_engine_version_local{backend=%q} %d\n", backend, run.LocalVersion))
	b.WriteString(fmt.Sprintf("enginesync_engine_version_remote{backend=%q} %d\n", backend, run.RemoteVersion))

	if len(run.Transfers) > 0 {
		b.WriteString("\n")
		b.WriteString("# HELP enginesync_transfer_success Whether the transfer step succeeded\n")
		b.WriteString("# TYPE enginesync_transfer_success gauge\n")
		b.WriteString("# HELP enginesync_transfer_duration_seconds Duration of the transfer step\n")
		b.WriteString("# TYPE enginesync_transfer_duration_seconds gauge\n")
		b.WriteString("\n")

		for _, t := range run.Transfers {
			p.writeTransferMetrics(&b, t)
		}
	}

	return b.String()
}

// writeTransferMetrics writes metric values for a single transfer step.
func (p *PushgatewayClient) writeTransferMetrics(b *strings.Builder, t *domain.TransferResult) {
	op := t.Operation.String()

	success := 0
	if t.Success {
		success = 1
	}

	b.WriteString(fmt.Sprintf("enginesync_transfer_success{operation=%q} %d\n", op, success))
	b.WriteString(fmt.Sprintf("enginesync_transfer_duration_seconds{operation=%q} %.3f\n", op, t.Duration.Seconds()))
}

// Ensure PushgatewayClient implements domain.MetricsPusher.
var _ domain.MetricsPusher = (*PushgatewayClient)(nil)
