package domain

import (
	"context"
	"time"
)

// Metrics contains the snapshot pushed after a sync run.
type Metrics struct {
	// Timestamp when metrics were collected.
	Timestamp time.Time

	// Hostname of the machine.
	Hostname string

	// Version information for the tool itself.
	Version   string
	GoVersion string

	// Run is the result of the last sync run.
	Run *RunResult
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(hostname string) *Metrics {
	return &Metrics{
		Timestamp: time.Now(),
		Hostname:  hostname,
	}
}

// MetricsPusher defines the interface for pushing metrics to a remote endpoint.
type MetricsPusher interface {
	// Push sends metrics to the remote endpoint.
	Push(ctx context.Context, metrics *Metrics) error

	// Validate checks if the pusher is properly configured.
	Validate(ctx context.Context) error
}
