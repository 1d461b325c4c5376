// Package domain defines core business types and interfaces.
package domain

import "time"

// OperationType represents one step of a sync run that shells out to an
// external tool.
type OperationType string

const (
	// OperationMirror is the one-way tree mirror between the local path
	// and the bucket.
	OperationMirror OperationType = "mirror"
	// OperationVersionCopy is the copy of the version marker into the
	// version bucket.
	OperationVersionCopy OperationType = "version_copy"
	// OperationPrerequisites is the engine prerequisite installer run
	// after a download.
	OperationPrerequisites OperationType = "prerequisites"
)

// String returns the string representation of the operation type.
func (o OperationType) String() string {
	return string(o)
}

// TransferResult contains the outcome of one external command invocation.
type TransferResult struct {
	Operation OperationType `json:"operation"`
	Success   bool          `json:"success"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
}

// NewTransferResult creates a TransferResult for the given operation.
func NewTransferResult(op OperationType) *TransferResult {
	return &TransferResult{
		Operation: op,
		StartTime: time.Now(),
	}
}

// Complete marks the transfer as finished.
func (r *TransferResult) Complete(err error) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Success = err == nil
	if err != nil {
		r.Error = err.Error()
	}
}

// RunResult contains the results of a complete sync run.
type RunResult struct {
	Backend       Backend           `json:"backend"`
	Direction     Direction         `json:"direction"`
	StartTime     time.Time         `json:"start_time"`
	EndTime       time.Time         `json:"end_time"`
	Duration      time.Duration     `json:"duration"`
	Success       bool              `json:"success"`
	Skipped       bool              `json:"skipped"`
	LocalVersion  int               `json:"local_version"`
	RemoteVersion int               `json:"remote_version"`
	Transfers     []*TransferResult `json:"transfers,omitempty"`
	Error         string            `json:"error,omitempty"`
}

// NewRunResult creates a RunResult for a run against the given backend.
func NewRunResult(backend Backend, direction Direction) *RunResult {
	return &RunResult{
		Backend:   backend,
		Direction: direction,
		StartTime: time.Now(),
		Transfers: make([]*TransferResult, 0),
	}
}

// AddTransfer records the result of one command invocation.
func (r *RunResult) AddTransfer(t *TransferResult) {
	if t != nil {
		r.Transfers = append(r.Transfers, t)
	}
}

// Complete marks the run as finished. A run short-circuited by the
// version gate completes successfully with Skipped set.
func (r *RunResult) Complete(err error) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Success = err == nil
	if err != nil {
		r.Error = err.Error()
	}
}
