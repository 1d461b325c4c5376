package ui

import (
	"errors"

	"github.com/coreforge/enginesync/internal/domain"
)

// Multi fans progress lines out to several reporters.
type Multi struct {
	reporters []domain.Reporter
}

// NewMulti creates a reporter that forwards to all given reporters.
func NewMulti(reporters ...domain.Reporter) *Multi {
	return &Multi{
		reporters: reporters,
	}
}

// Line forwards the line to every reporter.
func (m *Multi) Line(text string) {
	for _, r := range m.reporters {
		r.Line(text)
	}
}

// Close closes every reporter, attempting all of them.
func (m *Multi) Close() error {
	var errs []error

	for _, r := range m.reporters {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Ensure Multi implements domain.Reporter.
var _ domain.Reporter = (*Multi)(nil)
