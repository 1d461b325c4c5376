package ui

import "github.com/coreforge/enginesync/internal/domain"

// MockReporter records progress lines for testing.
type MockReporter struct {
	Lines      []string
	CloseCalls int
	CloseErr   error
}

// Line records the line.
func (m *MockReporter) Line(text string) {
	m.Lines = append(m.Lines, text)
}

// Close records the call and returns CloseErr.
func (m *MockReporter) Close() error {
	m.CloseCalls++
	return m.CloseErr
}

// Ensure MockReporter implements domain.Reporter.
var _ domain.Reporter = (*MockReporter)(nil)
