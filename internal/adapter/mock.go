package adapter

import (
	"context"

	"github.com/coreforge/enginesync/internal/domain"
)

// MockAdapter is a mock implementation of domain.Adapter for testing.
type MockAdapter struct {
	NameValue           domain.Backend
	EnsureAvailableFunc func(ctx context.Context, sink domain.LineSink) error
	EnvironmentValue    map[string]string
	SyncCommandFunc     func(direction domain.Direction, localPath string) domain.CommandSpec
	VersionCopyFunc     func(markerPath string) domain.CommandSpec
	ValidateFunc        func(ctx context.Context) error

	// Recorded calls.
	EnsureCalls      int
	SyncDirections   []domain.Direction
	SyncPaths        []string
	VersionCopyPaths []string
}

// Name returns NameValue, defaulting to the aws backend.
func (m *MockAdapter) Name() domain.Backend {
	if m.NameValue == "" {
		return domain.BackendAWS
	}
	return m.NameValue
}

// EnsureAvailable records the call and delegates to EnsureAvailableFunc.
func (m *MockAdapter) EnsureAvailable(ctx context.Context, sink domain.LineSink) error {
	m.EnsureCalls++
	if m.EnsureAvailableFunc != nil {
		return m.EnsureAvailableFunc(ctx, sink)
	}
	return nil
}

// Environment returns EnvironmentValue.
func (m *MockAdapter) Environment() map[string]string {
	return m.EnvironmentValue
}

// SyncCommand records the call and delegates to SyncCommandFunc.
func (m *MockAdapter) SyncCommand(direction domain.Direction, localPath string) domain.CommandSpec {
	m.SyncDirections = append(m.SyncDirections, direction)
	m.SyncPaths = append(m.SyncPaths, localPath)
	if m.SyncCommandFunc != nil {
		return m.SyncCommandFunc(direction, localPath)
	}
	return domain.CommandSpec{
		Path: m.Name().Tool(),
		Args: []string{"sync", string(direction), localPath},
		Env:  m.EnvironmentValue,
	}
}

// VersionCopyCommand records the call and delegates to VersionCopyFunc.
func (m *MockAdapter) VersionCopyCommand(markerPath string) domain.CommandSpec {
	m.VersionCopyPaths = append(m.VersionCopyPaths, markerPath)
	if m.VersionCopyFunc != nil {
		return m.VersionCopyFunc(markerPath)
	}
	return domain.CommandSpec{
		Path: m.Name().Tool(),
		Args: []string{"copy", markerPath},
		Env:  m.EnvironmentValue,
	}
}

// Validate calls the mock ValidateFunc.
func (m *MockAdapter) Validate(ctx context.Context) error {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx)
	}
	return nil
}

// Ensure MockAdapter implements domain.Adapter.
var _ domain.Adapter = (*MockAdapter)(nil)
