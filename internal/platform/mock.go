package platform

import (
	"context"

	"github.com/coreforge/enginesync/internal/domain"
)

// MockRegistrar implements domain.Registrar for testing.
type MockRegistrar struct {
	RegisterEngineFunc func(name, path string) error

	// Registered records every RegisterEngine call by name.
	Registered map[string]string
}

var _ domain.Registrar = (*MockRegistrar)(nil)

func (m *MockRegistrar) RegisterEngine(name, path string) error {
	if m.Registered == nil {
		m.Registered = make(map[string]string)
	}
	m.Registered[name] = path

	if m.RegisterEngineFunc != nil {
		return m.RegisterEngineFunc(name, path)
	}
	return nil
}

// MockBootstrap implements domain.Bootstrap for testing.
type MockBootstrap struct {
	InstallToolFunc      func(ctx context.Context, tool string, sink domain.LineSink) error
	RefreshPathFunc      func() error
	RunPrerequisitesFunc func(ctx context.Context, enginePath string, sink domain.LineSink) error

	InstalledTools []string
	RefreshCalls   int
	PrereqPaths    []string
}

var _ domain.Bootstrap = (*MockBootstrap)(nil)

func (m *MockBootstrap) InstallTool(ctx context.Context, tool string, sink domain.LineSink) error {
	m.InstalledTools = append(m.InstalledTools, tool)

	if m.InstallToolFunc != nil {
		return m.InstallToolFunc(ctx, tool, sink)
	}
	return nil
}

func (m *MockBootstrap) RefreshPath() error {
	m.RefreshCalls++

	if m.RefreshPathFunc != nil {
		return m.RefreshPathFunc()
	}
	return nil
}

func (m *MockBootstrap) RunPrerequisites(ctx context.Context, enginePath string, sink domain.LineSink) error {
	m.PrereqPaths = append(m.PrereqPaths, enginePath)

	if m.RunPrerequisitesFunc != nil {
		return m.RunPrerequisitesFunc(ctx, enginePath, sink)
	}
	return nil
}
