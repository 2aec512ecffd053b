// Package analyzertest provides a configurable mock plugin for engine
// and registry tests.
package analyzertest

import (
	"context"
	"sync"
	"time"

	"augur-hq/augur/pkg/analyzer"
)

// MockPlugin is a Plugin with programmable behavior and call counting.
// The zero value is not usable; construct with NewMockPlugin.
type MockPlugin struct {
	analyzer.Capabilities

	PluginName    string
	PluginVersion string
	Meta          analyzer.PluginMetadata

	// AnalyzeFunc overrides the default canned response.
	AnalyzeFunc func(ctx context.Context, req *analyzer.AnalysisRequest) (*analyzer.AnalysisResult, error)

	// Delay is slept (context-aware) before responding, for timeout
	// scenarios.
	Delay time.Duration

	mu    sync.Mutex
	calls int
}

// NewMockPlugin returns a mock handling the given types, answering
// every request with an EXECUTE decision at confidence 82.
func NewMockPlugin(name string, types ...analyzer.AnalysisType) *MockPlugin {
	if len(types) == 0 {
		types = []analyzer.AnalysisType{analyzer.TypeSentiment}
	}
	return &MockPlugin{
		Capabilities:  analyzer.Capabilities{Types: types},
		PluginName:    name,
		PluginVersion: "1.0.0",
		Meta: analyzer.PluginMetadata{
			Author:      "augur",
			Description: "mock plugin for tests",
		},
	}
}

func (m *MockPlugin) Name() string                      { return m.PluginName }
func (m *MockPlugin) Version() string                   { return m.PluginVersion }
func (m *MockPlugin) Metadata() analyzer.PluginMetadata { return m.Meta }

// Calls returns how many times Analyze has been invoked.
func (m *MockPlugin) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockPlugin) Analyze(ctx context.Context, req *analyzer.AnalysisRequest) (*analyzer.AnalysisResult, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, req)
	}
	return &analyzer.AnalysisResult{
		Success:  true,
		Provider: m.PluginName,
		Decision: &analyzer.AIDecision{
			Action:     analyzer.ActionExecute,
			Confidence: 82,
			Reasoning:  []string{"mock decision"},
		},
	}, nil
}
