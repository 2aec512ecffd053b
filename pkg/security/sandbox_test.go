package security

import (
	"context"
	"errors"
	"testing"
	"time"

	"augur-hq/augur/pkg/analyzer"
)

func sandboxPolicy(timeout time.Duration) Policy {
	p := DefaultPolicy()
	p.MaxExecutionTime = timeout
	return p
}

func TestSandbox_SuccessfulCall(t *testing.T) {
	s := NewSandbox(sandboxPolicy(time.Second), nil)
	p := goodPlugin()

	result, stats, err := s.Execute(context.Background(), p, &analyzer.AnalysisRequest{Type: analyzer.TypeSentiment})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result == nil || !result.Success {
		t.Fatalf("Execute() result = %+v, want success", result)
	}
	if stats.TimedOut {
		t.Error("stats.TimedOut should be false")
	}
	if stats.Plugin != "fake-plugin" {
		t.Errorf("stats.Plugin = %q, want fake-plugin", stats.Plugin)
	}
}

func TestSandbox_Timeout(t *testing.T) {
	s := NewSandbox(sandboxPolicy(50*time.Millisecond), nil)
	p := goodPlugin()
	p.analyzeFunc = func(ctx context.Context, req *analyzer.AnalysisRequest) (*analyzer.AnalysisResult, error) {
		select {
		case <-time.After(200 * time.Millisecond):
			return &analyzer.AnalysisResult{Success: true}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	start := time.Now()
	_, stats, err := s.Execute(context.Background(), p, &analyzer.AnalysisRequest{Type: analyzer.TypeSentiment})
	elapsed := time.Since(start)

	if !errors.Is(err, analyzer.ErrAnalysisTimeout) {
		t.Fatalf("Execute() error = %v, want AnalysisTimeout", err)
	}
	if !stats.TimedOut {
		t.Error("stats.TimedOut should be true")
	}
	// The caller stops waiting around the deadline, not the plugin's
	// own duration.
	if elapsed > 150*time.Millisecond {
		t.Errorf("Execute returned after %s, should return near the 50ms deadline", elapsed)
	}
}

func TestSandbox_PluginErrorWrapped(t *testing.T) {
	s := NewSandbox(sandboxPolicy(time.Second), nil)
	p := goodPlugin()
	cause := errors.New("upstream unavailable")
	p.analyzeFunc = func(ctx context.Context, req *analyzer.AnalysisRequest) (*analyzer.AnalysisResult, error) {
		return nil, cause
	}

	_, _, err := s.Execute(context.Background(), p, &analyzer.AnalysisRequest{Type: analyzer.TypeSentiment})
	if !errors.Is(err, analyzer.ErrPluginExecutionFailed) {
		t.Fatalf("Execute() error = %v, want PluginExecutionFailed", err)
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped error must preserve the original cause")
	}

	var e *analyzer.Error
	if !errors.As(err, &e) {
		t.Fatal("error should be an *analyzer.Error")
	}
	if e.Component != "sandbox" {
		t.Errorf("Component = %q, want sandbox", e.Component)
	}
}

func TestSandbox_PluginPanicWrapped(t *testing.T) {
	s := NewSandbox(sandboxPolicy(time.Second), nil)
	p := goodPlugin()
	p.analyzeFunc = func(ctx context.Context, req *analyzer.AnalysisRequest) (*analyzer.AnalysisResult, error) {
		panic("plugin exploded")
	}

	_, _, err := s.Execute(context.Background(), p, &analyzer.AnalysisRequest{Type: analyzer.TypeSentiment})
	if !errors.Is(err, analyzer.ErrPluginExecutionFailed) {
		t.Fatalf("Execute() error = %v, want PluginExecutionFailed", err)
	}
}

func TestSandbox_CallerContextCancellation(t *testing.T) {
	s := NewSandbox(sandboxPolicy(10*time.Second), nil)
	p := goodPlugin()
	p.analyzeFunc = func(ctx context.Context, req *analyzer.AnalysisRequest) (*analyzer.AnalysisResult, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, stats, err := s.Execute(ctx, p, &analyzer.AnalysisRequest{Type: analyzer.TypeSentiment})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Execute() error = %v, want context.Canceled", err)
	}
	if errors.Is(err, analyzer.ErrAnalysisTimeout) {
		t.Error("caller cancellation must not be reported as a deadline breach")
	}
	if stats.TimedOut {
		t.Error("stats.TimedOut should be false for caller cancellation")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Execute should honor caller cancellation promptly, took %s", elapsed)
	}
}
