package security

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"augur-hq/augur/pkg/analyzer"
)

// ExecutionStats describes one sandboxed plugin call.
type ExecutionStats struct {
	// Plugin is the plugin that was executed.
	Plugin string

	// Duration is the wall-clock time spent waiting on the call.
	Duration time.Duration

	// HeapGrowthBytes is the measured heap growth across the call.
	// Only meaningful when the call completed; zero on timeout.
	HeapGrowthBytes uint64

	// TimedOut indicates the deadline fired before the call returned.
	TimedOut bool
}

// Sandbox executes one plugin method under a wall-clock deadline and a
// heap-growth budget.
//
// The deadline is enforced by deriving a context with the policy's
// MaxExecutionTime and cancelling it when the timer fires; a compliant
// plugin observes the cancellation and returns promptly. The sandbox
// stops waiting either way, so a plugin that ignores cancellation is a
// contract violation on the plugin's side, not a hang in the engine.
//
// The heap budget is checked after the call completes by comparing
// runtime heap allocation before and against after. This is post-hoc
// detection: it flags the breach but cannot prevent the allocation.
// Concurrent engine activity also pollutes the measurement, so the
// check is deliberately advisory in spirit even though a breach is
// reported as an execution failure.
type Sandbox struct {
	policy Policy
	logger *slog.Logger
}

// NewSandbox creates a sandbox enforcing the given policy.
func NewSandbox(policy Policy, logger *slog.Logger) *Sandbox {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sandbox{
		policy: policy,
		logger: logger.With("component", "security.sandbox"),
	}
}

type sandboxOutcome struct {
	result *analyzer.AnalysisResult
	err    error
}

// Execute runs plugin.Analyze under the sandbox's bounds.
//
// Errors are uniform: a deadline expiry returns an AnalysisTimeout
// error; every other failure (plugin error, plugin panic, heap budget
// breach) is wrapped into a PluginExecutionFailed error carrying the
// plugin name, the method, and the original message.
func (s *Sandbox) Execute(ctx context.Context, plugin analyzer.Plugin, req *analyzer.AnalysisRequest) (*analyzer.AnalysisResult, *ExecutionStats, error) {
	timeout := s.policy.MaxExecutionTime
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var before runtime.MemStats
	runtime.ReadMemStats(&before)
	start := time.Now()

	done := make(chan sandboxOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- sandboxOutcome{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		result, err := plugin.Analyze(callCtx, req)
		done <- sandboxOutcome{result: result, err: err}
	}()

	select {
	case <-callCtx.Done():
		stats := &ExecutionStats{
			Plugin:   plugin.Name(),
			Duration: time.Since(start),
		}
		// The parent context cancelling is the caller aborting, not the
		// plugin breaching the deadline; hand the cancellation back as-is.
		if err := callCtx.Err(); !errors.Is(err, context.DeadlineExceeded) {
			return nil, stats, err
		}
		stats.TimedOut = true
		s.logger.Warn("plugin call timed out",
			"plugin", plugin.Name(),
			"timeout", timeout,
		)
		return nil, stats, analyzer.WrapError(
			analyzer.CodeAnalysisTimeout,
			"sandbox",
			fmt.Sprintf("plugin %q exceeded the %s execution deadline", plugin.Name(), timeout),
			callCtx.Err(),
		).WithSuggestions("raise max_execution_time in the security policy, or use a faster plugin")

	case outcome := <-done:
		var after runtime.MemStats
		runtime.ReadMemStats(&after)

		stats := &ExecutionStats{
			Plugin:   plugin.Name(),
			Duration: time.Since(start),
		}
		if after.HeapAlloc > before.HeapAlloc {
			stats.HeapGrowthBytes = after.HeapAlloc - before.HeapAlloc
		}

		if outcome.err != nil {
			// A plugin honoring cancellation can race the deadline and
			// hand the context error back through done first.
			if errors.Is(outcome.err, context.Canceled) && ctx.Err() != nil {
				return nil, stats, outcome.err
			}
			if errors.Is(outcome.err, context.DeadlineExceeded) {
				stats.TimedOut = true
				return nil, stats, analyzer.WrapError(
					analyzer.CodeAnalysisTimeout,
					"sandbox",
					fmt.Sprintf("plugin %q exceeded the %s execution deadline", plugin.Name(), timeout),
					outcome.err,
				).WithSuggestions("raise max_execution_time in the security policy, or use a faster plugin")
			}
			return nil, stats, analyzer.WrapError(
				analyzer.CodePluginExecutionFailed,
				"sandbox",
				fmt.Sprintf("plugin %q method Analyze failed: %v", plugin.Name(), outcome.err),
				outcome.err,
			)
		}

		if budget := s.memoryBudgetBytes(); budget > 0 && stats.HeapGrowthBytes > budget {
			s.logger.Warn("plugin exceeded heap growth budget",
				"plugin", plugin.Name(),
				"growth_bytes", stats.HeapGrowthBytes,
				"budget_bytes", budget,
			)
			return nil, stats, analyzer.NewError(
				analyzer.CodePluginExecutionFailed,
				"sandbox",
				fmt.Sprintf("plugin %q method Analyze grew the heap by %d bytes (budget %d)",
					plugin.Name(), stats.HeapGrowthBytes, budget),
			).WithSuggestions("raise max_memory_usage_mb in the security policy")
		}

		return outcome.result, stats, nil
	}
}

func (s *Sandbox) memoryBudgetBytes() uint64 {
	if s.policy.MaxMemoryUsageMB <= 0 {
		return 0
	}
	return uint64(s.policy.MaxMemoryUsageMB) * 1024 * 1024
}
