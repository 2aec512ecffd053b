package registry

import (
	"context"
	"log/slog"

	"augur-hq/augur/pkg/analyzer"
)

// Invoker runs a single plugin against a request. The engine supplies
// an invoker that routes untrusted plugins through the sandbox; the
// default invoker calls the plugin directly.
type Invoker func(ctx context.Context, p analyzer.Plugin, req *analyzer.AnalysisRequest) (*analyzer.AnalysisResult, error)

// Router selects a plugin for a request and executes it with a
// single-step fallback: the first capable plugin is invoked, and if it
// returns an error the second capable plugin (when one exists) is
// tried exactly once. Later candidates are never consulted.
type Router struct {
	registry *Registry
	invoke   Invoker
	logger   *slog.Logger
}

// NewRouter builds a Router over the given registry. A nil invoker
// invokes plugins directly.
func NewRouter(reg *Registry, invoke Invoker, logger *slog.Logger) *Router {
	if invoke == nil {
		invoke = func(ctx context.Context, p analyzer.Plugin, req *analyzer.AnalysisRequest) (*analyzer.AnalysisResult, error) {
			return p.Analyze(ctx, req)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		registry: reg,
		invoke:   invoke,
		logger:   logger.With("component", "router"),
	}
}

// Route executes the request against the first capable plugin, falling
// back to the second on error. It returns the plugin that produced the
// result alongside the result itself.
func (r *Router) Route(ctx context.Context, req *analyzer.AnalysisRequest) (*analyzer.AnalysisResult, analyzer.Plugin, error) {
	candidates := r.registry.Candidates(req)
	if len(candidates) == 0 {
		nsErr := &NoSuitableAnalyzerError{
			AnalysisType: string(req.Type),
			Blockchain:   req.Blockchain(),
			Loaded:       r.registry.Count(),
		}
		return nil, nil, analyzer.WrapError(analyzer.CodeNoSuitableAnalyzer, "router", "no analyzer accepts this request", nsErr).
			WithSuggestions(
				"load a plugin that supports this analysis type",
				"check the request's blockchain field against plugin capabilities",
			)
	}

	primary := candidates[0]
	result, err := r.invoke(ctx, primary, req)
	if err == nil {
		return result, primary, nil
	}

	if len(candidates) < 2 {
		return nil, primary, err
	}

	fallback := candidates[1]
	r.logger.Warn("primary analyzer failed, trying fallback",
		"type", req.Type,
		"primary", primary.Name(),
		"fallback", fallback.Name(),
		"error", err)

	result, ferr := r.invoke(ctx, fallback, req)
	if ferr != nil {
		// Report the primary failure; the fallback error rides along
		// in the log only.
		r.logger.Warn("fallback analyzer also failed",
			"type", req.Type, "fallback", fallback.Name(), "error", ferr)
		return nil, fallback, err
	}
	return result, fallback, nil
}
