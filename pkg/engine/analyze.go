package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"augur-hq/augur/pkg/analyzer"
	"augur-hq/augur/pkg/cache"
	"augur-hq/augur/pkg/events"
	"augur-hq/augur/pkg/telemetry/metrics"
)

// fallbackConfidence is the confidence attached to the canned decision
// produced by the "basic" fallback strategy.
const fallbackConfidence = 30

// Analyze runs one analysis request through the full pipeline:
// admission, validation, cache, routing, recording, fallback.
func (e *Engine) Analyze(ctx context.Context, t analyzer.AnalysisType, input map[string]any, reqCtx *analyzer.RequestContext, opts *analyzer.RequestOptions) (*analyzer.AnalysisResult, error) {
	if err := e.requireInitialized(); err != nil {
		return nil, err
	}

	if !e.limiter.Allow() {
		if e.collector != nil {
			e.collector.RecordRateLimitRejection()
		}
		return nil, analyzer.NewError(analyzer.CodeRateLimitExceeded, "engine", "rate limit exceeded").
			WithSuggestions("retry after the current window resets", "raise the configured limits")
	}

	req := &analyzer.AnalysisRequest{
		ID:        uuid.NewString(),
		Type:      t,
		Input:     input,
		Context:   reqCtx,
		Options:   opts,
		Timestamp: e.now(),
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	e.publish(events.AnalysisStarted, events.AnalysisStartedPayload{
		RequestID: req.ID,
		Type:      req.Type,
		Priority:  priorityOf(opts),
	})

	caching := e.cache != nil && opts.CachingEnabled()
	var key string
	var stale *analyzer.AnalysisResult
	if caching {
		key = cache.Key(req)
		// Snapshot before the fresh lookup: Get evicts entries past
		// their type TTL, and the cache fallback deliberately accepts
		// such stale reads.
		if opts != nil && opts.FallbackStrategy == analyzer.FallbackCache {
			stale, _ = e.cache.GetStale(key)
		}
		if hit, ok := e.cache.Get(key); ok {
			e.recordCacheHit(req, hit)
			return hit, nil
		}
		if e.collector != nil {
			e.collector.RecordCacheMiss()
		}
	}

	start := e.now()
	result, plugin, err := e.router.Route(ctx, req)
	elapsed := e.now().Sub(start)

	if err != nil {
		e.monitor.Record(req.Type, elapsed, false)
		if e.collector != nil {
			e.collector.RecordAnalysis(string(req.Type), metrics.StatusFailure, elapsed)
		}
		e.publish(events.AnalysisFailed, events.AnalysisFailedPayload{
			RequestID: req.ID,
			Type:      req.Type,
			Code:      analyzer.CodeOf(err),
			Error:     err.Error(),
		})
		e.recordOutcome(ctx, req, nil, err)
		return e.resolveFallback(req, stale, err)
	}

	if result.ProcessingTime == 0 {
		result.ProcessingTime = elapsed
	}
	if result.Decision != nil {
		result.Decision.Confidence = analyzer.ClampConfidence(result.Decision.Confidence)
	}

	if caching && result.Success {
		e.cache.Set(key, req.Type, result)
		if e.collector != nil {
			e.collector.SetCacheEntries(e.cache.Size())
		}
	}

	e.monitor.Record(req.Type, elapsed, result.Success)
	if e.collector != nil {
		status := metrics.StatusSuccess
		if !result.Success {
			status = metrics.StatusFailure
		}
		e.collector.RecordAnalysis(string(req.Type), status, elapsed)
	}
	e.publish(events.AnalysisCompleted, events.AnalysisCompletedPayload{
		RequestID:      req.ID,
		Type:           req.Type,
		Provider:       plugin.Name(),
		ProcessingTime: elapsed,
		CacheHit:       false,
	})
	e.recordOutcome(ctx, req, result, nil)
	return result, nil
}

func (e *Engine) recordCacheHit(req *analyzer.AnalysisRequest, hit *analyzer.AnalysisResult) {
	if e.collector != nil {
		e.collector.RecordCacheHit()
		e.collector.RecordAnalysis(string(req.Type), metrics.StatusCacheHit, 0)
	}
	e.publish(events.AnalysisCompleted, events.AnalysisCompletedPayload{
		RequestID: req.ID,
		Type:      req.Type,
		Provider:  hit.Provider,
		CacheHit:  true,
	})
}

// resolveFallback applies the request's fallback strategy to a routing
// failure. Unset or "skip" strategies propagate the original error.
func (e *Engine) resolveFallback(req *analyzer.AnalysisRequest, stale *analyzer.AnalysisResult, cause error) (*analyzer.AnalysisResult, error) {
	if !e.cfg.Features.FallbackEnabled || req.Options == nil {
		return nil, cause
	}

	switch req.Options.FallbackStrategy {
	case analyzer.FallbackBasic:
		e.logger.Warn("analysis failed, returning basic fallback decision",
			"request_id", req.ID, "type", req.Type, "error", cause)
		return &analyzer.AnalysisResult{
			Success:  true,
			Provider: "fallback",
			Decision: &analyzer.AIDecision{
				Action:     analyzer.ActionWait,
				Confidence: fallbackConfidence,
				Reasoning:  []string{"primary analysis failed, deferring until it recovers"},
				RiskAssessment: &analyzer.RiskAssessment{
					Level:   analyzer.RiskMedium,
					Factors: []string{"decision produced without analysis"},
				},
				Metadata: map[string]any{"fallback": true, "cause": cause.Error()},
			},
		}, nil

	case analyzer.FallbackCache:
		if stale == nil {
			return nil, cause
		}
		e.logger.Warn("analysis failed, returning stale cached result",
			"request_id", req.ID, "type", req.Type, "error", cause)
		return stale, nil

	default:
		return nil, cause
	}
}

// validTypes is the closed set of analysis types accepted by Analyze.
var validTypes = map[analyzer.AnalysisType]bool{
	analyzer.TypeProposal:    true,
	analyzer.TypeSentiment:   true,
	analyzer.TypeMarket:      true,
	analyzer.TypeTransaction: true,
	analyzer.TypeRisk:        true,
}

func validateRequest(req *analyzer.AnalysisRequest) error {
	if !validTypes[req.Type] {
		return analyzer.NewError(analyzer.CodeInvalidInput, "engine",
			fmt.Sprintf("unknown analysis type %q", req.Type)).
			WithSuggestions("use one of: proposal, sentiment, market, transaction, risk")
	}
	if len(req.Input) == 0 {
		return analyzer.NewError(analyzer.CodeInvalidInput, "engine", "input is empty")
	}
	if opts := req.Options; opts != nil {
		switch opts.Priority {
		case "", analyzer.PriorityLow, analyzer.PriorityMedium, analyzer.PriorityHigh:
		default:
			return analyzer.NewError(analyzer.CodeInvalidInput, "engine",
				fmt.Sprintf("unknown priority %q", opts.Priority))
		}
		switch opts.FallbackStrategy {
		case "", analyzer.FallbackBasic, analyzer.FallbackCache, analyzer.FallbackSkip:
		default:
			return analyzer.NewError(analyzer.CodeInvalidInput, "engine",
				fmt.Sprintf("unknown fallback strategy %q", opts.FallbackStrategy))
		}
	}
	return nil
}

func priorityOf(opts *analyzer.RequestOptions) analyzer.Priority {
	if opts == nil || opts.Priority == "" {
		return analyzer.PriorityMedium
	}
	return opts.Priority
}
