package engine

import (
	"context"

	"augur-hq/augur/pkg/analyzer"
	"augur-hq/augur/pkg/events"
	"augur-hq/augur/pkg/learning"
)

// recordOutcome appends an analysis outcome to the learning store when
// learning is enabled. Failures to record are logged, never surfaced:
// learning is advisory and must not fail an analysis.
func (e *Engine) recordOutcome(ctx context.Context, req *analyzer.AnalysisRequest, result *analyzer.AnalysisResult, cause error) {
	e.mu.RLock()
	store := e.store
	e.mu.RUnlock()
	if !e.cfg.Features.LearningEnabled || store == nil {
		return
	}

	rec := &learning.Record{
		AnalysisType: req.Type,
		Timestamp:    e.now(),
	}
	if req.Context != nil {
		rec.UserID = req.Context.UserID
	}
	switch {
	case cause != nil:
		rec.FailureReason = cause.Error()
	case result != nil && result.Success:
		rec.Success = true
		if result.Decision != nil {
			rec.Action = result.Decision.Action
			rec.Confidence = result.Decision.Confidence
		}
	case result != nil:
		rec.FailureReason = result.Error
	}

	if err := store.Add(ctx, rec); err != nil {
		e.logger.Warn("learning record dropped", "request_id", req.ID, "error", err)
		return
	}
	points, _ := store.Count(ctx)
	e.publish(events.LearningUpdated, events.LearningUpdatedPayload{
		UserID:     rec.UserID,
		DataPoints: points,
	})
}

// RecordLearning appends a caller-supplied learning record, typically
// carrying user feedback on an earlier decision.
func (e *Engine) RecordLearning(ctx context.Context, rec *learning.Record) error {
	if err := e.requireInitialized(); err != nil {
		return err
	}
	if rec == nil {
		return analyzer.NewError(analyzer.CodeInvalidInput, "engine", "learning record is nil")
	}
	if err := rec.Validate(); err != nil {
		return analyzer.WrapError(analyzer.CodeInvalidInput, "engine", "invalid learning record", err)
	}

	e.mu.RLock()
	store := e.store
	e.mu.RUnlock()
	if store == nil {
		return analyzer.NewError(analyzer.CodeNotInitialized, "engine", "learning store is not open")
	}
	if err := store.Add(ctx, rec); err != nil {
		return err
	}
	points, _ := store.Count(ctx)
	e.publish(events.LearningUpdated, events.LearningUpdatedPayload{
		UserID:     rec.UserID,
		DataPoints: points,
	})
	return nil
}

// UserLearningData returns a user's learning records, newest first.
// A limit of 0 returns all of the user's records.
func (e *Engine) UserLearningData(ctx context.Context, userID string, limit int) ([]*learning.Record, error) {
	if err := e.requireInitialized(); err != nil {
		return nil, err
	}
	e.mu.RLock()
	store := e.store
	e.mu.RUnlock()
	return store.ByUser(ctx, userID, limit)
}

// LearningInsights computes aggregate statistics over the learning
// trace: mean confidence, success rate, top failure reasons and the
// feedback aggregate.
func (e *Engine) LearningInsights(ctx context.Context) (*learning.Insights, error) {
	if err := e.requireInitialized(); err != nil {
		return nil, err
	}
	e.mu.RLock()
	store := e.store
	e.mu.RUnlock()
	return learning.ComputeInsights(ctx, store)
}
