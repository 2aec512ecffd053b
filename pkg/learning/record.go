package learning

import (
	"context"
	"fmt"
	"time"

	"augur-hq/augur/pkg/analyzer"
)

// Feedback is an optional user judgement attached to a record.
type Feedback struct {
	// Helpful is the user's thumbs-up/down verdict.
	Helpful bool `json:"helpful"`

	// Rating is a 1-5 score; 0 means unrated.
	Rating int `json:"rating,omitempty"`

	Comment string `json:"comment,omitempty"`
}

// Record is one learning data point: the outcome of an analysis as
// observed by the engine, optionally enriched with user feedback.
type Record struct {
	// ID uniquely identifies the record; assigned if empty on Add.
	ID string `json:"id"`

	// UserID attributes the record to a user (optional).
	UserID string `json:"user_id,omitempty"`

	// AnalysisType is the type of the analysis that produced this
	// outcome.
	AnalysisType analyzer.AnalysisType `json:"analysis_type"`

	// Action is the recommended action, when a decision was produced.
	Action analyzer.ActionType `json:"action,omitempty"`

	// Confidence is the decision confidence in [0,100].
	Confidence float64 `json:"confidence"`

	// Success indicates whether the analysis produced a decision.
	Success bool `json:"success"`

	// FailureReason describes the failure when Success is false.
	FailureReason string `json:"failure_reason,omitempty"`

	// Feedback is the user's judgement (optional).
	Feedback *Feedback `json:"feedback,omitempty"`

	// Metadata carries free-form context.
	Metadata map[string]any `json:"metadata,omitempty"`

	// Timestamp is when the record was created; assigned if zero on Add.
	Timestamp time.Time `json:"timestamp"`
}

// Validate reports the first structural problem with the record.
func (r *Record) Validate() error {
	if r == nil {
		return fmt.Errorf("record is nil")
	}
	if r.AnalysisType == "" {
		return fmt.Errorf("record has no analysis type")
	}
	if r.Confidence < 0 || r.Confidence > 100 {
		return fmt.Errorf("record confidence %v outside [0,100]", r.Confidence)
	}
	if r.Feedback != nil && (r.Feedback.Rating < 0 || r.Feedback.Rating > 5) {
		return fmt.Errorf("feedback rating %d outside [0,5]", r.Feedback.Rating)
	}
	return nil
}

// Store is the persistence contract for learning records.
type Store interface {
	// Add appends a record. Implementations assign ID and Timestamp
	// when unset and enforce their record cap.
	Add(ctx context.Context, rec *Record) error

	// ByUser returns records for a user, newest first, up to limit
	// (limit <= 0 means no limit).
	ByUser(ctx context.Context, userID string, limit int) ([]*Record, error)

	// All returns every stored record, oldest first.
	All(ctx context.Context) ([]*Record, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Prune deletes records older than cutoff, returning how many
	// were removed.
	Prune(ctx context.Context, cutoff time.Time) (int, error)

	// Close releases store resources.
	Close() error
}
