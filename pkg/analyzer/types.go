package analyzer

import (
	"time"
)

// AnalysisType identifies the kind of analysis a request asks for.
// It is the primary routing key: a plugin declares the set of types it
// can handle and the engine only dispatches matching requests to it.
type AnalysisType string

const (
	// TypeProposal analyzes a governance proposal.
	TypeProposal AnalysisType = "proposal"

	// TypeSentiment analyzes free-form text sentiment.
	TypeSentiment AnalysisType = "sentiment"

	// TypeMarket analyzes market conditions.
	TypeMarket AnalysisType = "market"

	// TypeTransaction analyzes a single transaction.
	TypeTransaction AnalysisType = "transaction"

	// TypeRisk performs a standalone risk assessment.
	TypeRisk AnalysisType = "risk"
)

// ActionType is the action recommended by an AIDecision.
type ActionType string

const (
	// ActionExecute recommends executing the analyzed operation.
	ActionExecute ActionType = "EXECUTE"

	// ActionWait recommends deferring until conditions change.
	ActionWait ActionType = "WAIT"

	// ActionSkip recommends not acting at all.
	ActionSkip ActionType = "SKIP"

	// ActionDelegate recommends handing the decision to a human or
	// another system.
	ActionDelegate ActionType = "DELEGATE"

	// ActionAlert recommends raising an alert without acting.
	ActionAlert ActionType = "ALERT"
)

// RiskLevel grades the risk attached to a decision.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Priority is the caller-supplied priority of a request. It modifies
// orchestration (queueing, fallback aggressiveness), not the analysis
// semantics themselves.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// FallbackStrategy selects the degraded-response policy applied when
// the primary analysis path fails.
type FallbackStrategy string

const (
	// FallbackBasic returns a canned low-confidence WAIT decision.
	FallbackBasic FallbackStrategy = "basic"

	// FallbackCache returns a previously cached result if one exists,
	// even if stale.
	FallbackCache FallbackStrategy = "cache"

	// FallbackSkip rethrows the original error to the caller.
	FallbackSkip FallbackStrategy = "skip"
)

// RequestContext carries domain context that narrows routing and
// influences cache key derivation. All fields are optional.
type RequestContext struct {
	// Blockchain constrains routing to plugins that support this chain.
	Blockchain string `json:"blockchain,omitempty"`

	// Protocol identifies the protocol under analysis.
	Protocol string `json:"protocol,omitempty"`

	// Timeframe is the analysis horizon (e.g. "24h", "7d").
	Timeframe string `json:"timeframe,omitempty"`

	// UserID identifies the requesting user for learning attribution.
	UserID string `json:"user_id,omitempty"`

	// Metadata carries free-form context consumed by plugins.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// RequestOptions modify orchestration behavior for a single request.
type RequestOptions struct {
	// Priority is the request priority ("low", "medium", "high").
	Priority Priority `json:"priority,omitempty"`

	// FallbackStrategy resolves failures ("basic", "cache", "skip").
	// Empty means propagate the error.
	FallbackStrategy FallbackStrategy `json:"fallback_strategy,omitempty"`

	// Caching controls result caching. Nil means enabled.
	Caching *bool `json:"caching,omitempty"`

	// Providers restricts which providers a plugin may consult.
	// The sorted list participates in cache key derivation.
	Providers []string `json:"providers,omitempty"`
}

// CachingEnabled reports whether caching applies for these options.
// Nil options or a nil Caching field mean caching is enabled.
func (o *RequestOptions) CachingEnabled() bool {
	if o == nil || o.Caching == nil {
		return true
	}
	return *o.Caching
}

// AnalysisRequest is a single request for analysis, immutable after
// construction. The engine assigns ID and Timestamp; callers supply
// everything else through Engine.Analyze.
type AnalysisRequest struct {
	// ID is the unique request identifier, assigned by the engine.
	ID string `json:"id"`

	// Type selects which plugins are applicable.
	Type AnalysisType `json:"type"`

	// Input is the free-form bag of fields under analysis (text,
	// structured data, domain-specific keys).
	Input map[string]any `json:"input"`

	// Context carries domain context (optional).
	Context *RequestContext `json:"context,omitempty"`

	// Options modify orchestration (optional).
	Options *RequestOptions `json:"options,omitempty"`

	// Timestamp is when the engine constructed the request.
	Timestamp time.Time `json:"timestamp"`
}

// Text returns the "text" input field, if present.
func (r *AnalysisRequest) Text() string {
	if r.Input == nil {
		return ""
	}
	s, _ := r.Input["text"].(string)
	return s
}

// Blockchain returns the context blockchain, or "" when the request
// carries no context.
func (r *AnalysisRequest) Blockchain() string {
	if r.Context == nil {
		return ""
	}
	return r.Context.Blockchain
}

// RiskAssessment describes the risk attached to a decision.
type RiskAssessment struct {
	// Level grades the overall risk.
	Level RiskLevel `json:"level"`

	// Factors lists the concrete factors contributing to the level.
	Factors []string `json:"factors,omitempty"`

	// Mitigations lists suggested mitigations (optional).
	Mitigations []string `json:"mitigations,omitempty"`
}

// Alternative is a lower-ranked decision a plugin also considered.
type Alternative struct {
	Action     ActionType `json:"action"`
	Confidence float64    `json:"confidence"`
	Reasoning  string     `json:"reasoning,omitempty"`
}

// ExecutionPlan describes how a recommended action should be carried out.
type ExecutionPlan struct {
	// Steps are the ordered execution steps.
	Steps []string `json:"steps,omitempty"`

	// RequiresApproval indicates a human must confirm before execution.
	RequiresApproval bool `json:"requires_approval,omitempty"`
}

// AIDecision is the decision produced by an analyzer.
//
// Confidence is always in [0,100]; producers must clamp it via
// ClampConfidence before returning a decision.
type AIDecision struct {
	// Action is the recommended action.
	Action ActionType `json:"action"`

	// Confidence is the decision confidence in [0,100].
	Confidence float64 `json:"confidence"`

	// Reasoning is the ordered list of reasoning steps.
	Reasoning []string `json:"reasoning,omitempty"`

	// RiskAssessment grades the risk of acting on this decision.
	RiskAssessment *RiskAssessment `json:"risk_assessment,omitempty"`

	// Alternatives lists other decisions that were considered.
	Alternatives []Alternative `json:"alternatives,omitempty"`

	// ExecutionPlan describes how to carry out the action (optional).
	ExecutionPlan *ExecutionPlan `json:"execution_plan,omitempty"`

	// Metadata carries producer-specific details.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ClampConfidence clamps a confidence value into [0,100].
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}

// Clone returns a deep copy of the decision. Slices and maps are
// copied so the clone can be cached without aliasing the original.
func (d *AIDecision) Clone() *AIDecision {
	if d == nil {
		return nil
	}
	out := *d
	out.Reasoning = append([]string(nil), d.Reasoning...)
	out.Alternatives = append([]Alternative(nil), d.Alternatives...)
	if d.RiskAssessment != nil {
		ra := *d.RiskAssessment
		ra.Factors = append([]string(nil), d.RiskAssessment.Factors...)
		ra.Mitigations = append([]string(nil), d.RiskAssessment.Mitigations...)
		out.RiskAssessment = &ra
	}
	if d.ExecutionPlan != nil {
		ep := *d.ExecutionPlan
		ep.Steps = append([]string(nil), d.ExecutionPlan.Steps...)
		out.ExecutionPlan = &ep
	}
	if d.Metadata != nil {
		md := make(map[string]any, len(d.Metadata))
		for k, v := range d.Metadata {
			md[k] = v
		}
		out.Metadata = md
	}
	return &out
}

// AnalysisResult is the outcome of one analysis. Exactly one of
// Decision/Error is meaningful depending on Success.
//
// A result is owned by the component that produced it. The cache stores
// a copy (with CachedAt stamped) rather than the original, so results
// are never mutated after creation.
type AnalysisResult struct {
	// Success indicates whether the analysis produced a decision.
	Success bool `json:"success"`

	// Decision is the produced decision (Success=true).
	Decision *AIDecision `json:"decision,omitempty"`

	// Error is the failure description (Success=false).
	Error string `json:"error,omitempty"`

	// ProcessingTime is how long the analysis took.
	ProcessingTime time.Duration `json:"processing_time"`

	// Provider is the name of the plugin that produced the result.
	Provider string `json:"provider"`

	// Metadata carries producer-specific result details.
	Metadata map[string]any `json:"metadata,omitempty"`

	// CachedAt is set on cached copies only; nil on fresh results.
	CachedAt *time.Time `json:"cached_at,omitempty"`
}

// Clone returns a deep copy of the result.
func (r *AnalysisResult) Clone() *AnalysisResult {
	if r == nil {
		return nil
	}
	out := *r
	out.Decision = r.Decision.Clone()
	if r.Metadata != nil {
		md := make(map[string]any, len(r.Metadata))
		for k, v := range r.Metadata {
			md[k] = v
		}
		out.Metadata = md
	}
	if r.CachedAt != nil {
		t := *r.CachedAt
		out.CachedAt = &t
	}
	return &out
}
