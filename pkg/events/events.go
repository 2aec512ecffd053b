package events

import (
	"time"

	"augur-hq/augur/pkg/analyzer"
)

// Type identifies a lifecycle event.
type Type string

const (
	// EngineInitialized fires once Initialize completes.
	EngineInitialized Type = "engine_initialized"

	// AnalysisStarted fires when a request passes validation and
	// admission and enters the analysis pipeline.
	AnalysisStarted Type = "analysis_started"

	// AnalysisCompleted fires when a request produces a result,
	// including cache hits.
	AnalysisCompleted Type = "analysis_completed"

	// AnalysisFailed fires when a request fails past all fallbacks.
	AnalysisFailed Type = "analysis_failed"

	// RuleTriggered fires for each rule whose condition matched
	// during AnalyzeWithRules.
	RuleTriggered Type = "rule_triggered"

	// PluginLoaded fires when a plugin is accepted into the registry.
	PluginLoaded Type = "plugin_loaded"

	// PluginError fires when a plugin is rejected or fails at runtime.
	PluginError Type = "plugin_error"

	// LearningUpdated fires when a learning record is appended.
	LearningUpdated Type = "learning_updated"
)

// Event is a single lifecycle notification. Payload holds one of the
// typed payload structs below, keyed by Type.
type Event struct {
	Type    Type
	Time    time.Time
	Payload any
}

// EngineInitializedPayload accompanies EngineInitialized.
type EngineInitializedPayload struct {
	PluginsLoaded int
	Environment   string
}

// AnalysisStartedPayload accompanies AnalysisStarted.
type AnalysisStartedPayload struct {
	RequestID string
	Type      analyzer.AnalysisType
	Priority  analyzer.Priority
}

// AnalysisCompletedPayload accompanies AnalysisCompleted.
type AnalysisCompletedPayload struct {
	RequestID      string
	Type           analyzer.AnalysisType
	Provider       string
	ProcessingTime time.Duration
	CacheHit       bool
}

// AnalysisFailedPayload accompanies AnalysisFailed.
type AnalysisFailedPayload struct {
	RequestID string
	Type      analyzer.AnalysisType
	Code      analyzer.ErrorCode
	Error     string
}

// RuleTriggeredPayload accompanies RuleTriggered.
type RuleTriggeredPayload struct {
	RuleID     string
	RuleName   string
	Action     analyzer.ActionType
	Confidence float64
}

// PluginLoadedPayload accompanies PluginLoaded.
type PluginLoadedPayload struct {
	Name    string
	Version string
	Trusted bool
}

// PluginErrorPayload accompanies PluginError.
type PluginErrorPayload struct {
	Name  string
	Stage string // "load", "validate", "execute"
	Error string
}

// LearningUpdatedPayload accompanies LearningUpdated.
type LearningUpdatedPayload struct {
	UserID     string
	DataPoints int
}
