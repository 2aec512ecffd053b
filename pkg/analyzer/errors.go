package analyzer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode is the machine-readable classification of an engine error.
type ErrorCode string

const (
	// CodeInvalidInput marks schema or shape violations. Non-retryable.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig marks construction-time configuration errors.
	// Fatal to initialization.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIG"

	// CodeNotInitialized marks calls made before Initialize completed.
	CodeNotInitialized ErrorCode = "NOT_INITIALIZED"

	// CodePluginLoadFailed marks registry rejection of a plugin for
	// structural reasons. Non-retryable until the plugin is fixed.
	CodePluginLoadFailed ErrorCode = "PLUGIN_LOAD_FAILED"

	// CodePluginValidationFailed marks security validator rejection.
	CodePluginValidationFailed ErrorCode = "PLUGIN_VALIDATION_FAILED"

	// CodePluginExecutionFailed wraps a plugin's runtime error or a
	// sandbox resource breach. Retryable only via the two-tier
	// fallback plugin.
	CodePluginExecutionFailed ErrorCode = "PLUGIN_EXECUTION_FAILED"

	// CodeAnalysisTimeout marks a sandbox deadline expiry. Retryable
	// by the caller, never automatically.
	CodeAnalysisTimeout ErrorCode = "ANALYSIS_TIMEOUT"

	// CodeNoSuitableAnalyzer marks a routing dead-end: no loaded
	// plugin handles the request.
	CodeNoSuitableAnalyzer ErrorCode = "NO_SUITABLE_ANALYZER"

	// CodeRateLimitExceeded marks rate limiter denial. Retryable
	// after the window resets.
	CodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
)

// Sentinel errors for errors.Is matching. Every *Error with the
// corresponding code matches its sentinel.
var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidConfig          = errors.New("invalid configuration")
	ErrNotInitialized         = errors.New("engine not initialized")
	ErrPluginLoadFailed       = errors.New("plugin load failed")
	ErrPluginValidationFailed = errors.New("plugin validation failed")
	ErrPluginExecutionFailed  = errors.New("plugin execution failed")
	ErrAnalysisTimeout        = errors.New("analysis timed out")
	ErrNoSuitableAnalyzer     = errors.New("no suitable analyzer")
	ErrRateLimitExceeded      = errors.New("rate limit exceeded")
)

var sentinelByCode = map[ErrorCode]error{
	CodeInvalidInput:           ErrInvalidInput,
	CodeInvalidConfig:          ErrInvalidConfig,
	CodeNotInitialized:         ErrNotInitialized,
	CodePluginLoadFailed:       ErrPluginLoadFailed,
	CodePluginValidationFailed: ErrPluginValidationFailed,
	CodePluginExecutionFailed:  ErrPluginExecutionFailed,
	CodeAnalysisTimeout:        ErrAnalysisTimeout,
	CodeNoSuitableAnalyzer:     ErrNoSuitableAnalyzer,
	CodeRateLimitExceeded:      ErrRateLimitExceeded,
}

// Error is the engine's uniform error type. It carries a
// machine-readable code, a human message, the component that produced
// it, and optional remediation suggestions.
type Error struct {
	// Code classifies the error.
	Code ErrorCode

	// Message is the human-readable description.
	Message string

	// Component names the engine component that produced the error
	// (e.g. "engine", "registry", "sandbox", "ratelimit").
	Component string

	// Suggestions are optional remediation hints.
	Suggestions []string

	// Cause is the wrapped underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s", e.Code, e.Message)
	if e.Component != "" {
		fmt.Fprintf(&sb, " (component: %s)", e.Component)
	}
	if e.Cause != nil {
		fmt.Fprintf(&sb, ": %v", e.Cause)
	}
	return sb.String()
}

// Unwrap returns the wrapped cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel corresponding to the error's code, so
// errors.Is(err, analyzer.ErrRateLimitExceeded) works regardless of
// which component built the error.
func (e *Error) Is(target error) bool {
	if s, ok := sentinelByCode[e.Code]; ok && target == s {
		return true
	}
	return false
}

// NewError builds an *Error with the given code, component and message.
func NewError(code ErrorCode, component, message string) *Error {
	return &Error{Code: code, Component: component, Message: message}
}

// WrapError builds an *Error wrapping a cause.
func WrapError(code ErrorCode, component, message string, cause error) *Error {
	return &Error{Code: code, Component: component, Message: message, Cause: cause}
}

// WithSuggestions attaches remediation suggestions and returns the error.
func (e *Error) WithSuggestions(suggestions ...string) *Error {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// CodeOf extracts the ErrorCode from an error chain. Returns an empty
// code when the chain contains no *Error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
