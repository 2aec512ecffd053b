package analyzer

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorIsMapsCodeToSentinel(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		sentinel error
	}{
		{CodeInvalidInput, ErrInvalidInput},
		{CodeInvalidConfig, ErrInvalidConfig},
		{CodeNotInitialized, ErrNotInitialized},
		{CodePluginLoadFailed, ErrPluginLoadFailed},
		{CodePluginValidationFailed, ErrPluginValidationFailed},
		{CodePluginExecutionFailed, ErrPluginExecutionFailed},
		{CodeAnalysisTimeout, ErrAnalysisTimeout},
		{CodeNoSuitableAnalyzer, ErrNoSuitableAnalyzer},
		{CodeRateLimitExceeded, ErrRateLimitExceeded},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := NewError(tt.code, "engine", "boom")
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.sentinel)
			}
			if errors.Is(err, ErrInvalidInput) && tt.sentinel != ErrInvalidInput {
				t.Errorf("%v matched the wrong sentinel", err)
			}
		})
	}
}

func TestWrapErrorUnwraps(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := WrapError(CodePluginExecutionFailed, "sandbox", "plugin failed", cause)
	if !errors.Is(err, cause) {
		t.Error("wrapped error does not unwrap to its cause")
	}
	if got := CodeOf(err); got != CodePluginExecutionFailed {
		t.Errorf("CodeOf() = %q, want %q", got, CodePluginExecutionFailed)
	}
}

func TestCodeOfThroughWrapping(t *testing.T) {
	inner := NewError(CodeAnalysisTimeout, "sandbox", "too slow")
	outer := fmt.Errorf("routing: %w", inner)
	if got := CodeOf(outer); got != CodeAnalysisTimeout {
		t.Errorf("CodeOf(wrapped) = %q, want %q", got, CodeAnalysisTimeout)
	}
	if got := CodeOf(errors.New("plain")); got != "" {
		t.Errorf("CodeOf(plain) = %q, want empty", got)
	}
	if got := CodeOf(nil); got != "" {
		t.Errorf("CodeOf(nil) = %q, want empty", got)
	}
}

func TestErrorStringCarriesComponentAndCode(t *testing.T) {
	err := NewError(CodeRateLimitExceeded, "engine", "slow down").
		WithSuggestions("wait a minute")
	msg := err.Error()
	for _, want := range []string{"RATE_LIMIT_EXCEEDED", "engine", "slow down"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
	if len(err.Suggestions) != 1 {
		t.Errorf("suggestions = %v", err.Suggestions)
	}
}
