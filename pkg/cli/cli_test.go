package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"augur-hq/augur/pkg/analyzer"
)

func TestTextFormatter(t *testing.T) {
	formatter := &TextFormatter{}

	output, err := formatter.Format("test message")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if string(output) != "test message\n" {
		t.Errorf("Format() = %q, want %q", string(output), "test message\n")
	}

	buf := &bytes.Buffer{}
	if err := formatter.FormatTo(buf, "test message"); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if buf.String() != "test message\n" {
		t.Errorf("FormatTo() = %q, want %q", buf.String(), "test message\n")
	}
}

func TestJSONFormatter(t *testing.T) {
	formatter := &JSONFormatter{Indent: true}
	data := map[string]string{"key": "value"}

	output, err := formatter.Format(data)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var decoded map[string]string
	if err := json.Unmarshal(output, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["key"] != "value" {
		t.Errorf("round-trip lost data: %v", decoded)
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON).(*JSONFormatter); !ok {
		t.Error("FormatJSON did not produce a JSONFormatter")
	}
	if _, ok := NewFormatter(FormatText).(*TextFormatter); !ok {
		t.Error("FormatText did not produce a TextFormatter")
	}
	if _, ok := NewFormatter("tsv").(*TextFormatter); !ok {
		t.Error("unknown format did not fall back to text")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"plain error", errors.New("boom"), ExitError},
		{"invalid input", analyzer.NewError(analyzer.CodeInvalidInput, "engine", "bad"), ExitUsage},
		{"rate limited", analyzer.NewError(analyzer.CodeRateLimitExceeded, "engine", "slow down"), ExitRateLimited},
		{"timeout", analyzer.NewError(analyzer.CodeAnalysisTimeout, "sandbox", "too slow"), ExitTimeout},
		{"no analyzer", analyzer.NewError(analyzer.CodeNoSuitableAnalyzer, "router", "none"), ExitNoAnalyzer},
		{"execution failure", analyzer.NewError(analyzer.CodePluginExecutionFailed, "sandbox", "died"), ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCommandError(t *testing.T) {
	cause := errors.New("underlying")
	err := NewCommandError("analyze", cause)
	if !errors.Is(err, cause) {
		t.Error("CommandError does not unwrap to its cause")
	}
	if err.Error() != "command analyze failed: underlying" {
		t.Errorf("Error() = %q", err.Error())
	}
}
