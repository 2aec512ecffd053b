package rules

import (
	"os"
	"path/filepath"
	"testing"
)

const goodRuleYAML = `rules:
  - id: treasury-guard
    name: Treasury guard
    condition:
      type: logical
      expression: amount > 100000
    action:
      type: ALERT
      confirmation_required: true
    enabled: true
    priority: 10
  - id: sentiment-gate
    name: Sentiment gate
    condition:
      type: natural_language
      expression: excellent proposal
      confidence_threshold: 60
    action:
      type: EXECUTE
    enabled: true
    priority: 5
`

func writeRuleFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write rule file: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeRuleFile(t, goodRuleYAML)

	rules, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("len(rules) = %d, want 2", len(rules))
	}
	if rules[0].ID != "treasury-guard" || rules[0].Priority != 10 {
		t.Errorf("rules[0] = %+v", rules[0])
	}
	if !rules[0].Action.ConfirmationRequired {
		t.Error("confirmation_required not parsed")
	}
	if rules[1].Condition.ConfidenceThreshold != 60 {
		t.Errorf("ConfidenceThreshold = %v, want 60", rules[1].Condition.ConfidenceThreshold)
	}
}

func TestLoadFileRejectsBadContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not yaml", "rules: ["},
		{"missing expression", "rules:\n  - id: r1\n    condition:\n      type: logical\n    action:\n      type: ALERT\n"},
		{"duplicate ids", `rules:
  - id: dup
    condition: {type: logical, expression: a == 1}
    action: {type: ALERT}
  - id: dup
    condition: {type: logical, expression: b == 2}
    action: {type: ALERT}
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFile(writeRuleFile(t, tt.content)); err == nil {
				t.Error("LoadFile() error = nil, want failure")
			}
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("LoadFile() error = nil, want read failure")
	}
}

func TestSourceServesLoadedRules(t *testing.T) {
	path := writeRuleFile(t, goodRuleYAML)

	src, err := NewSource(path, nil)
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}
	defer src.Close()

	rules := src.Rules()
	if len(rules) != 2 {
		t.Fatalf("Rules() returned %d rules, want 2", len(rules))
	}

	// The returned slice is a copy; mutating it must not affect the source.
	rules[0].ID = "mutated"
	if src.Rules()[0].ID != "treasury-guard" {
		t.Error("Rules() exposes internal state")
	}
}

func TestSourceReload(t *testing.T) {
	path := writeRuleFile(t, goodRuleYAML)
	src, err := NewSource(path, nil)
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}
	defer src.Close()

	// A bad rewrite keeps the previous rule set.
	if err := os.WriteFile(path, []byte("rules: ["), 0o600); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	src.reload()
	if got := len(src.Rules()); got != 2 {
		t.Errorf("after bad reload len = %d, want previous 2", got)
	}

	// A good rewrite replaces it.
	replacement := `rules:
  - id: only-one
    condition: {type: natural_language, expression: risky launch}
    action: {type: WAIT}
    enabled: true
    priority: 1
`
	if err := os.WriteFile(path, []byte(replacement), 0o600); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	src.reload()
	rules := src.Rules()
	if len(rules) != 1 || rules[0].ID != "only-one" {
		t.Errorf("reload produced %+v", rules)
	}
}
