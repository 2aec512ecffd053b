package rules

import (
	"fmt"

	"augur-hq/augur/pkg/analyzer"
)

// ConditionType selects the evaluation strategy for a rule condition.
type ConditionType string

const (
	// ConditionNaturalLanguage matches by keyword overlap between the
	// condition expression and the input text.
	ConditionNaturalLanguage ConditionType = "natural_language"

	// ConditionLogical evaluates a field/operator expression against
	// the structured input.
	ConditionLogical ConditionType = "logical"

	// ConditionComposite combines sub-expressions with AND/OR.
	ConditionComposite ConditionType = "composite"
)

// Condition is the trigger side of a rule.
type Condition struct {
	Type       ConditionType `json:"type" yaml:"type"`
	Expression string        `json:"expression" yaml:"expression"`

	// ConfidenceThreshold is the minimum confidence (0-100) the
	// strategy must report for the rule to trigger. Zero means any
	// triggered evaluation counts.
	ConfidenceThreshold float64 `json:"confidence_threshold,omitempty" yaml:"confidence_threshold,omitempty"`
}

// Action is the consequence side of a rule.
type Action struct {
	Type       analyzer.ActionType `json:"type" yaml:"type"`
	Parameters map[string]any      `json:"parameters,omitempty" yaml:"parameters,omitempty"`

	// ConfirmationRequired marks actions that need human approval
	// before execution.
	ConfirmationRequired bool `json:"confirmation_required,omitempty" yaml:"confirmation_required,omitempty"`
}

// Rule is one user-supplied condition/action pair.
type Rule struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Condition Condition `json:"condition" yaml:"condition"`
	Action    Action    `json:"action" yaml:"action"`
	Enabled   bool      `json:"enabled" yaml:"enabled"`

	// Priority orders combined results; higher wins.
	Priority int `json:"priority" yaml:"priority"`
}

// Validate reports the first structural problem with the rule.
func (r *Rule) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("rule has no id")
	}
	switch r.Condition.Type {
	case ConditionNaturalLanguage, ConditionLogical, ConditionComposite:
	case "":
		return fmt.Errorf("rule %s: condition type is required", r.ID)
	default:
		// Unknown types are allowed when a custom strategy is
		// registered; the engine rejects them at evaluation time
		// otherwise.
	}
	if r.Condition.Expression == "" {
		return fmt.Errorf("rule %s: condition expression is required", r.ID)
	}
	if r.Action.Type == "" {
		return fmt.Errorf("rule %s: action type is required", r.ID)
	}
	if t := r.Condition.ConfidenceThreshold; t < 0 || t > 100 {
		return fmt.Errorf("rule %s: confidence_threshold %v outside [0,100]", r.ID, t)
	}
	return nil
}
