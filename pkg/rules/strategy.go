package rules

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"augur-hq/augur/pkg/analyzer"
)

// Outcome is the verdict of one strategy evaluation.
type Outcome struct {
	// Triggered reports whether the condition was met.
	Triggered bool

	// Confidence is the strategy's confidence in the verdict (0-100).
	Confidence float64

	// Reason explains the verdict; for an untriggered condition this
	// is the miss reason surfaced on the SKIP result.
	Reason string
}

// Strategy evaluates one condition type against an analysis input.
type Strategy interface {
	Evaluate(ctx context.Context, cond Condition, input map[string]any) (*Outcome, error)
}

// StrategyFunc adapts a function to the Strategy interface.
type StrategyFunc func(ctx context.Context, cond Condition, input map[string]any) (*Outcome, error)

func (f StrategyFunc) Evaluate(ctx context.Context, cond Condition, input map[string]any) (*Outcome, error) {
	return f(ctx, cond, input)
}

// naturalLanguageThreshold is the keyword overlap fraction at which a
// natural-language condition triggers.
const naturalLanguageThreshold = 0.5

// Default confidences reported by the logical and composite strategies
// when a condition triggers.
const (
	logicalConfidence   = 75
	compositeConfidence = 80
)

// NaturalLanguageStrategy matches by keyword overlap: the fraction of
// the expression's keywords present in the input text must reach 50%.
// Confidence is the overlap fraction scaled to 0-100.
type NaturalLanguageStrategy struct{}

func (NaturalLanguageStrategy) Evaluate(_ context.Context, cond Condition, input map[string]any) (*Outcome, error) {
	keywords := tokenize(cond.Expression)
	if len(keywords) == 0 {
		return nil, fmt.Errorf("expression contains no keywords")
	}

	text, _ := input["text"].(string)
	have := make(map[string]bool)
	for _, w := range tokenize(text) {
		have[w] = true
	}

	matched := 0
	var missing []string
	for _, kw := range keywords {
		if have[kw] {
			matched++
		} else {
			missing = append(missing, kw)
		}
	}

	overlap := float64(matched) / float64(len(keywords))
	out := &Outcome{
		Triggered:  overlap >= naturalLanguageThreshold,
		Confidence: analyzer.ClampConfidence(overlap * 100),
	}
	if out.Triggered {
		out.Reason = fmt.Sprintf("%d/%d keywords matched", matched, len(keywords))
	} else {
		out.Reason = fmt.Sprintf("keyword overlap %.0f%% below 50%% (missing: %s)",
			overlap*100, strings.Join(missing, ", "))
	}
	return out, nil
}

// tokenize lowercases and splits on non-alphanumeric runes, dropping
// words shorter than two runes so articles and punctuation fragments
// do not count as keywords.
func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) >= 2 {
			out = append(out, f)
		}
	}
	return out
}

// LogicalStrategy evaluates expressions of comparisons joined by "&&"
// or "||" (one connective kind per expression). Each comparison is
// "field op literal" where op is one of ==, !=, >=, <=, >, <,
// contains, and field is a dotted path into the input map. A triggered
// condition reports a fixed confidence of 75.
type LogicalStrategy struct{}

func (LogicalStrategy) Evaluate(_ context.Context, cond Condition, input map[string]any) (*Outcome, error) {
	expr := strings.TrimSpace(cond.Expression)
	if strings.Contains(expr, "&&") && strings.Contains(expr, "||") {
		return nil, fmt.Errorf("mixed && and || are not supported: %q", expr)
	}

	clauses := []string{expr}
	all := true
	switch {
	case strings.Contains(expr, "&&"):
		clauses = strings.Split(expr, "&&")
	case strings.Contains(expr, "||"):
		clauses = strings.Split(expr, "||")
		all = false
	}

	triggered := all
	var reason string
	for _, clause := range clauses {
		ok, why, err := evalComparison(strings.TrimSpace(clause), input)
		if err != nil {
			return nil, err
		}
		if all && !ok {
			triggered = false
			reason = why
			break
		}
		if !all && ok {
			triggered = true
			reason = why
			break
		}
	}

	out := &Outcome{Triggered: triggered}
	if triggered {
		out.Confidence = logicalConfidence
		if reason == "" {
			reason = "all clauses satisfied"
		}
		out.Reason = reason
	} else {
		if reason == "" {
			reason = "no clause satisfied"
		}
		out.Reason = reason
	}
	return out, nil
}

var comparisonOps = []string{">=", "<=", "==", "!=", ">", "<", " contains "}

func evalComparison(clause string, input map[string]any) (bool, string, error) {
	for _, op := range comparisonOps {
		idx := strings.Index(clause, op)
		if idx < 0 {
			continue
		}
		field := strings.TrimSpace(clause[:idx])
		literal := strings.Trim(strings.TrimSpace(clause[idx+len(op):]), `"'`)
		if field == "" || literal == "" {
			return false, "", fmt.Errorf("malformed comparison %q", clause)
		}

		value, ok := lookupField(input, field)
		if !ok {
			return false, fmt.Sprintf("field %q not present in input", field), nil
		}
		matched, err := compare(value, strings.TrimSpace(op), literal)
		if err != nil {
			return false, "", fmt.Errorf("comparison %q: %w", clause, err)
		}
		why := fmt.Sprintf("%s %s %s is %t (actual %v)", field, strings.TrimSpace(op), literal, matched, value)
		return matched, why, nil
	}
	return false, "", fmt.Errorf("no comparison operator in clause %q", clause)
}

// lookupField resolves a dotted path through nested maps.
func lookupField(input map[string]any, path string) (any, bool) {
	var current any = input
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func compare(value any, op, literal string) (bool, error) {
	if lit, err := strconv.ParseFloat(literal, 64); err == nil {
		if num, ok := toFloat(value); ok {
			switch op {
			case "==":
				return num == lit, nil
			case "!=":
				return num != lit, nil
			case ">":
				return num > lit, nil
			case ">=":
				return num >= lit, nil
			case "<":
				return num < lit, nil
			case "<=":
				return num <= lit, nil
			}
		}
	}

	actual := fmt.Sprintf("%v", value)
	switch op {
	case "==":
		return strings.EqualFold(actual, literal), nil
	case "!=":
		return !strings.EqualFold(actual, literal), nil
	case "contains":
		return strings.Contains(strings.ToLower(actual), strings.ToLower(literal)), nil
	case ">", ">=", "<", "<=":
		return false, fmt.Errorf("operator %s requires numeric operands, got %q", op, actual)
	}
	return false, fmt.Errorf("unknown operator %q", op)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// CompositeStrategy splits the expression on top-level " AND " / " OR "
// and evaluates each part with the logical strategy when it contains a
// comparison operator, the natural-language strategy otherwise. A
// triggered composite reports a fixed confidence of 80.
type CompositeStrategy struct {
	natural NaturalLanguageStrategy
	logical LogicalStrategy
}

func (s CompositeStrategy) Evaluate(ctx context.Context, cond Condition, input map[string]any) (*Outcome, error) {
	expr := cond.Expression
	if strings.Contains(expr, " AND ") && strings.Contains(expr, " OR ") {
		return nil, fmt.Errorf("mixed AND and OR are not supported: %q", expr)
	}

	parts := []string{expr}
	all := true
	switch {
	case strings.Contains(expr, " AND "):
		parts = strings.Split(expr, " AND ")
	case strings.Contains(expr, " OR "):
		parts = strings.Split(expr, " OR ")
		all = false
	}

	triggered := all
	var reason string
	for _, part := range parts {
		sub := Condition{Expression: strings.TrimSpace(part)}
		var strategy Strategy = s.natural
		if hasComparison(sub.Expression) {
			strategy = s.logical
		}
		out, err := strategy.Evaluate(ctx, sub, input)
		if err != nil {
			return nil, fmt.Errorf("sub-condition %q: %w", sub.Expression, err)
		}
		if all && !out.Triggered {
			triggered = false
			reason = out.Reason
			break
		}
		if !all && out.Triggered {
			triggered = true
			reason = out.Reason
			break
		}
	}

	outcome := &Outcome{Triggered: triggered, Reason: reason}
	if triggered {
		outcome.Confidence = compositeConfidence
		if outcome.Reason == "" {
			outcome.Reason = "all sub-conditions satisfied"
		}
	} else if outcome.Reason == "" {
		outcome.Reason = "no sub-condition satisfied"
	}
	return outcome, nil
}

func hasComparison(expr string) bool {
	for _, op := range comparisonOps {
		if strings.Contains(expr, op) {
			return true
		}
	}
	return false
}
