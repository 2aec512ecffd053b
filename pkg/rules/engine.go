package rules

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"augur-hq/augur/pkg/analyzer"
)

// Evaluation pairs a rule with the result its evaluation produced.
// A nil Result means the evaluation failed and was excluded.
type Evaluation struct {
	Rule   Rule
	Result *analyzer.AnalysisResult

	// Err holds the evaluation failure, if any.
	Err error
}

// Triggered reports whether the rule's condition was met and produced
// a successful result.
func (e *Evaluation) Triggered() bool {
	return e.Err == nil && e.Result != nil && e.Result.Success
}

// Engine evaluates rule sets. Strategies are keyed by condition type
// and can be replaced or extended at runtime.
type Engine struct {
	mu         sync.RWMutex
	strategies map[ConditionType]Strategy
	logger     *slog.Logger
	now        func() time.Time
}

// NewEngine returns an Engine with the built-in strategies registered.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		strategies: map[ConditionType]Strategy{
			ConditionNaturalLanguage: NaturalLanguageStrategy{},
			ConditionLogical:         LogicalStrategy{},
			ConditionComposite:       CompositeStrategy{},
		},
		logger: logger.With("component", "rules"),
		now:    time.Now,
	}
}

// RegisterStrategy installs a strategy for a condition type, replacing
// any existing one.
func (e *Engine) RegisterStrategy(t ConditionType, s Strategy) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.strategies[t] = s
}

func (e *Engine) strategy(t ConditionType) (Strategy, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.strategies[t]
	return s, ok
}

// EvaluateRule evaluates a single rule against an input.
//
// A met condition (at or above the rule's confidence threshold) yields
// a successful result carrying the rule's action. An unmet condition
// yields an explicit SKIP result with the miss reason, so callers can
// distinguish "evaluated and declined" from "never ran".
func (e *Engine) EvaluateRule(ctx context.Context, rule Rule, input map[string]any) (*analyzer.AnalysisResult, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	strategy, ok := e.strategy(rule.Condition.Type)
	if !ok {
		return nil, fmt.Errorf("rule %s: no strategy for condition type %q", rule.ID, rule.Condition.Type)
	}

	start := e.now()
	outcome, err := strategy.Evaluate(ctx, rule.Condition, input)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", rule.ID, err)
	}

	triggered := outcome.Triggered
	if threshold := rule.Condition.ConfidenceThreshold; triggered && threshold > 0 && outcome.Confidence < threshold {
		triggered = false
		outcome.Reason = fmt.Sprintf("confidence %.0f below rule threshold %.0f", outcome.Confidence, threshold)
	}

	elapsed := e.now().Sub(start)
	if !triggered {
		return &analyzer.AnalysisResult{
			Success: false,
			Decision: &analyzer.AIDecision{
				Action:     analyzer.ActionSkip,
				Confidence: analyzer.ClampConfidence(outcome.Confidence),
				Reasoning:  []string{outcome.Reason},
				Metadata:   map[string]any{"rule_id": rule.ID},
			},
			Error:          outcome.Reason,
			ProcessingTime: elapsed,
			Provider:       "rules",
		}, nil
	}

	decision := &analyzer.AIDecision{
		Action:     rule.Action.Type,
		Confidence: analyzer.ClampConfidence(outcome.Confidence),
		Reasoning:  []string{outcome.Reason},
		Metadata: map[string]any{
			"rule_id":   rule.ID,
			"rule_name": rule.Name,
		},
	}
	if len(rule.Action.Parameters) > 0 {
		decision.Metadata["parameters"] = rule.Action.Parameters
	}
	if rule.Action.ConfirmationRequired {
		decision.ExecutionPlan = &analyzer.ExecutionPlan{RequiresApproval: true}
	}

	return &analyzer.AnalysisResult{
		Success:        true,
		Decision:       decision,
		ProcessingTime: elapsed,
		Provider:       "rules",
	}, nil
}

// EvaluateAll evaluates every enabled rule. Disabled rules are skipped
// entirely; a rule whose evaluation fails is logged and carried as a
// failed Evaluation so callers can still count it.
func (e *Engine) EvaluateAll(ctx context.Context, ruleSet []Rule, input map[string]any) []Evaluation {
	evals := make([]Evaluation, 0, len(ruleSet))
	for _, rule := range ruleSet {
		if !rule.Enabled {
			continue
		}
		result, err := e.EvaluateRule(ctx, rule, input)
		if err != nil {
			e.logger.Warn("rule evaluation failed", "rule", rule.ID, "error", err)
			evals = append(evals, Evaluation{Rule: rule, Err: err})
			continue
		}
		evals = append(evals, Evaluation{Rule: rule, Result: result})
	}
	return evals
}

// Combine folds per-rule evaluations into one result.
//
// Successful results are sorted by rule priority descending, then
// decision confidence descending, and the top one wins. When no rule
// succeeded, the first raw result (in rule order) is returned so the
// caller still sees a concrete miss reason. Failed evaluations never
// participate.
func Combine(evals []Evaluation) *analyzer.AnalysisResult {
	var successful []Evaluation
	var firstRaw *analyzer.AnalysisResult
	for _, ev := range evals {
		if ev.Err != nil || ev.Result == nil {
			continue
		}
		if firstRaw == nil {
			firstRaw = ev.Result
		}
		if ev.Result.Success {
			successful = append(successful, ev)
		}
	}

	if len(successful) == 0 {
		return firstRaw
	}

	sort.SliceStable(successful, func(i, j int) bool {
		if successful[i].Rule.Priority != successful[j].Rule.Priority {
			return successful[i].Rule.Priority > successful[j].Rule.Priority
		}
		return confidence(successful[i].Result) > confidence(successful[j].Result)
	})
	return successful[0].Result
}

func confidence(r *analyzer.AnalysisResult) float64 {
	if r.Decision == nil {
		return 0
	}
	return r.Decision.Confidence
}
