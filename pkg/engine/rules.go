package engine

import (
	"context"

	"augur-hq/augur/pkg/analyzer"
	"augur-hq/augur/pkg/events"
	"augur-hq/augur/pkg/rules"
)

// AnalyzeWithRules evaluates the supplied rules against the input and
// combines their outcomes by priority, then confidence. Individual
// rule failures are logged and excluded; a rule_triggered event fires
// for every rule whose condition matched. When the engine carries a
// standing rule file, those rules are evaluated ahead of the supplied
// ones.
func (e *Engine) AnalyzeWithRules(ctx context.Context, input map[string]any, ruleSet []rules.Rule, reqCtx *analyzer.RequestContext) (*analyzer.AnalysisResult, error) {
	if err := e.requireInitialized(); err != nil {
		return nil, err
	}
	if len(input) == 0 {
		return nil, analyzer.NewError(analyzer.CodeInvalidInput, "engine", "input is empty")
	}

	e.mu.RLock()
	source := e.source
	e.mu.RUnlock()

	var all []rules.Rule
	if source != nil {
		all = append(all, source.Rules()...)
	}
	all = append(all, ruleSet...)
	if len(all) == 0 {
		return nil, analyzer.NewError(analyzer.CodeInvalidInput, "engine", "no rules to evaluate")
	}

	evals := e.rules.EvaluateAll(ctx, all, input)
	for i := range evals {
		ev := &evals[i]
		if !ev.Triggered() {
			continue
		}
		var conf float64
		if ev.Result.Decision != nil {
			conf = ev.Result.Decision.Confidence
		}
		e.publish(events.RuleTriggered, events.RuleTriggeredPayload{
			RuleID:     ev.Rule.ID,
			RuleName:   ev.Rule.Name,
			Action:     ev.Rule.Action.Type,
			Confidence: conf,
		})
	}

	combined := rules.Combine(evals)
	if combined == nil {
		return nil, analyzer.NewError(analyzer.CodeInvalidInput, "engine", "no rule produced a result").
			WithSuggestions("check that at least one rule is enabled and well-formed")
	}
	return combined, nil
}

// StandingRules returns the rules loaded from the configured rule
// file, or nil when none is configured.
func (e *Engine) StandingRules() []rules.Rule {
	e.mu.RLock()
	source := e.source
	e.mu.RUnlock()
	if source == nil {
		return nil
	}
	return source.Rules()
}

// RegisterRuleStrategy installs a custom condition evaluation strategy
// for the given condition type, replacing any existing one.
func (e *Engine) RegisterRuleStrategy(t rules.ConditionType, s rules.Strategy) {
	e.rules.RegisterStrategy(t, s)
}
