package plugins

import (
	"context"
	"fmt"
	"time"

	"augur-hq/augur/pkg/analyzer"
)

// RiskAnalyzer grades operation risk from structured inputs: amount at
// stake, protocol audit status, and caller-declared risk factors.
type RiskAnalyzer struct {
	analyzer.Capabilities

	// HighValueThreshold is the amount above which an operation is
	// treated as high-value. Defaults to 100000.
	HighValueThreshold float64
}

// NewRiskAnalyzer returns the built-in risk analyzer.
func NewRiskAnalyzer() *RiskAnalyzer {
	return &RiskAnalyzer{
		Capabilities: analyzer.Capabilities{
			Types: []analyzer.AnalysisType{analyzer.TypeRisk, analyzer.TypeTransaction},
		},
		HighValueThreshold: 100000,
	}
}

func (a *RiskAnalyzer) Name() string    { return "risk-grade" }
func (a *RiskAnalyzer) Version() string { return "1.0.0" }

func (a *RiskAnalyzer) Metadata() analyzer.PluginMetadata {
	return analyzer.PluginMetadata{
		Author:      "augur",
		Description: "Risk grading from amount, audit status and declared factors",
		Tags:        []string{"builtin", "risk"},
	}
}

func (a *RiskAnalyzer) Analyze(ctx context.Context, req *analyzer.AnalysisRequest) (*analyzer.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	if len(req.Input) == 0 {
		return nil, fmt.Errorf("risk analysis requires structured input fields")
	}

	points := 0
	var factors []string

	if amount, ok := asFloat(req.Input["amount"]); ok && amount >= a.HighValueThreshold {
		points += 2
		factors = append(factors, fmt.Sprintf("amount %.0f at or above high-value threshold", amount))
	}
	if audited, ok := req.Input["audited"].(bool); ok && !audited {
		points += 2
		factors = append(factors, "protocol is unaudited")
	}
	if declared, ok := req.Input["risk_factors"].([]any); ok {
		for _, f := range declared {
			if s, ok := f.(string); ok && s != "" {
				points++
				factors = append(factors, s)
			}
		}
	}

	level := analyzer.RiskLow
	action := analyzer.ActionExecute
	switch {
	case points >= 5:
		level = analyzer.RiskCritical
		action = analyzer.ActionSkip
	case points >= 3:
		level = analyzer.RiskHigh
		action = analyzer.ActionDelegate
	case points >= 1:
		level = analyzer.RiskMedium
		action = analyzer.ActionWait
	}

	mitigations := []string(nil)
	if level != analyzer.RiskLow {
		mitigations = append(mitigations, "reduce position size", "require a second reviewer")
	}

	return &analyzer.AnalysisResult{
		Success: true,
		Decision: &analyzer.AIDecision{
			Action:     action,
			Confidence: analyzer.ClampConfidence(90 - 10*float64(points)),
			Reasoning: []string{
				fmt.Sprintf("accumulated %d risk points across %d factors", points, len(factors)),
			},
			RiskAssessment: &analyzer.RiskAssessment{
				Level:       level,
				Factors:     factors,
				Mitigations: mitigations,
			},
		},
		ProcessingTime: time.Since(start),
		Provider:       a.Name(),
	}, nil
}
