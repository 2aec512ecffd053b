package plugins

import (
	"context"
	"fmt"
	"strings"
	"time"

	"augur-hq/augur/pkg/analyzer"
)

// MarketAnalyzer scores structured market inputs (trend, volatility,
// volume change) into an act/wait recommendation.
type MarketAnalyzer struct {
	analyzer.Capabilities
}

// NewMarketAnalyzer returns the built-in market analyzer.
func NewMarketAnalyzer() *MarketAnalyzer {
	return &MarketAnalyzer{
		Capabilities: analyzer.Capabilities{
			Types: []analyzer.AnalysisType{analyzer.TypeMarket, analyzer.TypeTransaction},
		},
	}
}

func (a *MarketAnalyzer) Name() string    { return "market-pulse" }
func (a *MarketAnalyzer) Version() string { return "1.1.0" }

func (a *MarketAnalyzer) Metadata() analyzer.PluginMetadata {
	return analyzer.PluginMetadata{
		Author:      "augur",
		Description: "Trend and volatility scoring over structured market inputs",
		Tags:        []string{"builtin", "market"},
	}
}

func (a *MarketAnalyzer) Analyze(ctx context.Context, req *analyzer.AnalysisRequest) (*analyzer.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	if len(req.Input) == 0 {
		return nil, fmt.Errorf("market analysis requires structured input fields")
	}

	score := 0.0
	var reasoning []string

	trend, _ := req.Input["trend"].(string)
	switch strings.ToLower(trend) {
	case "bullish", "up":
		score += 1
		reasoning = append(reasoning, "trend is bullish")
	case "bearish", "down":
		score -= 1
		reasoning = append(reasoning, "trend is bearish")
	}

	if volatility, ok := asFloat(req.Input["volatility"]); ok {
		if volatility > 0.5 {
			score -= 1
			reasoning = append(reasoning, fmt.Sprintf("volatility %.2f above 0.50", volatility))
		} else {
			reasoning = append(reasoning, fmt.Sprintf("volatility %.2f acceptable", volatility))
		}
	}

	if volumeChange, ok := asFloat(req.Input["volume_change"]); ok {
		if volumeChange > 0 {
			score += 0.5
			reasoning = append(reasoning, fmt.Sprintf("volume up %.0f%%", volumeChange*100))
		} else if volumeChange < -0.25 {
			score -= 0.5
			reasoning = append(reasoning, fmt.Sprintf("volume down %.0f%%", -volumeChange*100))
		}
	}

	action := analyzer.ActionWait
	switch {
	case score >= 1:
		action = analyzer.ActionExecute
	case score <= -1:
		action = analyzer.ActionSkip
	}
	if len(reasoning) == 0 {
		reasoning = append(reasoning, "no recognized market signals in input")
	}

	// Anchor at 55 and reward signal strength.
	confidence := analyzer.ClampConfidence(55 + 15*abs(score))

	return &analyzer.AnalysisResult{
		Success: true,
		Decision: &analyzer.AIDecision{
			Action:     action,
			Confidence: confidence,
			Reasoning:  reasoning,
			Metadata:   map[string]any{"score": score},
		},
		ProcessingTime: time.Since(start),
		Provider:       a.Name(),
	}, nil
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
