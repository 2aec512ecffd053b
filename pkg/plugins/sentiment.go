package plugins

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"augur-hq/augur/pkg/analyzer"
)

// Lexicons for the sentiment heuristic. Deliberately small; the goal
// is a usable offline baseline, not NLP.
var (
	positiveWords = map[string]bool{
		"love": true, "excellent": true, "great": true, "good": true,
		"bullish": true, "strong": true, "promising": true, "growth": true,
		"support": true, "approve": true, "gain": true, "up": true,
		"profitable": true, "healthy": true, "win": true,
	}
	negativeWords = map[string]bool{
		"hate": true, "terrible": true, "bad": true, "poor": true,
		"bearish": true, "weak": true, "risky": true, "scam": true,
		"against": true, "reject": true, "loss": true, "down": true,
		"dump": true, "crash": true, "exploit": true, "rug": true,
	}
)

// SentimentAnalyzer scores free text against positive and negative
// lexicons and recommends EXECUTE / WAIT / SKIP accordingly.
type SentimentAnalyzer struct {
	analyzer.Capabilities
}

// NewSentimentAnalyzer returns the built-in sentiment analyzer.
func NewSentimentAnalyzer() *SentimentAnalyzer {
	return &SentimentAnalyzer{
		Capabilities: analyzer.Capabilities{
			Types: []analyzer.AnalysisType{analyzer.TypeSentiment},
		},
	}
}

func (a *SentimentAnalyzer) Name() string    { return "sentiment-basic" }
func (a *SentimentAnalyzer) Version() string { return "1.0.0" }

func (a *SentimentAnalyzer) Metadata() analyzer.PluginMetadata {
	return analyzer.PluginMetadata{
		Author:      "augur",
		Description: "Lexicon-based sentiment scoring over free text",
		Tags:        []string{"builtin", "sentiment"},
	}
}

func (a *SentimentAnalyzer) Analyze(ctx context.Context, req *analyzer.AnalysisRequest) (*analyzer.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	text := req.Text()
	if text == "" {
		return nil, fmt.Errorf("sentiment analysis requires a text input field")
	}

	positive, negative, total := 0, 0, 0
	for _, word := range splitWords(text) {
		total++
		if positiveWords[word] {
			positive++
		}
		if negativeWords[word] {
			negative++
		}
	}

	// Score in [-1,1] from the signed hit balance.
	score := 0.0
	if hits := positive + negative; hits > 0 {
		score = float64(positive-negative) / float64(hits)
	}

	action := analyzer.ActionWait
	switch {
	case score > 0.3:
		action = analyzer.ActionExecute
	case score < -0.3:
		action = analyzer.ActionSkip
	}

	// Confidence grows with the share of words that hit a lexicon.
	coverage := float64(positive+negative) / float64(max(total, 1))
	confidence := analyzer.ClampConfidence(50 + 50*coverage)

	return &analyzer.AnalysisResult{
		Success: true,
		Decision: &analyzer.AIDecision{
			Action:     action,
			Confidence: confidence,
			Reasoning: []string{
				fmt.Sprintf("matched %d positive and %d negative terms over %d words", positive, negative, total),
				fmt.Sprintf("sentiment score %.2f", score),
			},
			Metadata: map[string]any{
				"score":    score,
				"positive": positive,
				"negative": negative,
			},
		},
		ProcessingTime: time.Since(start),
		Provider:       a.Name(),
	}, nil
}

func splitWords(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
