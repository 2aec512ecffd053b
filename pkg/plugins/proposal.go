package plugins

import (
	"context"
	"fmt"
	"time"

	"augur-hq/augur/pkg/analyzer"
)

// Governance red and green flags for the proposal heuristic.
var (
	proposalRedFlags = map[string]string{
		"unlimited": "unbounded spending authority",
		"emergency": "emergency powers requested",
		"bypass":    "bypasses an existing process",
		"immediate": "no timelock or review window",
		"mint":      "token minting authority",
		"upgrade":   "contract upgrade authority",
	}
	proposalGreenFlags = map[string]bool{
		"audit": true, "timelock": true, "multisig": true, "vesting": true,
		"milestone": true, "transparent": true, "cap": true, "quorum": true,
	}
)

// ProposalAnalyzer screens governance proposal text for structural red
// and green flags and recommends delegation when the red flags win.
type ProposalAnalyzer struct {
	analyzer.Capabilities
}

// NewProposalAnalyzer returns the built-in proposal analyzer.
func NewProposalAnalyzer() *ProposalAnalyzer {
	return &ProposalAnalyzer{
		Capabilities: analyzer.Capabilities{
			Types: []analyzer.AnalysisType{analyzer.TypeProposal},
		},
	}
}

func (a *ProposalAnalyzer) Name() string    { return "proposal-screen" }
func (a *ProposalAnalyzer) Version() string { return "1.0.0" }

func (a *ProposalAnalyzer) Metadata() analyzer.PluginMetadata {
	return analyzer.PluginMetadata{
		Author:      "augur",
		Description: "Governance proposal screening by structural red/green flags",
		Tags:        []string{"builtin", "governance"},
	}
}

func (a *ProposalAnalyzer) Analyze(ctx context.Context, req *analyzer.AnalysisRequest) (*analyzer.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	text := req.Text()
	if text == "" {
		return nil, fmt.Errorf("proposal analysis requires a text input field")
	}

	var redReasons []string
	green := 0
	for _, word := range splitWords(text) {
		if reason, ok := proposalRedFlags[word]; ok {
			redReasons = append(redReasons, reason)
		}
		if proposalGreenFlags[word] {
			green++
		}
	}

	level := analyzer.RiskLow
	action := analyzer.ActionExecute
	switch {
	case len(redReasons) >= 2:
		level = analyzer.RiskHigh
		action = analyzer.ActionDelegate
	case len(redReasons) == 1:
		level = analyzer.RiskMedium
		action = analyzer.ActionWait
	}

	// Green flags offset confidence lost to red flags.
	confidence := analyzer.ClampConfidence(70 - 15*float64(len(redReasons)) + 5*float64(green))

	decision := &analyzer.AIDecision{
		Action:     action,
		Confidence: confidence,
		Reasoning: []string{
			fmt.Sprintf("found %d red flags and %d green flags", len(redReasons), green),
		},
		RiskAssessment: &analyzer.RiskAssessment{
			Level:   level,
			Factors: redReasons,
		},
	}
	if action == analyzer.ActionDelegate {
		decision.ExecutionPlan = &analyzer.ExecutionPlan{
			Steps:            []string{"escalate proposal to a human reviewer"},
			RequiresApproval: true,
		}
	}

	return &analyzer.AnalysisResult{
		Success:        true,
		Decision:       decision,
		ProcessingTime: time.Since(start),
		Provider:       a.Name(),
	}, nil
}
