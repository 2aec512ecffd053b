package plugins

import "augur-hq/augur/pkg/analyzer"

// BuiltIns constructs the core plugin set in registration order:
// sentiment, proposal, market, risk. The engine loads these at
// initialization and pre-seeds them as trusted.
func BuiltIns() []analyzer.Plugin {
	return []analyzer.Plugin{
		NewSentimentAnalyzer(),
		NewProposalAnalyzer(),
		NewMarketAnalyzer(),
		NewRiskAnalyzer(),
	}
}
