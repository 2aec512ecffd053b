// Augur is a pluggable AI analysis engine for governance and market
// decisions.
//
// The augur command is a thin operational surface over the in-process
// engine library, providing:
//   - One-shot analysis requests against the built-in analyzers
//   - Rule-file linting and evaluation
//   - Configuration validation
//
// Usage:
//
//	# Run a one-shot sentiment analysis
//	augur analyze --type sentiment --text "I love this proposal"
//
//	# Analyze structured input from a file
//	augur analyze --type risk --input @transaction.json
//
//	# Validate rule files
//	augur rules lint --file rules.yaml
//
//	# Evaluate rules against an input
//	augur rules eval --file rules.yaml --input @input.json
//
//	# Validate a configuration file
//	augur config validate --config config.yaml
//
//	# Show version information
//	augur version
package main

func main() {
	Execute()
}
