package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"augur-hq/augur/pkg/analyzer"
	"augur-hq/augur/pkg/cli"
	"augur-hq/augur/pkg/engine"
)

var analyzeFlags struct {
	analysisType string
	text         string
	input        string
	blockchain   string
	protocol     string
	timeframe    string
	user         string
	priority     string
	fallback     string
	noCache      bool
	format       string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a one-shot analysis request",
	Long: `Run a single analysis request through the engine and print the result.

The input is either free-form text (--text) or a JSON object (--input),
where --input accepts an inline JSON string or @file to read from a file.

Examples:
  # Sentiment analysis over free-form text
  augur analyze --type sentiment --text "I love this proposal"

  # Risk analysis over structured input
  augur analyze --type risk --input '{"amount": 250000, "audited": false}'

  # Structured input from a file, restricted to a blockchain
  augur analyze --type transaction --input @tx.json --blockchain ethereum

  # Degrade to a canned decision when analysis fails
  augur analyze --type market --input @market.json --fallback basic`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeFlags.analysisType, "type", "t", "", "analysis type: proposal, sentiment, market, transaction, risk")
	analyzeCmd.Flags().StringVar(&analyzeFlags.text, "text", "", "free-form text input")
	analyzeCmd.Flags().StringVarP(&analyzeFlags.input, "input", "i", "", "JSON input object, or @file")
	analyzeCmd.Flags().StringVar(&analyzeFlags.blockchain, "blockchain", "", "restrict routing to plugins supporting this blockchain")
	analyzeCmd.Flags().StringVar(&analyzeFlags.protocol, "protocol", "", "protocol under analysis")
	analyzeCmd.Flags().StringVar(&analyzeFlags.timeframe, "timeframe", "", "analysis horizon, e.g. 24h")
	analyzeCmd.Flags().StringVar(&analyzeFlags.user, "user", "", "user id for learning attribution")
	analyzeCmd.Flags().StringVar(&analyzeFlags.priority, "priority", "", "request priority: low, medium, high")
	analyzeCmd.Flags().StringVar(&analyzeFlags.fallback, "fallback", "", "fallback strategy: basic, cache, skip")
	analyzeCmd.Flags().BoolVar(&analyzeFlags.noCache, "no-cache", false, "bypass the decision cache")
	analyzeCmd.Flags().StringVar(&analyzeFlags.format, "format", "json", "output format: text, json")

	_ = analyzeCmd.MarkFlagRequired("type")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	input, err := parseInput()
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	eng, err := engine.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	if err := eng.Initialize(ctx); err != nil {
		return err
	}
	defer func() { _ = eng.Shutdown() }()

	var reqCtx *analyzer.RequestContext
	if analyzeFlags.blockchain != "" || analyzeFlags.protocol != "" ||
		analyzeFlags.timeframe != "" || analyzeFlags.user != "" {
		reqCtx = &analyzer.RequestContext{
			Blockchain: analyzeFlags.blockchain,
			Protocol:   analyzeFlags.protocol,
			Timeframe:  analyzeFlags.timeframe,
			UserID:     analyzeFlags.user,
		}
	}

	opts := &analyzer.RequestOptions{
		Priority:         analyzer.Priority(analyzeFlags.priority),
		FallbackStrategy: analyzer.FallbackStrategy(analyzeFlags.fallback),
	}
	if analyzeFlags.noCache {
		off := false
		opts.Caching = &off
	}

	result, err := eng.Analyze(ctx, analyzer.AnalysisType(analyzeFlags.analysisType), input, reqCtx, opts)
	if err != nil {
		return cli.NewCommandError("analyze", err)
	}

	formatter := cli.NewFormatter(cli.OutputFormat(analyzeFlags.format))
	return formatter.FormatTo(os.Stdout, result)
}

// parseInput builds the request input from --text and --input.
func parseInput() (map[string]any, error) {
	input := map[string]any{}

	if raw := analyzeFlags.input; raw != "" {
		data := []byte(raw)
		if strings.HasPrefix(raw, "@") {
			var err error
			data, err = os.ReadFile(strings.TrimPrefix(raw, "@"))
			if err != nil {
				return nil, fmt.Errorf("failed to read input file: %w", err)
			}
		}
		if err := json.Unmarshal(data, &input); err != nil {
			return nil, fmt.Errorf("input is not a JSON object: %w", err)
		}
	}
	if analyzeFlags.text != "" {
		input["text"] = analyzeFlags.text
	}
	if len(input) == 0 {
		return nil, fmt.Errorf("either --text or --input must be specified")
	}
	return input, nil
}
