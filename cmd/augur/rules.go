package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"augur-hq/augur/pkg/cli"
	"augur-hq/augur/pkg/rules"
	"augur-hq/augur/pkg/telemetry/logging"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Work with rule files",
}

var rulesLintFlags struct {
	file   string
	dir    string
	format string
}

var rulesLintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate rule files",
	Long: `Validate YAML rule files for syntax and structural errors.

Each file is parsed and every rule checked for a well-formed condition
(type, expression, threshold range), action and priority, and for
duplicate rule ids.

Examples:
  # Lint a single file
  augur rules lint --file rules.yaml

  # Lint a directory
  augur rules lint --dir rules/

  # JSON output for CI
  augur rules lint --file rules.yaml --format json`,
	RunE: runRulesLint,
}

var rulesEvalFlags struct {
	file   string
	input  string
	format string
}

var rulesEvalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate rules against an input",
	Long: `Evaluate a rule file against a JSON input object and print the
combined result (highest priority first, confidence breaking ties).

Examples:
  augur rules eval --file rules.yaml --input '{"text": "urgent treasury drain"}'
  augur rules eval --file rules.yaml --input @input.json`,
	RunE: runRulesEval,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesLintCmd)
	rulesCmd.AddCommand(rulesEvalCmd)

	rulesLintCmd.Flags().StringVarP(&rulesLintFlags.file, "file", "f", "", "rule file to validate")
	rulesLintCmd.Flags().StringVarP(&rulesLintFlags.dir, "dir", "d", "", "directory of rule files")
	rulesLintCmd.Flags().StringVar(&rulesLintFlags.format, "format", "text", "output format: text, json")

	rulesEvalCmd.Flags().StringVarP(&rulesEvalFlags.file, "file", "f", "", "rule file to evaluate")
	rulesEvalCmd.Flags().StringVarP(&rulesEvalFlags.input, "input", "i", "", "JSON input object, or @file")
	rulesEvalCmd.Flags().StringVar(&rulesEvalFlags.format, "format", "json", "output format: text, json")
	_ = rulesEvalCmd.MarkFlagRequired("file")
	_ = rulesEvalCmd.MarkFlagRequired("input")
}

// LintResult is the per-file lint outcome.
type LintResult struct {
	File  string `json:"file"`
	Valid bool   `json:"valid"`
	Rules int    `json:"rules"`
	Error string `json:"error,omitempty"`
}

func runRulesLint(cmd *cobra.Command, args []string) error {
	if rulesLintFlags.file == "" && rulesLintFlags.dir == "" {
		return fmt.Errorf("either --file or --dir must be specified")
	}

	var files []string
	if rulesLintFlags.file != "" {
		files = append(files, rulesLintFlags.file)
	}
	if rulesLintFlags.dir != "" {
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(rulesLintFlags.dir, pattern))
			if err != nil {
				return fmt.Errorf("failed to list rule files: %w", err)
			}
			files = append(files, matches...)
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no rule files found")
	}

	results := make([]LintResult, 0, len(files))
	failed := false
	for _, file := range files {
		result := LintResult{File: file, Valid: true}
		loaded, err := rules.LoadFile(file)
		if err != nil {
			result.Valid = false
			result.Error = err.Error()
			failed = true
		} else {
			result.Rules = len(loaded)
		}
		results = append(results, result)
	}

	if rulesLintFlags.format == "json" {
		formatter := cli.NewFormatter(cli.FormatJSON)
		if err := formatter.FormatTo(os.Stdout, results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Valid {
				fmt.Printf("OK   %s (%d rules)\n", r.File, r.Rules)
			} else {
				fmt.Printf("FAIL %s: %s\n", r.File, r.Error)
			}
		}
	}

	if failed {
		return fmt.Errorf("rule validation failed")
	}
	return nil
}

func runRulesEval(cmd *cobra.Command, args []string) error {
	ruleSet, err := rules.LoadFile(rulesEvalFlags.file)
	if err != nil {
		return err
	}

	raw := rulesEvalFlags.input
	data := []byte(raw)
	if strings.HasPrefix(raw, "@") {
		data, err = os.ReadFile(strings.TrimPrefix(raw, "@"))
		if err != nil {
			return fmt.Errorf("failed to read input file: %w", err)
		}
	}
	var input map[string]any
	if err := json.Unmarshal(data, &input); err != nil {
		return fmt.Errorf("input is not a JSON object: %w", err)
	}

	ruleEngine := rules.NewEngine(logging.Discard())
	evals := ruleEngine.EvaluateAll(context.Background(), ruleSet, input)
	combined := rules.Combine(evals)
	if combined == nil {
		return fmt.Errorf("no rule produced a result")
	}

	formatter := cli.NewFormatter(cli.OutputFormat(rulesEvalFlags.format))
	return formatter.FormatTo(os.Stdout, combined)
}
