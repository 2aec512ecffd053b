package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"augur-hq/augur/pkg/cli"
	"augur-hq/augur/pkg/config"
	"augur-hq/augur/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "augur",
	Short: "Augur - pluggable AI analysis engine",
	Long: `Augur routes analysis requests to pluggable analyzer components,
enforcing resource and trust boundaries on the plugins and caching and
rate-limiting the resulting decisions.

It provides:
  - Type- and blockchain-aware routing with a two-tier plugin fallback
  - A plugin trust model with validation and sandboxed execution
  - Priority-based rule evaluation and combination
  - Type-aware decision caching and dual-window rate limiting

For more information, visit: https://github.com/augur-hq/augur`,
	Version: Version,
}

// Execute runs the root command, mapping engine errors onto shell
// exit codes.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig resolves the effective configuration: the --config file
// when given, built-in defaults otherwise.
func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(cfgFile)
}

// newLogger builds the command logger from the configuration, raised
// to debug when --verbose is set. Logs go to stderr so stdout stays
// clean for command output.
func newLogger(cfg *config.Config) (*slog.Logger, error) {
	level := cfg.Telemetry.LogLevel
	if verbose {
		level = "debug"
	}
	return logging.New(logging.Config{
		Level:  level,
		Format: cfg.Telemetry.LogFormat,
		Writer: os.Stderr,
	})
}
