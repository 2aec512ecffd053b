package main

import (
	"os"

	"github.com/spf13/cobra"

	"augur-hq/augur/pkg/cli"
	"augur-hq/augur/pkg/engine"
)

var statusFormat string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show engine status",
	Long: `Initialize the engine from the effective configuration and print a
status snapshot: environment, loaded plugins, cache size, learning
data points and rate limiter state.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVar(&statusFormat, "format", "json", "output format: text, json")
}

func runStatus(cmd *cobra.Command, args []string) error {
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
		return cli.NewCommandError("status", err)
	}
	defer func() { _ = eng.Shutdown() }()

	formatter := cli.NewFormatter(cli.OutputFormat(statusFormat))
	return formatter.FormatTo(os.Stdout, eng.Status(ctx))
}
