package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"augur-hq/augur/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Work with configuration files",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load the configuration file given with --config, apply defaults and
environment overrides, and report the first validation problem.

Example:
  augur config validate --config config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile == "" {
			return fmt.Errorf("--config must be specified")
		}
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		fmt.Printf("OK   %s (environment: %s)\n", cfgFile, cfg.Environment)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the effective configuration after defaults and AUGUR_*
environment overrides, as YAML. Without --config the built-in defaults
are shown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return yaml.NewEncoder(os.Stdout).Encode(cfg)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
}
