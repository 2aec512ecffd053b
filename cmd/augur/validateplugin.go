package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"augur-hq/augur/pkg/cli"
	"augur-hq/augur/pkg/security"
)

var validatePluginFlags struct {
	manifest string
	format   string
}

var validatePluginCmd = &cobra.Command{
	Use:   "validate-plugin",
	Short: "Validate a plugin manifest against the security policy",
	Long: `Check a plugin manifest file against the configured security policy
and print the validation result: violations, warnings and
recommendations.

Examples:
  augur validate-plugin --manifest plugin.yaml
  augur validate-plugin --manifest plugin.yaml -c production.yaml --format text`,
	RunE: runValidatePlugin,
}

func init() {
	rootCmd.AddCommand(validatePluginCmd)

	validatePluginCmd.Flags().StringVarP(&validatePluginFlags.manifest, "manifest", "m", "", "plugin manifest file (YAML)")
	validatePluginCmd.Flags().StringVar(&validatePluginFlags.format, "format", "json", "output format: text, json")
	_ = validatePluginCmd.MarkFlagRequired("manifest")
}

func runValidatePlugin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	manifest, err := security.LoadManifest(validatePluginFlags.manifest)
	if err != nil {
		return cli.NewCommandError("validate-plugin", err)
	}

	validator := security.NewValidator(cfg.Security.Policy(), logger)
	result := validator.ValidateManifest(manifest)

	formatter := cli.NewFormatter(cli.OutputFormat(validatePluginFlags.format))
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}
	if !result.IsValid {
		return cli.NewCommandError("validate-plugin",
			fmt.Errorf("manifest %s failed validation", validatePluginFlags.manifest))
	}
	return nil
}
