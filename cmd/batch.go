/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/moamenhredeen/oastest/internal/config"
)

var batchSettings runSettings

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [config-file]",
	Short: "Test every target of a config file",
	Long: `Test every target listed in a TOML, YAML or JSON config file. Targets run
concurrently; a target that cannot be loaded is reported as skipped without
affecting the others.

Settings may be overridden with OASTEST_ prefixed environment variables,
e.g. OASTEST_CONCURRENCY=4. Command line flags win over both.

Example config:

  concurrency = 8
  timeout = "30s"

  [[targets]]
  name = "petstore"
  path = "tests/pet-store.json"
  server = "http://localhost:8080/v1"
  api_key = "${PETSTORE_API_KEY}"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(args[0])
		if err != nil {
			return err
		}

		if cfg.LogLevel != "" && !cmd.Flags().Changed("log-level") && !viper.IsSet("log_level") {
			if err := setupLogger(cmd.ErrOrStderr(), cfg.LogLevel); err != nil {
				return err
			}
		}

		rs := batchSettings
		if !cmd.Flags().Changed("concurrency") {
			rs.concurrency = cfg.Concurrency
		}
		if !cmd.Flags().Changed("rate") {
			rs.rateLimit = cfg.RateLimit
		}
		if !cmd.Flags().Changed("timeout") {
			rs.timeout = cfg.Timeout
		}

		logger.Info().Str("config", args[0]).Int("targets", len(cfg.Targets)).Msg("starting batch")
		return runTargets(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg.TesterTargets(), rs)
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
	addRunFlags(batchCmd, &batchSettings)
}
