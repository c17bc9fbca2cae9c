package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe the backend liveness endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp := client.Health(cmd.Context())
		if !resp.Success || resp.Data == nil {
			return apiError(resp)
		}
		if output == "json" {
			return printJSON(cmd.OutOrStdout(), resp.Data)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", resp.Data.Status, client.Config().BaseURL)
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective client configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := client.Config()
		if output == "json" {
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"mode":            cfg.Mode,
				"environment":     cfg.Environment,
				"base_url":        cfg.BaseURL,
				"timeout":         cfg.Timeout.String(),
				"max_retries":     cfg.MaxRetries,
				"mocking_enabled": cfg.MockingEnabled,
			})
		}

		printTable(cmd.OutOrStdout(), []string{"SETTING", "VALUE"}, [][]string{
			{"mode", string(cfg.Mode)},
			{"environment", string(cfg.Environment)},
			{"base url", cfg.BaseURL},
			{"timeout", cfg.Timeout.String()},
			{"max retries", fmt.Sprint(cfg.MaxRetries)},
			{"mocking", fmt.Sprint(cfg.MockingEnabled)},
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(configCmd)
}
