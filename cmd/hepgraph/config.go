package main

import (
	"github.com/spf13/cobra"

	"github.com/Benkendorfer/HEP-paper-graph/internal/config"
)

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

// ConfigResponse is the response for config show.
type ConfigResponse struct {
	Path   string         `json:"path"`
	Config *config.Config `json:"config"`
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show the configuration after applying the config file, .env, HEPGRAPH_*
environment variables and flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if humanOutput {
			outputHuman("Config file: %s\n", config.GlobalConfigPath())
			outputHuman("  base_url:        %s\n", cfg.BaseURL)
			outputHuman("  cache_dir:       %s\n", cfg.CacheDir)
			outputHuman("  max_requests:    %d\n", cfg.MaxRequests)
			outputHuman("  time_window:     %s\n", cfg.TimeWindow)
			outputHuman("  request_timeout: %s\n", cfg.RequestTimeout)
			outputHuman("  limiter:         %s\n", cfg.Limiter)
			outputHuman("  use_cache:       %t\n", cfg.UseCache)
			outputHuman("  depth:           %d\n", cfg.Depth)
			outputHuman("  log_level:       %s\n", cfg.LogLevel)
			return nil
		}
		return outputJSON(ConfigResponse{Path: config.GlobalConfigPath(), Config: cfg})
	},
}
