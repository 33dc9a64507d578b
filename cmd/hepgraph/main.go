// Package main provides the hepgraph CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Benkendorfer/HEP-paper-graph/internal/config"
	"github.com/Benkendorfer/HEP-paper-graph/internal/logging"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	logJSON     bool
	logLevel    string
	cacheDir    string
)

// Loaded once per invocation by the root PersistentPreRunE.
var (
	cfg    *config.Config
	logger = zerolog.Nop()
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hepgraph",
	Short: "Build citation graphs from INSPIRE-HEP",
	Long: `hepgraph builds a citation graph around a set of seed papers.

Seeds are arXiv identifiers. Their references are looked up on INSPIRE-HEP,
duplicates are merged by record id and citations between the discovered
papers are added in a second pass. Requests are rate limited to stay within
the INSPIRE API limits and responses are cached on disk.

All commands output JSON by default; use --human for readable output.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Write logs to stderr as JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error, disabled")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "Cache directory (overrides config)")
	rootCmd.Version = Version
}

// setup loads .env, the config file and environment, then applies flag
// overrides and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	loaded, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if cacheDir != "" {
		loaded.CacheDir = config.ExpandTilde(cacheDir)
	}
	if logLevel != "" {
		loaded.LogLevel = logLevel
	}
	if err := loaded.Validate(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	cfg = loaded

	logger = logging.New(logging.Options{
		Level: cfg.LogLevel,
		JSON:  logJSON,
	})
	logger.Debug().Str("command", cmd.CommandPath()).Str("config", config.GlobalConfigPath()).Msg("starting")
	return nil
}
