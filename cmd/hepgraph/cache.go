package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Benkendorfer/HEP-paper-graph/internal/cache"
)

var cacheClearTitles bool

func init() {
	cacheClearCmd.Flags().BoolVar(&cacheClearTitles, "titles", false, "Also delete the title log")
	cacheCmd.AddCommand(cacheListCmd, cacheClearCmd, cacheStatsCmd)
	rootCmd.AddCommand(cacheCmd)
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the response cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached responses",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := cache.NewResponseCache(cfg.CacheDir).List()
		if err != nil {
			exitWithError(ExitError, "listing cache: %v", err)
		}
		if humanOutput {
			for _, e := range entries {
				name := e.URL
				if name == "" {
					name = e.Key
				}
				outputHuman("%8d  %s\n", e.Size, name)
			}
			return nil
		}
		if entries == nil {
			entries = []cache.Entry{}
		}
		return outputJSON(entries)
	},
}

// CacheClearResult is the response for cache clear.
type CacheClearResult struct {
	Removed      int  `json:"removed"`
	TitleLogGone bool `json:"title_log_removed"`
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete cached responses",
	Long: `Delete every cached response. The title log is append-only and is kept
unless --titles is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := cache.NewResponseCache(cfg.CacheDir).Clear()
		if err != nil {
			exitWithError(ExitError, "clearing cache: %v", err)
		}
		result := CacheClearResult{Removed: removed}
		if cacheClearTitles {
			err := os.Remove(cfg.TitleLogPath())
			if err != nil && !os.IsNotExist(err) {
				exitWithError(ExitError, "removing title log: %v", err)
			}
			result.TitleLogGone = err == nil
		}
		logger.Info().Int("removed", removed).Bool("titles", result.TitleLogGone).Msg("cache cleared")

		if humanOutput {
			outputHuman("Removed %d cached responses\n", removed)
			if result.TitleLogGone {
				outputHuman("Removed title log\n")
			}
			return nil
		}
		return outputJSON(result)
	},
}

// CacheStats is the response for cache stats.
type CacheStats struct {
	Dir       string `json:"dir"`
	Responses int    `json:"responses"`
	Bytes     int64  `json:"bytes"`
	Titles    int    `json:"titles"`
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := cache.NewResponseCache(cfg.CacheDir).List()
		if err != nil {
			exitWithError(ExitError, "listing cache: %v", err)
		}
		titles, err := cache.NewTitleLog(cfg.TitleLogPath()).Count()
		if err != nil {
			exitWithError(ExitError, "reading title log: %v", err)
		}

		stats := CacheStats{Dir: cfg.CacheDir, Responses: len(entries), Titles: titles}
		for _, e := range entries {
			stats.Bytes += e.Size
		}

		if humanOutput {
			outputHuman("Cache directory: %s\n", stats.Dir)
			outputHuman("  responses: %d (%d bytes)\n", stats.Responses, stats.Bytes)
			outputHuman("  titles:    %d\n", stats.Titles)
			return nil
		}
		return outputJSON(stats)
	},
}
