package main

import (
	"os"
	"strings"

	"github.com/Benkendorfer/HEP-paper-graph/internal/cache"
	"github.com/Benkendorfer/HEP-paper-graph/internal/inspire"
	"github.com/Benkendorfer/HEP-paper-graph/internal/metrics"
	"github.com/Benkendorfer/HEP-paper-graph/internal/ratelimit"
)

// mustNewClient wires the limiter, caches and metrics into an INSPIRE client.
// m may be nil.
func mustNewClient(m *metrics.Metrics) *inspire.Client {
	if err := os.MkdirAll(cfg.CacheDir, 0755); err != nil {
		exitWithError(ExitConfigError, "creating cache directory: %v", err)
	}

	gateOpts := []ratelimit.Option{ratelimit.WithLogger(logger)}
	if m != nil {
		gateOpts = append(gateOpts, ratelimit.WithWaitObserver(m.ObserveWait))
	}
	gate, err := ratelimit.New(cfg.Limiter, cfg.MaxRequests, cfg.TimeWindow, gateOpts...)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	opts := []inspire.ClientOption{
		inspire.WithBaseURL(cfg.BaseURL),
		inspire.WithTimeout(cfg.RequestTimeout),
		inspire.WithGate(gate),
		inspire.WithResponseCache(cache.NewResponseCache(cfg.CacheDir)),
		inspire.WithTitleLog(cache.NewTitleLog(cfg.TitleLogPath())),
		inspire.WithLogger(logger),
	}
	if m != nil {
		opts = append(opts, inspire.WithMetrics(m))
	}
	return inspire.NewClient(opts...)
}

// normalizeSeeds strips an "arXiv:" prefix and drops blanks and repeats,
// keeping first-appearance order.
func normalizeSeeds(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	var out []string
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if len(s) > 6 && strings.EqualFold(s[:6], "arxiv:") {
			s = strings.TrimSpace(s[6:])
		}
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
