package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Benkendorfer/HEP-paper-graph/internal/graph"
	"github.com/Benkendorfer/HEP-paper-graph/internal/metrics"
	"github.com/Benkendorfer/HEP-paper-graph/internal/pdf"
	"github.com/Benkendorfer/HEP-paper-graph/internal/storage"
)

var (
	buildSeedPDFs []string
	buildNoCache  bool
	buildDepth    int
	buildOutput   string
)

func init() {
	buildCmd.Flags().StringArrayVar(&buildSeedPDFs, "seed-pdf", nil, "Read a seed arXiv id from a PDF (repeatable)")
	buildCmd.Flags().BoolVar(&buildNoCache, "no-cache", false, "Bypass the response and title caches")
	buildCmd.Flags().IntVar(&buildDepth, "depth", 0, "Reference levels to expand (default from config)")
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "graph.jsonl", "Graph snapshot output path")
	rootCmd.AddCommand(buildCmd)
}

var buildCmd = &cobra.Command{
	Use:   "build [arxiv-id...]",
	Short: "Build a citation graph from seed papers",
	Long: `Build a citation graph from seed papers and write it as a JSONL snapshot.

Each seed is looked up by arXiv id. Its references that link to INSPIRE
records become nodes; duplicates are merged and every non-seed node is then
checked for citations to the other nodes.

Examples:
  hepgraph build 2312.03797
  hepgraph build 2312.03797 arXiv:1207.7214 -o higgs.jsonl
  hepgraph build --seed-pdf paper.pdf --depth 2`,
	RunE: runBuild,
}

// BuildResult is the response for the build command.
type BuildResult struct {
	Output  string           `json:"output"`
	Seeds   []string         `json:"seeds"`
	Stats   graph.Stats      `json:"stats"`
	Metrics []metrics.Sample `json:"metrics"`
}

func runBuild(cmd *cobra.Command, args []string) error {
	seeds := args
	for _, path := range buildSeedPDFs {
		id, err := pdf.ExtractArXivID(path)
		if err != nil {
			exitWithError(ExitDataError, "reading %s: %v", path, err)
		}
		if id == "" {
			exitWithError(ExitDataError, "no arXiv identifier found in %s", path)
		}
		logger.Info().Str("pdf", path).Str("seed", id).Msg("seed from PDF")
		seeds = append(seeds, id)
	}
	seeds = normalizeSeeds(seeds)
	if len(seeds) == 0 {
		exitWithError(ExitError, "no seeds given: pass arXiv ids or --seed-pdf")
	}

	depth := cfg.Depth
	if cmd.Flags().Changed("depth") {
		depth = buildDepth
	}
	if depth <= 0 {
		exitWithError(ExitError, "--depth must be positive")
	}

	m := metrics.New()
	client := mustNewClient(m)
	builder := graph.NewBuilder(client,
		graph.WithCache(cfg.UseCache && !buildNoCache),
		graph.WithDepth(depth),
		graph.WithLogger(logger),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g, stats, err := builder.Build(ctx, seeds)
	if err != nil {
		exitWithError(exitCodeFor(err), "building graph: %v", err)
	}

	if err := storage.WriteGraph(buildOutput, g); err != nil {
		exitWithError(ExitError, "writing graph: %v", err)
	}

	samples, err := m.Snapshot()
	if err != nil {
		logger.Warn().Err(err).Msg("gathering metrics failed")
	}

	if humanOutput {
		outputHuman("Wrote %d nodes to %s\n", stats.Nodes, buildOutput)
		outputHuman("  seeds:          %d of %d\n", stats.SeedsIngested, stats.SeedsRequested)
		outputHuman("  candidates:     %d\n", stats.Candidates)
		outputHuman("  citation edges: %d\n", stats.CitationEdges)
		outputHuman("  failed fetches: %d\n", stats.FailedFetches)
		for _, s := range samples {
			outputHuman("  %s%s: %g\n", s.Name, formatLabels(s.Labels), s.Value)
		}
		return nil
	}
	return outputJSON(BuildResult{
		Output:  buildOutput,
		Seeds:   seeds,
		Stats:   stats,
		Metrics: samples,
	})
}

func formatLabels(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, labels[k]))
	}
	return "{" + strings.Join(pairs, ",") + "}"
}
