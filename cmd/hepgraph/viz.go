package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Benkendorfer/HEP-paper-graph/internal/viz"
)

var (
	vizInput  string
	vizOutput string
	vizFormat string
	vizLayout string
	vizOpen   bool
)

func init() {
	vizCmd.Flags().StringVarP(&vizInput, "input", "i", "graph.jsonl", "Graph snapshot to render")
	vizCmd.Flags().StringVarP(&vizOutput, "output", "o", "", "Output file path (default: stdout)")
	vizCmd.Flags().StringVar(&vizFormat, "format", "html", "Output format: html or dot")
	vizCmd.Flags().StringVar(&vizLayout, "layout", "force", "Layout algorithm: force, circle, or grid")
	vizCmd.Flags().BoolVar(&vizOpen, "open", false, "Open the written file in the system viewer")
	rootCmd.AddCommand(vizCmd)
}

var vizCmd = &cobra.Command{
	Use:   "viz",
	Short: "Render a citation graph",
	Long: `Render a graph snapshot as interactive HTML or Graphviz DOT.

Node size follows how often a record is cited within the graph, color
follows PageRank centrality and seeds are drawn as stars. Edges point from
the citing record to the cited one.

Examples:
  # Generate HTML to stdout
  hepgraph viz > graph.html

  # Generate to file and open it
  hepgraph viz -i higgs.jsonl -o higgs.html --open

  # Graphviz
  hepgraph viz --format dot | dot -Tsvg > graph.svg`,
	RunE: runViz,
}

func runViz(cmd *cobra.Command, args []string) error {
	db, cleanup := openSnapshot(vizInput, "viz")
	defer cleanup()

	data, err := viz.BuildGraphFromDatabase(db)
	if err != nil {
		exitWithError(ExitError, "reading graph: %v", err)
	}

	var rendered string
	switch vizFormat {
	case "html":
		opts := viz.DefaultOptions()
		opts.Layout = vizLayout
		rendered, err = viz.GenerateHTML(data, opts)
	case "dot":
		rendered, err = viz.GenerateDOT(data)
	default:
		exitWithError(ExitError, "invalid format %q: must be html or dot", vizFormat)
	}
	if err != nil {
		return fmt.Errorf("rendering graph: %w", err)
	}

	if vizOutput == "" {
		fmt.Fprint(stdout, rendered)
		return nil
	}
	if err := os.WriteFile(vizOutput, []byte(rendered), 0644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	if vizOpen {
		if err := viz.Open(vizOutput); err != nil {
			logger.Warn().Err(err).Str("path", vizOutput).Msg("could not open viewer")
		}
	}
	if humanOutput {
		outputHuman("Visualization written to %s\n", vizOutput)
		return nil
	}
	return outputJSON(StatusResponse{Status: "written", Path: vizOutput})
}
