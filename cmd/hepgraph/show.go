package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/Benkendorfer/HEP-paper-graph/internal/storage"
)

var showInput string

func init() {
	showCmd.Flags().StringVarP(&showInput, "input", "i", "graph.jsonl", "Graph snapshot to query")
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <record-id>",
	Short: "Show one record of a graph and its citations",
	Long: `Load a graph snapshot and print one record: its title, role and
centrality, the records citing it and the records it cites.

Examples:
  hepgraph show 2712345
  hepgraph show 2712345 -i higgs.jsonl --human`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

// ShowResult is the response for the show command.
type ShowResult struct {
	Record     storage.NodeRecord `json:"record"`
	Cites      []string           `json:"cites"`
	GraphNodes int                `json:"graph_nodes"`
	GraphEdges int                `json:"graph_edges"`
}

func runShow(cmd *cobra.Command, args []string) error {
	db, cleanup := openSnapshot(showInput, "show")
	defer cleanup()

	id := strings.TrimSpace(args[0])
	rec, err := db.GetByID(id)
	if err != nil {
		exitWithError(ExitError, "looking up %s: %v", id, err)
	}
	if rec == nil {
		exitWithError(ExitNotFound, "record %s is not in %s", id, showInput)
	}

	res, err := describeRecord(db, rec)
	if err != nil {
		exitWithError(ExitError, "querying graph: %v", err)
	}

	if humanOutput {
		outputHuman("%s  %s\n", res.Record.RecordID, res.Record.Title)
		outputHuman("  role:       %s\n", res.Record.Role)
		outputHuman("  centrality: %.4f\n", res.Record.Centrality)
		outputHuman("  cited by:   %d %s\n", len(res.Record.Parents), strings.Join(res.Record.Parents, " "))
		outputHuman("  cites:      %d %s\n", len(res.Cites), strings.Join(res.Cites, " "))
		outputHuman("  graph:      %d records, %d citations\n", res.GraphNodes, res.GraphEdges)
		return nil
	}
	return outputJSON(res)
}

// describeRecord gathers the show output for rec from db.
func describeRecord(db *storage.DB, rec *storage.NodeRecord) (ShowResult, error) {
	res := ShowResult{Record: *rec}
	if res.Record.Parents == nil {
		res.Record.Parents = []string{}
	}

	var err error
	if res.Cites, err = db.Cited(rec.RecordID); err != nil {
		return res, err
	}
	if res.Cites == nil {
		res.Cites = []string{}
	}
	if res.GraphNodes, err = db.Count(); err != nil {
		return res, err
	}
	if res.GraphEdges, err = db.CountCitations(); err != nil {
		return res, err
	}
	return res, nil
}
