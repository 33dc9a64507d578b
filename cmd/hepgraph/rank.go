package main

import (
	"github.com/spf13/cobra"

	"github.com/Benkendorfer/HEP-paper-graph/internal/storage"
)

var (
	rankInput  string
	rankLimit  int
	rankBy     string
	rankSearch string
)

func init() {
	rankCmd.Flags().StringVarP(&rankInput, "input", "i", "graph.jsonl", "Graph snapshot to rank")
	rankCmd.Flags().IntVarP(&rankLimit, "limit", "n", DefaultRankLimit, "Number of rows (0 for all)")
	rankCmd.Flags().StringVar(&rankBy, "by", string(storage.ByCentrality), "Order by: centrality or parents")
	rankCmd.Flags().StringVar(&rankSearch, "search", "", "Only rank records whose title matches this query")
	rootCmd.AddCommand(rankCmd)
}

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "List the most central records of a graph",
	Long: `Load a graph snapshot into a temporary SQLite database and list its
records ordered by PageRank centrality or by in-graph citation count.

Examples:
  hepgraph rank
  hepgraph rank -i higgs.jsonl -n 50 --by parents
  hepgraph rank --search "dark matter" --human`,
	RunE: runRank,
}

// RankRow is one line of rank output.
type RankRow struct {
	Rank        int     `json:"rank"`
	RecordID    string  `json:"record_id"`
	Title       string  `json:"title"`
	Role        string  `json:"role"`
	ParentCount int     `json:"parent_count"`
	Centrality  float64 `json:"centrality"`
}

func runRank(cmd *cobra.Command, args []string) error {
	db, cleanup := openSnapshot(rankInput, "rank")
	defer cleanup()

	var (
		records []storage.NodeRecord
		err     error
	)
	if rankSearch != "" {
		limit := rankLimit
		if limit <= 0 {
			limit = -1 // SQLite: no limit
		}
		records, err = db.SearchTitle(rankSearch, limit)
	} else {
		records, err = db.Top(storage.RankBy(rankBy), rankLimit)
	}
	if err != nil {
		exitWithError(ExitError, "ranking: %v", err)
	}

	rows := make([]RankRow, 0, len(records))
	for i, r := range records {
		rows = append(rows, RankRow{
			Rank:        i + 1,
			RecordID:    r.RecordID,
			Title:       r.Title,
			Role:        string(r.Role),
			ParentCount: r.ParentCount,
			Centrality:  r.Centrality,
		})
	}

	if humanOutput {
		for _, r := range rows {
			marker := " "
			if r.Role == "seed" {
				marker = "*"
			}
			outputHuman("%3d.%s %-10s %3d  %.4f  %s\n", r.Rank, marker, r.RecordID, r.ParentCount, r.Centrality,
				truncateString(r.Title, ListTitleMaxLen))
		}
		return nil
	}
	return outputJSON(rows)
}
