package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Benkendorfer/HEP-paper-graph/internal/inspire"
)

var titleNoCache bool

func init() {
	titleCmd.Flags().BoolVar(&titleNoCache, "no-cache", false, "Bypass the title log")
	rootCmd.AddCommand(titleCmd)
}

var titleCmd = &cobra.Command{
	Use:   "title <record-id>",
	Short: "Resolve the title of an INSPIRE record",
	Long: `Resolve the primary title of an INSPIRE record id.

Titles are read from the title log when present; otherwise they are
searched on INSPIRE and appended to the log. A record whose title cannot be
found resolves to "No title".`,
	Args: cobra.ExactArgs(1),
	RunE: runTitle,
}

// TitleResult is the response for the title command.
type TitleResult struct {
	RecordID string `json:"record_id"`
	Title    string `json:"title"`
	Found    bool   `json:"found"`
}

func runTitle(cmd *cobra.Command, args []string) error {
	client := mustNewClient(nil)
	id := args[0]
	title := client.ResolveTitle(context.Background(), id, cfg.UseCache && !titleNoCache)

	if humanOutput {
		outputHuman("%s: %s\n", id, title)
		return nil
	}
	return outputJSON(TitleResult{RecordID: id, Title: title, Found: title != inspire.NoTitle})
}
