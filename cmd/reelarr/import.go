package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	importCmd := &cobra.Command{
		Use:   "import <query>",
		Short: "Import media from the archive",
		Long: `Searches the archive for items matching the query, picks the best
playable file for each, and adds them to the catalog.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	importCmd.Flags().IntP("limit", "l", 5, "Maximum number of items to import (1-50)")
	importCmd.Flags().StringP("kind", "k", "movie", "Content kind: movie or series")
	importCmd.Flags().Bool("allow-secondary", false, "Accept non-mp4 containers when no mp4 exists")
	importCmd.Flags().String("series-title", "", "Series title (required for series imports)")
	importCmd.Flags().Int("season", 0, "Season number for series imports")
	importCmd.Flags().Int("start-episode", 0, "Episode number assigned to the first item")

	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	kind, _ := cmd.Flags().GetString("kind")
	allowSecondary, _ := cmd.Flags().GetBool("allow-secondary")
	seriesTitle, _ := cmd.Flags().GetString("series-title")
	season, _ := cmd.Flags().GetInt("season")
	startEpisode, _ := cmd.Flags().GetInt("start-episode")

	req := &ImportRequest{
		Query:                   strings.Join(args, " "),
		Limit:                   limit,
		Kind:                    kind,
		AllowSecondaryContainer: allowSecondary,
		SeriesTitle:             seriesTitle,
		SeasonNumber:            season,
		StartEpisodeNumber:      startEpisode,
	}

	client := NewClient(serverURL)
	resp, err := client.Import(req)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(resp)
		return nil
	}

	printImportHuman(resp)
	return nil
}

func printImportHuman(r *ImportResponse) {
	fmt.Printf("Imported %d, updated %d, skipped %d, failed %d (of %d)\n\n",
		r.Summary.Imported, r.Summary.Updated, r.Summary.Skipped, r.Summary.Failed, r.Summary.Requested)

	if len(r.Results) == 0 {
		fmt.Println("No items matched the query.")
		return
	}

	fmt.Printf("  %-10s %-40s %s\n", "STATUS", "TITLE", "DETAIL")
	fmt.Println("  " + strings.Repeat("-", 80))
	for _, item := range r.Results {
		title := item.Title
		if title == "" {
			title = item.ExternalID
		}
		if len(title) > 40 {
			title = title[:37] + "..."
		}

		detail := item.FileName
		if item.Reason != "" {
			detail = item.Reason
		}
		fmt.Printf("  %-10s %-40s %s\n", item.Status, title, detail)
	}
}
