package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse the media catalog",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog entries",
		RunE:  runCatalogList,
	}

	listCmd.Flags().StringP("kind", "k", "", "Filter by kind (movie, series)")
	listCmd.Flags().StringP("query", "q", "", "Filter by title substring")
	listCmd.Flags().IntP("limit", "l", 50, "Maximum number of items to return")
	listCmd.Flags().Int("offset", 0, "Pagination offset")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one catalog entry",
		Args:  cobra.ExactArgs(1),
		RunE:  runCatalogShow,
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a catalog entry",
		Long:  "Removes the catalog entry. The archive item itself is untouched.",
		Args:  cobra.ExactArgs(1),
		RunE:  runCatalogDelete,
	}

	catalogCmd.AddCommand(listCmd)
	catalogCmd.AddCommand(showCmd)
	catalogCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	kind, _ := cmd.Flags().GetString("kind")
	query, _ := cmd.Flags().GetString("query")
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")

	client := NewClient(serverURL)
	resp, err := client.Catalog(kind, query, limit, offset)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(resp)
		return nil
	}

	if len(resp.Items) == 0 {
		fmt.Println("Catalog is empty.")
		return nil
	}

	printCatalogList(resp)
	return nil
}

func printCatalogList(data *ListCatalogResponse) {
	fmt.Printf("Catalog (%d items):\n\n", data.Total)
	fmt.Printf("  %-4s %-7s %-40s %-6s %s\n", "ID", "KIND", "TITLE", "YEAR", "POSTER")
	fmt.Println("  " + strings.Repeat("-", 75))

	for i := range data.Items {
		item := &data.Items[i]
		title := item.Title
		if item.Kind == "series" && item.SeriesTitle != "" {
			title = fmt.Sprintf("%s S%02dE%02d", item.SeriesTitle, item.Season, item.Episode)
		}
		if len(title) > 40 {
			title = title[:37] + "..."
		}

		year := "-"
		if item.Year != nil {
			year = strconv.Itoa(*item.Year)
		}
		poster := "-"
		if item.PosterSource != "" {
			poster = item.PosterSource
		}

		fmt.Printf("  %-4d %-7s %-40s %-6s %s\n", item.ID, item.Kind, title, year, poster)
	}

	if data.Total > len(data.Items) {
		fmt.Printf("\n  Showing %d of %d items. Use --limit to see more.\n", len(data.Items), data.Total)
	}
}

func runCatalogShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", args[0])
	}

	client := NewClient(serverURL)
	item, err := client.CatalogItem(id)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(item)
		return nil
	}

	fmt.Printf("Title:       %s\n", item.Title)
	if item.Year != nil {
		fmt.Printf("Year:        %d\n", *item.Year)
	}
	fmt.Printf("Kind:        %s\n", item.Kind)
	if item.Kind == "series" {
		fmt.Printf("Series:      %s S%02dE%02d\n", item.SeriesTitle, item.Season, item.Episode)
	}
	fmt.Printf("Genre:       %s\n", item.Genre)
	fmt.Printf("Rating:      %s\n", item.Rating)
	fmt.Printf("File:        %s (%d bytes)\n", item.FileName, item.SizeBytes)
	fmt.Printf("Playback:    %s\n", item.PlaybackURL)
	if item.PosterURL != "" {
		fmt.Printf("Poster:      %s (%s)\n", item.PosterURL, item.PosterSource)
	}
	fmt.Printf("Archive ID:  %s\n", item.ExternalID)
	return nil
}

func runCatalogDelete(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", args[0])
	}

	client := NewClient(serverURL)
	if err := client.DeleteCatalogItem(id); err != nil {
		return err
	}

	fmt.Printf("Deleted catalog entry %d\n", id)
	return nil
}
