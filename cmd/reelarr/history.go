package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show import history",
		RunE:  runHistory,
	}

	historyCmd.Flags().StringP("event", "e", "", "Filter by event (imported, updated, skipped, failed)")
	historyCmd.Flags().IntP("limit", "l", 50, "Maximum number of entries to return")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	event, _ := cmd.Flags().GetString("event")
	limit, _ := cmd.Flags().GetInt("limit")

	client := NewClient(serverURL)
	resp, err := client.History(event, limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(resp)
		return nil
	}

	if len(resp.Items) == 0 {
		fmt.Println("No history entries.")
		return nil
	}

	fmt.Printf("  %-4s %-10s %-30s %s\n", "ID", "EVENT", "ARCHIVE ID", "AT")
	fmt.Println("  " + strings.Repeat("-", 70))
	for _, e := range resp.Items {
		extID := e.ExternalID
		if len(extID) > 30 {
			extID = extID[:27] + "..."
		}
		fmt.Printf("  %-4d %-10s %-30s %s\n", e.ID, e.Event, extID, e.CreatedAt)
	}
	return nil
}
