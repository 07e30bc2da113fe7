// Command collect-metadata fetches raw metadata from archive items matching
// a query, for use in building test suites for metadata normalization.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/vmunix/reelarr/internal/archive"
	"github.com/vmunix/reelarr/internal/config"
)

func main() {
	configPath := flag.String("config", "config.toml", "Path to config file")
	query := flag.String("query", "", "Archive search query (required)")
	output := flag.String("output", "testdata/metadata.csv", "Output CSV file")
	limit := flag.Int("limit", 100, "Items to fetch")
	flag.Parse()

	if *query == "" {
		fmt.Fprintln(os.Stderr, "error: -query is required")
		os.Exit(1)
	}

	if err := run(*configPath, *query, *output, *limit); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, query, output string, limit int) error {
	// Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	client := archive.NewClient(
		archive.WithBaseURL(cfg.Archive.URL),
		archive.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Archive.TimeoutSeconds) * time.Second}),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	ids, err := client.Search(ctx, query, limit)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	fmt.Printf("Found %d items for %q\n", len(ids), query)

	var results []record
	for _, id := range ids {
		item, err := client.Fetch(ctx, id)
		if err != nil {
			fmt.Printf("  %s: error: %v\n", id, err)
			continue
		}

		keys := make([]string, 0, len(item.Metadata))
		for k := range item.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			results = append(results, record{
				Identifier: id,
				Key:        k,
				Value:      fmt.Sprintf("%v", item.Metadata[k]),
			})
		}

		fmt.Printf("  %s: %d metadata keys, %d files\n", id, len(keys), len(item.Files))

		// Be nice to the archive
		time.Sleep(500 * time.Millisecond)
	}

	if err := writeCSV(output, results); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	fmt.Printf("Written to %s\n", output)
	return nil
}

type record struct {
	Identifier string
	Key        string
	Value      string
}

func writeCSV(path string, records []record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"identifier", "key", "value"}); err != nil {
		return err
	}

	// Data
	for _, r := range records {
		if err := w.Write([]string{r.Identifier, r.Key, r.Value}); err != nil {
			return err
		}
	}

	return w.Error()
}
