// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litreview/internal/ledger"
	"github.com/pdiddy/litreview/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the review index (store, search, export, reflections)",
	Long: `Index maintains a local SQLite database built from the per-paper JSON
artifacts of the review pass. Use subcommands to ingest artifacts, search
the reviewed studies, export them, or read back the reflection memo history.`,
}

// --- store subcommand ---

var indexStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Ingest review artifacts into the index",
	Long: `Store reads data/json/*.json, upserts every new or modified artifact into
the SQLite index with FTS5 indexing, and writes export.yaml. Unchanged
artifacts are skipped on subsequent runs.`,
	RunE: runIndexStore,
}

func runIndexStore(cmd *cobra.Command, args []string) error {
	store, err := ledger.NewStore(ledgerConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(cmd.Context(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d artifact(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- search subcommand ---

var indexSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search reviewed studies with full-text search and filters",
	Long: `Search queries the index over title, summary, findings and justification,
optionally restricted to included studies or to a model or task type.
Without a query, matching studies are listed by artifact name.`,
	RunE: runIndexSearch,
}

func runIndexSearch(cmd *cobra.Command, args []string) error {
	store, err := ledger.NewStore(ledgerConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Search(cmd.Context(), queryOptsFromFlags(cmd, args))
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(results, jsonOutput)
}

func formatSearchOutput(results []ledger.Entry, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-8s  %-50s  %-24s  %s\n",
		"Rank", "Included", "Title", "PDF", "Models")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

	for i, e := range results {
		included := "no"
		if e.Included {
			included = "yes"
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-8s  %-50s  %-24s  %s\n",
			i+1, included, clip(e.Title, 50), clip(e.PDF, 24), e.Models)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// --- export subcommand ---

var indexExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the review index to YAML or JSON",
	Long: `Export writes the indexed studies (or a filtered subset) and the reflection
memo history to data/index/export.yaml or export.json. Supports the same
filter flags as search.`,
	RunE: runIndexExport,
}

func runIndexExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := ledger.NewStore(ledgerConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)

	var path string
	switch format {
	case "yaml", "":
		path, err = store.ExportYAML(cmd.Context(), opts)
	case "json":
		path, err = store.ExportJSON(cmd.Context(), opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}

	fmt.Println("Exported to", path)
	return nil
}

// --- reflections subcommand ---

var indexReflectionsCmd = &cobra.Command{
	Use:   "reflections",
	Short: "Print the reflection memo history in review order",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := ledger.NewStore(ledgerConfig(cmd))
		if err != nil {
			return err
		}
		defer store.Close()

		memos, err := store.Reflections(cmd.Context())
		if err != nil {
			return err
		}
		if len(memos) == 0 {
			fmt.Println("No reflections recorded.")
			return nil
		}
		for _, m := range memos {
			fmt.Printf("%s\n  %s\n", m.PDF, m.Text)
		}
		return nil
	},
}

// --- shared helpers ---

func ledgerConfig(cmd *cobra.Command) types.LedgerConfig {
	jsonDir, _ := cmd.Flags().GetString("json-dir")
	indexDir, _ := cmd.Flags().GetString("index-dir")
	maxResults, _ := cmd.Flags().GetInt("max-results")

	return types.LedgerConfig{
		JSONDir:    dataPath(jsonDir),
		IndexDir:   dataPath(indexDir),
		MaxResults: maxResults,
	}
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) ledger.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	included, _ := cmd.Flags().GetBool("included")
	model, _ := cmd.Flags().GetString("model")
	task, _ := cmd.Flags().GetString("task")
	limit, _ := cmd.Flags().GetInt("limit")

	return ledger.QueryOptions{
		Query:      queryText,
		Included:   included,
		Model:      model,
		Task:       task,
		MaxResults: limit,
	}
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("query", "", "full-text search query")
	cmd.Flags().Bool("included", false, "only studies added to the final set")
	cmd.Flags().String("model", "", "filter by model name (substring)")
	cmd.Flags().String("task", "", "filter by task type (substring)")
	cmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	indexCmd.PersistentFlags().String("json-dir", "data/json", "directory of review JSON artifacts")
	indexCmd.PersistentFlags().String("index-dir", "data/index", "directory for review.db and exports")
	indexCmd.PersistentFlags().Int("max-results", 20, "maximum number of search results")

	addFilterFlags(indexSearchCmd)
	indexSearchCmd.Flags().Bool("json", false, "output results as JSON")

	addFilterFlags(indexExportCmd)
	indexExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	indexCmd.AddCommand(indexStoreCmd)
	indexCmd.AddCommand(indexSearchCmd)
	indexCmd.AddCommand(indexExportCmd)
	indexCmd.AddCommand(indexReflectionsCmd)

	rootCmd.AddCommand(indexCmd)
}
