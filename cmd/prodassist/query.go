package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/prodassist/internal/domain/search/result"
)

const maxPreview = 500

var (
	queryText string
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Retrieve documents for a query",
	Long: `Run one retrieval with the configured strategy and print the documents in ranking order.

Examples:
  prodassist query -q "Can you suggest good budget laptops?"
  prodassist query -q "noise cancelling headphones" --json`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "search query (required)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	_ = queryCmd.MarkFlagRequired("query")
}

func runQuery(cmd *cobra.Command, _ []string) error {
	a, err := buildApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.gateway.Close()

	set, err := a.gateway.Retrieve(cmd.Context(), queryText)
	if err != nil {
		return fmt.Errorf("retrieve: %w", err)
	}

	if queryJSON {
		return printJSON(cmd.OutOrStdout(), set)
	}
	printText(cmd.OutOrStdout(), queryText, set)
	return nil
}

type queryOutput struct {
	Score    float64        `json:"score"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func printJSON(w io.Writer, set result.Set) error {
	out := make([]queryOutput, 0, set.Len())
	for _, d := range set.Documents() {
		out = append(out, queryOutput{Score: d.Score(), Content: d.Content(), Metadata: d.Metadata()})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	return nil
}

func printText(w io.Writer, query string, set result.Set) {
	if set.IsEmpty() {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "Found %d results for: %s\n\n", set.Len(), query)
	for i, d := range set.Documents() {
		fmt.Fprintf(w, "--- [%d] score %.3f%s ---\n", i+1, d.Score(), formatMetadata(d.Metadata()))
		fmt.Fprintln(w, preview(d.Content()))
		fmt.Fprintln(w)
	}
}

// preview truncates text to maxPreview runes.
func preview(text string) string {
	if utf8.RuneCountInString(text) <= maxPreview {
		return text
	}
	return string([]rune(text)[:maxPreview]) + "..."
}

func formatMetadata(md map[string]any) string {
	if len(md) == 0 {
		return ""
	}
	keys := make([]string, 0, len(md))
	for k := range md {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, md[k])
	}
	return " (" + strings.Join(parts, ", ") + ")"
}
