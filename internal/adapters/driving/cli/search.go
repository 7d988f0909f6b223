package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kbrag/internal/core/domain"
)

var (
	searchType  string
	searchSize  int
	searchIndex string
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the vector index",
	Long: `Runs a query against the vector-search cluster.

Query types:
  multi_match  keyword search over title and content (default)
  match        keyword search over content only
  vector       nearest-neighbour search on the embedded query
  bool         title or content must match`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchType, "type", "t", "", "query type: multi_match, match, vector or bool")
	searchCmd.Flags().IntVarP(&searchSize, "size", "n", domain.DefaultSearchSize, "maximum number of results")
	searchCmd.Flags().StringVar(&searchIndex, "index", "", "index to search (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}

	svc, err := rt.Search(cmd.Context())
	if err != nil {
		return err
	}

	resp, err := svc.Search(cmd.Context(), domain.SearchRequest{
		Query:     args[0],
		Index:     searchIndex,
		Size:      searchSize,
		QueryType: domain.QueryType(searchType),
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		if resp.Hits == nil {
			resp.Hits = []domain.SearchHit{}
		}
		return outputJSON(cmd, resp)
	}

	outputSearchTable(cmd, resp)
	return nil
}

func outputSearchTable(cmd *cobra.Command, resp *domain.SearchResponse) {
	if len(resp.Hits) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Printf("Results (%d of %d):\n", len(resp.Hits), resp.TotalHits)
	cmd.Println()
	for i := range resp.Hits {
		hit := &resp.Hits[i]
		// Format: [N] Title (Score)
		title := hit.Title
		if title == "" {
			title = hit.ID
		}

		cmd.Printf("  [%d] %s (%.2f)\n", i+1, title, hit.Score)
		if url, _ := hit.Metadata["url"].(string); url != "" {
			cmd.Printf("      %s\n", url)
		}
		if snippet := firstHighlight(hit.Highlights); snippet != "" {
			cmd.Printf("      %s\n", snippet)
		}
		cmd.Println()
	}
}

// firstHighlight returns one highlight fragment, preferring content.
func firstHighlight(highlights map[string][]string) string {
	if frags := highlights["content"]; len(frags) > 0 {
		return strings.TrimSpace(frags[0])
	}
	fields := make([]string, 0, len(highlights))
	for field := range highlights {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		if frags := highlights[field]; len(frags) > 0 {
			return strings.TrimSpace(frags[0])
		}
	}
	return ""
}
