package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kbrag/internal/adapters/driven/storage/jsonl"
	"github.com/custodia-labs/kbrag/internal/core/domain"
)

var indexFromDB bool

var indexCmd = &cobra.Command{
	Use:   "index [file.jsonl]",
	Short: "Chunk, embed and index curated articles",
	Long: `Reads curated article records written by "kbrag fetch", splits each body
into overlapping chunks, embeds them and writes them to the vector index.

Use --db instead of a file to index the local article store.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexFromDB, "db", false, "index articles from the local store")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if (len(args) == 1) == indexFromDB {
		return errors.New("give either a JSONL file or --db")
	}

	rt, err := loadRuntime()
	if err != nil {
		return err
	}

	var articles []domain.CuratedArticle
	if indexFromDB {
		store, err := rt.Articles()
		if err != nil {
			return err
		}
		if articles, err = store.List(cmd.Context()); err != nil {
			return fmt.Errorf("listing articles: %w", err)
		}
	} else {
		if articles, err = jsonl.ReadAll[domain.CuratedArticle](args[0]); err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
	}

	if len(articles) == 0 {
		cmd.Println("No articles to index.")
		return nil
	}

	svc, err := rt.Index(cmd.Context())
	if err != nil {
		return err
	}

	stats, err := svc.Index(cmd.Context(), articles)
	if err != nil {
		return fmt.Errorf("index failed: %w", err)
	}

	cmd.Printf("Indexed %d articles as %d chunks (%d skipped)\n", stats.Documents, stats.Chunks, stats.Skipped)
	if stats.Removed > 0 {
		cmd.Printf("Removed %d stale chunks\n", stats.Removed)
	}
	return nil
}
