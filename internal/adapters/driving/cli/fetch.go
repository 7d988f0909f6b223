package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kbrag/internal/adapters/driven/storage/jsonl"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
	"github.com/custodia-labs/kbrag/internal/core/ports/driving"
)

var (
	fetchQuery        string
	fetchLocale       string
	fetchOut          string
	fetchRaw          bool
	fetchDB           bool
	fetchSkipOutdated bool
	fetchSkipDrafts   bool
	fetchWorkers      int
	fetchPerPage      int
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch help-center articles as clean text",
	Long: `Fetches help-center articles, converts their HTML bodies to plain text and
writes one JSON record per article.

Without --query every article of the locale is listed. With --query the
help-center search is used instead.

Records go to --out (use "-" for stdout) and, with --db, to the local
article store used by "kbrag mcp serve".

Examples:
  kbrag fetch --out articles.jsonl
  kbrag fetch --query "password reset" --out - --raw
  kbrag fetch --locale de --db`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchQuery, "query", "q", "", "search query (default: list all articles)")
	fetchCmd.Flags().StringVar(&fetchLocale, "locale", "", "listing locale (default from config)")
	fetchCmd.Flags().StringVarP(&fetchOut, "out", "o", "", `JSONL output file ("-" for stdout)`)
	fetchCmd.Flags().BoolVar(&fetchRaw, "raw", false, "keep the source HTML on each record")
	fetchCmd.Flags().BoolVar(&fetchDB, "db", false, "also save articles to the local store")
	fetchCmd.Flags().BoolVar(&fetchSkipOutdated, "skip-outdated", false, "drop articles flagged outdated")
	fetchCmd.Flags().BoolVar(&fetchSkipDrafts, "skip-drafts", false, "drop unpublished articles")
	fetchCmd.Flags().IntVarP(&fetchWorkers, "workers", "w", 0, "concurrent normalisation workers (default 4)")
	fetchCmd.Flags().IntVar(&fetchPerPage, "per-page", 0, "search page size (default 100)")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, _ []string) error {
	if fetchOut == "" && !fetchDB {
		return errors.New("nothing to write: set --out and/or --db")
	}

	rt, err := loadRuntime()
	if err != nil {
		return err
	}

	// Summary lines must not interleave with records streamed to stdout.
	report := cmd.OutOrStdout()
	if fetchOut == "-" {
		report = cmd.ErrOrStderr()
	}

	var writer driven.RecordWriter
	var records *jsonl.Writer
	switch fetchOut {
	case "":
	case "-":
		records = jsonl.NewWriter(cmd.OutOrStdout())
		writer = records
	default:
		records, err = jsonl.Create(fetchOut)
		if err != nil {
			return err
		}
		writer = records
	}

	svc, err := rt.Ingest(writer, fetchDB)
	if err != nil {
		if records != nil {
			_ = records.Close()
		}
		return err
	}

	stats, err := svc.Ingest(cmd.Context(), driving.IngestOptions{
		Query:          fetchQuery,
		PerPage:        fetchPerPage,
		Locale:         fetchLocale,
		IncludeRawBody: fetchRaw,
		SkipOutdated:   fetchSkipOutdated,
		SkipDrafts:     fetchSkipDrafts,
		Workers:        fetchWorkers,
	})
	if records != nil {
		if cerr := records.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	printFetchSummary(report, stats.Fetched, stats.Written, stats.Skipped)
	return nil
}

func printFetchSummary(w io.Writer, fetched, written, skipped int) {
	fmt.Fprintf(w, "Fetched %d articles: %d written, %d skipped\n", fetched, written, skipped)
	switch {
	case fetchOut != "" && fetchOut != "-":
		fmt.Fprintf(w, "Records: %s\n", fetchOut)
	case fetchDB:
		fmt.Fprintln(w, "Records: local article store")
	}
}
