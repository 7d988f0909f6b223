// Package cli implements the kbrag command line.
package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kbrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/kbrag/internal/app"
	"github.com/custodia-labs/kbrag/internal/config"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
	"github.com/custodia-labs/kbrag/internal/core/ports/driving"
	"github.com/custodia-labs/kbrag/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Runtime provides the services commands run against.
type Runtime interface {
	Settings() *config.Settings
	Ingest(writer driven.RecordWriter, keepArticles bool) (driving.IngestService, error)
	Index(ctx context.Context) (driving.IndexService, error)
	Search(ctx context.Context) (driving.SearchService, error)
	Answer(ctx context.Context) (driving.AnswerService, error)
	Health() driving.HealthService
	Validate(ctx context.Context) error
	Articles() (driving.ArticleService, error)
	Prompts() (*file.PromptStore, error)
	MetricsHandler() http.Handler
	Close() error
}

// Ensure the composition root satisfies Runtime.
var _ Runtime = (*app.App)(nil)

var (
	configPath string
	verbose    bool

	// current is built on first use from the settings at configPath.
	current Runtime

	// newRuntime builds the Runtime. Tests replace it.
	newRuntime = func(path string) (Runtime, error) {
		settings, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		return app.New(settings), nil
	}
)

var rootCmd = &cobra.Command{
	Use:   "kbrag",
	Short: "Help-center ingestion and retrieval-augmented answers",
	Long: `kbrag scrapes help-center articles into clean text, indexes them into a
vector-search cluster and answers questions with the retrieved articles
as context.

Settings are read from ~/.kbrag/config.toml and environment variables.
Run "kbrag config path" to see the file location.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug logs to stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.kbrag/config.toml)")
}

// SetVersion sets the version reported by "kbrag version".
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command with ctx and releases the runtime afterwards.
func Execute(ctx context.Context) error {
	defer closeRuntime()
	// cmd.Print* default to stderr; command output belongs on stdout.
	rootCmd.SetOut(os.Stdout)
	return rootCmd.ExecuteContext(ctx)
}

// loadRuntime returns the shared Runtime, building it on first use.
func loadRuntime() (Runtime, error) {
	if current != nil {
		return current, nil
	}

	rt, err := newRuntime(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	if rt.Settings() != nil && rt.Settings().Verbose() {
		logger.SetVerbose(true)
	}
	current = rt
	return rt, nil
}

func closeRuntime() {
	if current == nil {
		return
	}
	if err := current.Close(); err != nil {
		logger.Warn("closing runtime: %v", err)
	}
	current = nil
}
