package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kbrag/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/kbrag/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the HTTP API:

  POST /ask       answer a question
  POST /search    run a search query
  GET  /health    collaborator status
  GET  /metrics   Prometheus metrics (when server.enable_metrics is set)

Endpoints whose collaborators are not configured answer 503. Prompt files
are reloaded when they change on disk.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	warnUnreachable(ctx, rt)

	services := httpapi.Services{
		Health:  rt.Health(),
		Metrics: rt.MetricsHandler(),
	}
	if answer, err := rt.Answer(ctx); err != nil {
		logger.Warn("/ask disabled: %v", err)
	} else {
		services.Answer = answer
	}
	if search, err := rt.Search(ctx); err != nil {
		logger.Warn("/search disabled: %v", err)
	} else {
		services.Search = search
	}

	if prompts, err := rt.Prompts(); err == nil {
		go func() {
			if err := prompts.Watch(ctx); err != nil {
				logger.Warn("prompt reload disabled: %v", err)
			}
		}()
	}

	server := rt.Settings().Server
	addr := serveAddr
	if addr == "" {
		addr = server.Addr
	}

	srv := httpapi.NewServer(services, httpapi.Options{
		Addr:            addr,
		AllowedOrigins:  splitOrigins(server.AllowedOrigins),
		ReadTimeout:     server.ReadTimeout,
		WriteTimeout:    server.WriteTimeout,
		ShutdownTimeout: server.ShutdownTimeout,
	})

	cmd.Printf("kbrag API listening on %s\n", addr)
	return srv.ListenAndServe(ctx)
}

// warnUnreachable logs a warning when the embedding or LLM service does not
// answer. The server starts anyway.
func warnUnreachable(ctx context.Context, rt Runtime) {
	if err := rt.Validate(ctx); err != nil {
		logger.Warn("AI services unreachable: %v", err)
	}
}

// splitOrigins parses a comma-separated origin list.
func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
