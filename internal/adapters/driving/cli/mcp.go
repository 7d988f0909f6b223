package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kbrag/internal/adapters/driving/mcp"
	"github.com/custodia-labs/kbrag/internal/core/ports/driving"
	"github.com/custodia-labs/kbrag/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

The server exposes the "search" tool, the "ask" tool when an LLM is
configured, and the articles kept by "kbrag fetch --db" as resources.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Use --port to start an HTTP server instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

Examples:
  # Stdio mode (default, for Claude Desktop)
  kbrag mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  kbrag mcp serve --port 8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "kbrag": {
        "command": "/path/to/kbrag",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	rt, err := loadRuntime()
	if err != nil {
		return err
	}

	search, err := rt.Search(cmd.Context())
	if err != nil {
		return err
	}
	warnUnreachable(cmd.Context(), rt)

	ports := &mcp.Ports{
		Search:   search,
		Answer:   answerOrNil(cmd.Context(), rt),
		Articles: articlesOrNil(rt),
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}

// answerOrNil returns the answer service, or nil when it cannot be built.
func answerOrNil(ctx context.Context, rt Runtime) driving.AnswerService {
	answer, err := rt.Answer(ctx)
	if err != nil {
		logger.Debug("ask tool disabled: %v", err)
		return nil
	}
	return answer
}

// articlesOrNil returns the article service, or nil when the store cannot
// be opened.
func articlesOrNil(rt Runtime) driving.ArticleService {
	articles, err := rt.Articles()
	if err != nil {
		logger.Debug("article resources disabled: %v", err)
		return nil
	}
	return articles
}
