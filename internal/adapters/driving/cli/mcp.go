package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wikichat/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can ask
questions and search the indexed articles.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

Tools:
  ask             - answer a question, optionally within a session
  search          - nearest chunks for a query
  suggest_topics  - topics and generated questions

Resources:
  wikichat://articles            - stored articles
  wikichat://articles/{articleId} - one article's text

Examples:
  # Stdio mode (default)
  wikichat mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  wikichat mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "wikichat": {
        "command": "/path/to/wikichat",
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

	ports := &mcp.Ports{
		Chat:      chatService,
		Retrieval: retrievalService,
		Topics:    topicService,
		Articles:  articleService,
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
