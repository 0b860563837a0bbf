package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/contentbuilder/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants and pipelines
can search chunks, read them as resources and save versions.

By default, the server communicates over stdio using JSON-RPC.

Use --http to start a streamable HTTP server instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

Examples:
  # Stdio mode (default)
  contentbuilder mcp

  # HTTP mode
  contentbuilder mcp --http :8080

Client configuration:
  {
    "mcpServers": {
      "contentbuilder": {
        "command": "/path/to/contentbuilder",
        "args": ["mcp"]
      }
    }
  }`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().String("http", "", "HTTP listen address, e.g. :8080 (empty = use stdio)")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("http")
	if err != nil {
		return fmt.Errorf("getting http flag: %w", err)
	}

	ports := &mcp.Ports{
		Chunks:     chunkService,
		Categories: categoryService,
		Versions:   versionService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if addr != "" {
		cmd.PrintErrf("MCP server listening on http://%s\n", displayAddr(addr))
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
