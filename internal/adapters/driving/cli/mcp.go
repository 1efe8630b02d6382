package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docdup-cli/internal/adapters/driving/mcp"
	"github.com/custodia-labs/docdup-cli/internal/core/services"
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

The server exposes similarity_matrix, find_duplicates, and
merge_documents tools. Documents are passed inline by the caller, so no
local corpus is needed.

By default, the server communicates over stdio using JSON-RPC. Use
--port to start an HTTP server instead.

Examples:
  # Stdio mode (default, for Claude Desktop)
  docdup mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  docdup mcp serve --port 8080`,
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

	cfg, err := openConfig()
	if err != nil {
		return err
	}
	calculator, _, err := buildCalculator("", "", 0, cfg)
	if err != nil {
		return err
	}
	merger, err := services.NewMergeService(services.NewLexicalCalculator())
	if err != nil {
		return err
	}

	ports := &mcp.Ports{
		Calculator: calculator,
		Clusterer:  services.NewClusterService(),
		Merger:     merger,
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
