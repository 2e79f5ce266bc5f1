package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/facultykb/facultygraph/internal/graph"
	fgmcp "github.com/facultykb/facultygraph/internal/mcp"
	"github.com/facultykb/facultygraph/internal/store"
)

func mcpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP (Model Context Protocol) server over stdio",
		Long: `Starts an MCP JSON-RPC 2.0 server that reads from stdin and writes to stdout.
All diagnostic logs go to stderr so that stdout remains exclusively MCP protocol traffic.

Tools exposed:
  search_entities  — search entities by name substring
  entity_relations — list every relationship touching an entity
  kb_stats         — knowledge-base statistics

If Postgres or Neo4j are unavailable at startup the server still starts;
individual tool calls will return MCP error responses on failure.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			var st store.Store
			if s, err := newStore(logger); err != nil {
				// Log to stderr and continue with a nil store.
				// Tool calls will return per-call errors rather than crashing.
				logger.Error("mcp: failed to connect to store; tool calls requiring storage will fail",
					"error", err)
			} else {
				st = s
			}

			var mirror graph.Mirror
			if m, err := newMirror(ctx, logger); err != nil {
				logger.Error("mcp: failed to connect to graph store; graph stats will be omitted",
					"error", err)
			} else {
				mirror = m
			}

			srv := fgmcp.NewServer(st, mirror, logger)

			// Use a standard log.Logger pointing at stderr for the mcp-go error logger.
			errLogger := log.New(os.Stderr, "mcp: ", log.LstdFlags)

			logger.Info("mcp: facultygraph MCP server starting", "transport", "stdio")

			return mcpserver.ServeStdio(
				srv.MCPServer(),
				mcpserver.WithErrorLogger(errLogger),
			)
		},
	}

	return cmd
}
