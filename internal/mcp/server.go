// Package mcp implements the Model Context Protocol server for facultygraph,
// so assistants can query the knowledge base as tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/facultykb/facultygraph/internal/graph"
	"github.com/facultykb/facultygraph/internal/models"
	"github.com/facultykb/facultygraph/internal/store"
)

// defaultSearchLimit is the default number of results for search_entities.
const defaultSearchLimit = 20

// Server wraps an MCPServer with facultygraph dependencies.
type Server struct {
	mcp    *mcpserver.MCPServer
	st     store.Store
	mirror graph.Mirror
	logger *slog.Logger
}

// NewServer creates a new MCP server. If st is nil, tool calls return an
// error response instead of panicking.
func NewServer(st store.Store, mirror graph.Mirror, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{st: st, mirror: mirror, logger: logger}

	mcpSrv := mcpserver.NewMCPServer(
		"facultygraph",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
	)

	mcpSrv.AddTool(buildSearchEntitiesTool(), s.handleSearchEntities)
	mcpSrv.AddTool(buildEntityRelationsTool(), s.handleEntityRelations)
	mcpSrv.AddTool(buildStatsTool(), s.handleStats)

	s.mcp = mcpSrv
	return s
}

// MCPServer returns the underlying mcp-go MCPServer for use with ServeStdio.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcp
}

// HandleSearchEntities is the exported handler for the "search_entities"
// tool, exposed for direct testing without the mcp-go transport layer.
func (s *Server) HandleSearchEntities(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleSearchEntities(ctx, req)
}

// HandleEntityRelations is the exported handler for the "entity_relations" tool.
func (s *Server) HandleEntityRelations(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleEntityRelations(ctx, req)
}

// HandleStats is the exported handler for the "kb_stats" tool.
func (s *Server) HandleStats(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleStats(ctx, req)
}

// toolResultJSON marshals v to JSON and returns it as a tool text result.
func toolResultJSON(v any) (*mcpgo.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("mcp: marshaling result: %w", err)
	}
	return mcpgo.NewToolResultText(string(b)), nil
}

// --- tool definitions ---

func buildSearchEntitiesTool() mcpgo.Tool {
	return mcpgo.NewTool("search_entities",
		mcpgo.WithDescription("Search knowledge-base entities by name substring. Returns entity records with type and description."),
		mcpgo.WithString("query",
			mcpgo.Required(),
			mcpgo.Description("Name substring to search for, e.g. a faculty member's name"),
		),
		mcpgo.WithNumber("limit",
			mcpgo.Description("Maximum number of results (default: 20)"),
		),
	)
}

func buildEntityRelationsTool() mcpgo.Tool {
	return mcpgo.NewTool("entity_relations",
		mcpgo.WithDescription("List every relationship touching an entity: departments, titles, research areas, courses, alma maters, honors and duties."),
		mcpgo.WithString("name",
			mcpgo.Required(),
			mcpgo.Description("Exact entity name"),
		),
	)
}

func buildStatsTool() mcpgo.Tool {
	return mcpgo.NewTool("kb_stats",
		mcpgo.WithDescription("Get knowledge-base statistics: entity, relationship and document counts plus graph mirror totals."),
	)
}

// --- tool handlers ---

func (s *Server) handleSearchEntities(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.st == nil {
		return mcpgo.NewToolResultError("store is unavailable"), nil
	}

	query := req.GetString("query", "")
	if strings.TrimSpace(query) == "" {
		return mcpgo.NewToolResultError("query is required and must not be empty"), nil
	}
	limit := req.GetInt("limit", defaultSearchLimit)
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	entities, err := s.st.SearchEntities(ctx, query)
	if err != nil {
		return mcpgo.NewToolResultErrorf("search failed: %s", err.Error()), nil
	}
	if len(entities) > limit {
		entities = entities[:limit]
	}

	s.logger.Debug("mcp: search_entities", "query", query, "results", len(entities))
	return toolResultJSON(map[string]any{"entities": entities})
}

// relationView is one edge as presented to the assistant, with names
// instead of row IDs.
type relationView struct {
	Source   string              `json:"source"`
	Relation models.RelationType `json:"relation"`
	Target   string              `json:"target"`
}

func (s *Server) handleEntityRelations(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.st == nil {
		return mcpgo.NewToolResultError("store is unavailable"), nil
	}

	name := req.GetString("name", "")
	if strings.TrimSpace(name) == "" {
		return mcpgo.NewToolResultError("name is required and must not be empty"), nil
	}

	entity, err := s.st.GetEntityByName(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcpgo.NewToolResultErrorf("entity %q not found", name), nil
		}
		return mcpgo.NewToolResultErrorf("lookup failed: %s", err.Error()), nil
	}

	rels, err := s.st.ListRelationships(ctx, entity.ID)
	if err != nil {
		return mcpgo.NewToolResultErrorf("listing relationships failed: %s", err.Error()), nil
	}

	views := make([]relationView, 0, len(rels))
	for i := range rels {
		v := relationView{Relation: rels[i].RelationshipType}
		if rels[i].Source != nil {
			v.Source = rels[i].Source.Name
		}
		if rels[i].Target != nil {
			v.Target = rels[i].Target.Name
		}
		views = append(views, v)
	}

	return toolResultJSON(map[string]any{
		"entity":        entity,
		"relationships": views,
	})
}

func (s *Server) handleStats(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.st == nil {
		return mcpgo.NewToolResultError("store is unavailable"), nil
	}

	stats, err := s.st.Stats(ctx)
	if err != nil {
		return mcpgo.NewToolResultErrorf("stats failed: %s", err.Error()), nil
	}

	result := map[string]any{"relational": stats}
	if s.mirror != nil {
		nodes, edges, err := s.mirror.Stats(ctx)
		if err != nil {
			result["graph_error"] = err.Error()
		} else {
			result["graph"] = map[string]int64{"nodes": nodes, "edges": edges}
		}
	}
	return toolResultJSON(result)
}
