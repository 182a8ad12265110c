// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Ansuz tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/graph"
	"github.com/starford/ansuz/internal/objects"
)

// Server wraps the MCP server with Ansuz tools.
type Server struct {
	mcp *server.MCPServer
	svc *objects.Service
}

// New creates a new MCP server with all Ansuz tools registered.
func New(svc *objects.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("create_object",
		mcp.WithDescription("Create a content object from Markdown. "+
			"Content MUST follow the canonical content format ([[wikilinks]] for "+
			"references, ![[id]] for embeds). Read the contract first via the "+
			"get_content_contract tool or the ansuz://content-format resource."),
		mcp.WithString("markdown", mcp.Required(), mcp.Description("Markdown content following the Ansuz content format contract")),
		mcp.WithString("id", mcp.Description("Optional explicit object id (generated when omitted)")),
	), s.createObject)

	s.mcp.AddTool(mcp.NewTool("read_object",
		mcp.WithDescription("Read a content object: title, Markdown, typed blocks, backlinks."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Object id")),
	), s.readObject)

	s.mcp.AddTool(mcp.NewTool("update_object",
		mcp.WithDescription("Replace the Markdown content of an object. Pass the current "+
			"checksum to guard against concurrent edits."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Object id")),
		mcp.WithString("markdown", mcp.Required(), mcp.Description("New Markdown content")),
		mcp.WithString("checksum", mcp.Description("Expected current checksum (optional optimistic lock)")),
	), s.updateObject)

	s.mcp.AddTool(mcp.NewTool("delete_object",
		mcp.WithDescription("Delete a content object and its link relations."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Object id")),
	), s.deleteObject)

	s.mcp.AddTool(mcp.NewTool("list_objects",
		mcp.WithDescription("List objects with their titles and checksums."),
		mcp.WithNumber("limit", mcp.Description("Max objects to return (default 50)")),
	), s.listObjects)

	s.mcp.AddTool(mcp.NewTool("search_objects",
		mcp.WithDescription("Full-text search through object content and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchObjects)

	s.mcp.AddTool(mcp.NewTool("get_links",
		mcp.WithDescription("List the outgoing link relations of an object."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Object id")),
	), s.getLinks)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("Find all objects that link to the specified object."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Object id to find backlinks for")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("add_link",
		mcp.WithDescription("Append a link to another object at the end of an object's content."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Source object id")),
		mcp.WithString("target_id", mcp.Required(), mcp.Description("Target object id")),
		mcp.WithString("display_text", mcp.Description("Optional display text for the link")),
		mcp.WithBoolean("embed", mcp.Description("Append as a block embed instead of an inline link")),
	), s.addLink)

	s.mcp.AddTool(mcp.NewTool("trace_graph",
		mcp.WithDescription("Breadth-first traversal of the link graph from a starting object. "+
			"Returns each reached object with its minimum depth."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Starting object id")),
		mcp.WithNumber("depth", mcp.Description("Max traversal depth, 0-10 (default 2)")),
		mcp.WithString("direction", mcp.Description("Edge direction: outgoing, incoming or both (default both)")),
	), s.traceGraph)

	s.mcp.AddTool(mcp.NewTool("graph_summary",
		mcp.WithDescription("Aggregate statistics for a graph traversal: node count per depth, "+
			"max depth reached, truncation flag."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Starting object id")),
		mcp.WithNumber("depth", mcp.Description("Max traversal depth, 0-10 (default 2)")),
		mcp.WithString("direction", mcp.Description("Edge direction: outgoing, incoming or both (default both)")),
	), s.graphSummary)

	s.mcp.AddTool(mcp.NewTool("get_content_contract",
		mcp.WithDescription("Returns the canonical Ansuz content format contract. "+
			"Call this before creating or updating objects to ensure correct structure."),
	), s.getContentContract)

	// Resource: content format contract.
	s.mcp.AddResource(
		mcp.NewResource("ansuz://content-format", "Content Format Contract",
			mcp.WithResourceDescription("Canonical Markdown content format that all objects must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContentFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) createObject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	markdown, err := req.RequireString("markdown")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id := req.GetString("id", "")

	obj, err := s.svc.Create(ctx, id, markdown)
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			return mcp.NewToolResultError(fmt.Sprintf("object already exists: %s", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(obj)
}

func (s *Server) readObject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	obj, err := s.svc.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(obj)
}

func (s *Server) updateObject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	markdown, err := req.RequireString("markdown")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ifMatch := req.GetString("checksum", "")

	obj, err := s.svc.Update(ctx, id, markdown, ifMatch)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
		case errors.Is(err, apperr.ErrConflict):
			return mcp.NewToolResultError("checksum mismatch: object was modified concurrently"), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(obj)
}

func (s *Server) deleteObject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.Delete(ctx, id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", id)), nil
}

func (s *Server) listObjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 0)
	items, _, err := s.svc.List(ctx, limit, 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(items)
}

func (s *Server) searchObjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) getLinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rels, err := s.svc.Links(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(rels)
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bl, err := s.svc.Backlinks(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(bl) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	return mcp.NewToolResultText(strings.Join(bl, "\n")), nil
}

func (s *Server) addLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	targetID, err := req.RequireString("target_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	display := req.GetString("display_text", "")
	embed := req.GetBool("embed", false)

	obj, err := s.svc.AddLink(ctx, id, targetID, display, embed)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(obj)
}

func (s *Server) traceGraph(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	depth := req.GetInt("depth", 2)
	direction := graph.Direction(req.GetString("direction", string(graph.DirectionBoth)))

	res, err := s.svc.Traverse(ctx, id, depth, direction)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) graphSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	depth := req.GetInt("depth", 2)
	direction := graph.Direction(req.GetString("direction", string(graph.DirectionBoth)))

	sum, err := s.svc.GraphSummary(ctx, id, depth, direction)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(sum)
}

func (s *Server) getContentContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ContentFormatContract), nil
}

func (s *Server) readContentFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "ansuz://content-format",
			MIMEType: "text/markdown",
			Text:     ContentFormatContract,
		},
	}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
