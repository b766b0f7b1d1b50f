// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes notemeta tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/notemeta/internal/noteservice"
)

const syntaxURI = "notemeta://syntax"

// Server wraps the MCP server with notemeta tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

// New creates a new MCP server with all notemeta tools registered.
func New(svc *noteservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"notemeta",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
	)

	s.mcp.AddTool(mcp.NewTool("get_metadata",
		mcp.WithDescription("Read the frontmatter and inline metadata fields of a Markdown note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note (e.g. folder/note.md)")),
		mcp.WithBoolean("include_content", mcp.Description("Also return the note content")),
	), s.getMetadata)

	s.mcp.AddTool(mcp.NewTool("edit_metadata",
		mcp.WithDescription("Apply a list of metadata edits to a note and rewrite it. "+
			"Read the syntax guide first via the get_syntax tool or the "+syntaxURI+" resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note")),
		mcp.WithArray("edits", mcp.Required(),
			mcp.Description("Edits applied in order: objects with op, key, keys, values, kind, to, "+
				"overwrite, allow_duplicates, order_keys, order_values"),
			mcp.Items(map[string]any{"type": "object"}),
		),
		mcp.WithString("if_match", mcp.Description("Checksum the note must still have")),
		mcp.WithBoolean("dry_run", mcp.Description("Return the new content without writing it")),
	), s.editMetadata)

	s.mcp.AddTool(mcp.NewTool("find_notes",
		mcp.WithDescription("Find indexed notes having a metadata key, optionally with a given value."),
		mcp.WithString("key", mcp.Required(), mcp.Description("Metadata key")),
		mcp.WithString("value", mcp.Description("Value the key must hold")),
		mcp.WithString("kind", mcp.Description("frontmatter, inline or notemeta (both)")),
	), s.findNotes)

	s.mcp.AddTool(mcp.NewTool("list_fields",
		mcp.WithDescription("List the distinct metadata keys of the vault with the number of notes using each."),
		mcp.WithString("kind", mcp.Description("frontmatter, inline or notemeta (both)")),
	), s.listFields)

	s.mcp.AddTool(mcp.NewTool("get_syntax",
		mcp.WithDescription("Returns the notemeta metadata syntax and edit operations guide."),
	), s.getSyntax)

	s.mcp.AddResource(
		mcp.NewResource(syntaxURI, "Metadata Syntax",
			mcp.WithResourceDescription("Frontmatter and inline field syntax understood by notemeta."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSyntaxResource,
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

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getMetadata(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.GetMetadata(ctx, path, req.GetBool("include_content", false))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", path, err)), nil
	}
	return jsonResult(d)
}

func (s *Server) editMetadata(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, ok := req.GetArguments()["edits"]
	if !ok {
		return mcp.NewToolResultError("required argument \"edits\" not found"), nil
	}
	// Round-trip through JSON to decode the loosely typed arguments.
	data, err := json.Marshal(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var edits []noteservice.Edit
	if err := json.Unmarshal(data, &edits); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid edits: %v", err)), nil
	}

	d, err := s.svc.ApplyEdits(ctx, path, noteservice.EditRequest{
		Edits:   edits,
		IfMatch: req.GetString("if_match", ""),
		DryRun:  req.GetBool("dry_run", false),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", path, err)), nil
	}
	return jsonResult(d)
}

func (s *Server) findNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := req.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var value *string
	if v, err := req.RequireString("value"); err == nil {
		value = &v
	}
	paths, err := s.svc.Find(ctx, key, value, req.GetString("kind", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(paths) == 0 {
		return mcp.NewToolResultText("no notes found"), nil
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) listFields(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fields, err := s.svc.Fields(ctx, req.GetString("kind", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(fields)
}

func (s *Server) getSyntax(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(SyntaxGuide), nil
}

func (s *Server) readSyntaxResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      syntaxURI,
			MIMEType: "text/markdown",
			Text:     SyntaxGuide,
		},
	}, nil
}
