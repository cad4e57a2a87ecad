// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the sync engine as tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/chaser/internal/apperr"
	"github.com/starford/chaser/internal/syncservice"
)

const formatURI = "chaser://target-formats"

// Server wraps the MCP server with the sync tools.
type Server struct {
	mcp *server.MCPServer
	svc *syncservice.Service
}

// New creates a new MCP server with every tool registered.
func New(svc *syncservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Chaser",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("sync_status",
		mcp.WithDescription("Show the engine state, watch roots, target files and every tracked path with its existence."),
	), s.syncStatus)

	s.mcp.AddTool(mcp.NewTool("sync_path_change",
		mcp.WithDescription("Propagate a rename: every tracked path equal to old or below it is rewritten "+
			"in each target file that references it. Untracked paths are reported with found=false."),
		mcp.WithString("old", mcp.Required(), mcp.Description("Path before the rename, as written in the target files")),
		mcp.WithString("new", mcp.Required(), mcp.Description("Path after the rename")),
	), s.syncPathChange)

	s.mcp.AddTool(mcp.NewTool("sync_refresh",
		mcp.WithDescription("Reload every target file from disk and rebuild the index."),
	), s.syncRefresh)

	s.mcp.AddTool(mcp.NewTool("list_targets",
		mcp.WithDescription("List the configured target files with their format and entry counts."),
	), s.listTargets)

	s.mcp.AddTool(mcp.NewTool("list_entries",
		mcp.WithDescription("List the path entries of one target file."),
		mcp.WithString("location", mcp.Required(), mcp.Description("Target file location as configured")),
	), s.listEntries)

	s.mcp.AddTool(mcp.NewTool("sync_history",
		mcp.WithDescription("Recently propagated renames, newest first."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of records (default 50)")),
	), s.syncHistory)

	s.mcp.AddTool(mcp.NewTool("check_ignore",
		mcp.WithDescription("Check whether a path matches the ignore patterns and would be dropped from watch events."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to check")),
	), s.checkIgnore)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Target File Formats",
			mcp.WithResourceDescription("How each target file format is read and rewritten."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
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

func errorResult(err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %v", err))
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) syncStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Status(ctx))
}

func (s *Server) syncPathChange(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	oldPath, err := req.RequireString("old")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	newPath, err := req.RequireString("new")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.svc.SyncPathChange(ctx, syncservice.RenameRequest{Old: oldPath, New: newPath})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(res)
}

func (s *Server) syncRefresh(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ov, err := s.svc.Refresh(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(ov)
}

func (s *Server) listTargets(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Targets(ctx))
}

func (s *Server) listEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	loc, err := req.RequireString("location")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entries, err := s.svc.Entries(ctx, loc)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(entries)
}

func (s *Server) syncHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recs, err := s.svc.History(ctx, req.GetInt("limit", 0))
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(recs)
}

func (s *Server) checkIgnore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ignored, err := s.svc.CheckIgnore(ctx, path)
	if err != nil {
		return errorResult(err), nil
	}
	if ignored {
		return mcp.NewToolResultText(fmt.Sprintf("ignored: %s", path)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("watched: %s", path)), nil
}

func (s *Server) readFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     TargetFormatContract,
		},
	}, nil
}
