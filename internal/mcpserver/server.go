// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the score library to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/partitura/internal/scoreservice"
	"github.com/starford/partitura/internal/storage"
)

const modelResourceURI = "partitura://score-model"

// Server wraps the MCP server with the library tools.
type Server struct {
	mcp   *server.MCPServer
	svc   *scoreservice.Service
	store storage.Provider
}

// New creates a new MCP server with all library tools registered.
func New(svc *scoreservice.Service, store storage.Provider) *Server {
	s := &Server{svc: svc, store: store}

	s.mcp = server.NewMCPServer(
		"Partitura",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_scores",
		mcp.WithDescription("Full-text search over score titles, composers and part names."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchScores)

	s.mcp.AddTool(mcp.NewTool("list_scores",
		mcp.WithDescription("List all score files or the score files in a specific folder."),
		mcp.WithString("folder", mcp.Description("Optional folder to list (empty for all)")),
	), s.listScores)

	s.mcp.AddTool(mcp.NewTool("read_score",
		mcp.WithDescription("Read the summary of a score: title, composer, part names, "+
			"counts and the import diagnostics."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the score (e.g. bach/minuet.musicxml)")),
	), s.readScore)

	s.mcp.AddTool(mcp.NewTool("get_measure",
		mcp.WithDescription("Return one measure of one part as the JSON score model. "+
			"Read the contract first via get_score_contract or the "+modelResourceURI+" resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the score")),
		mcp.WithString("part", mcp.Required(), mcp.Description("Part id from the part list (e.g. P1)")),
		mcp.WithString("measure", mcp.Required(), mcp.Description("Measure number as written (e.g. 12 or 0 for a pickup)")),
	), s.getMeasure)

	s.mcp.AddTool(mcp.NewTool("get_score_contract",
		mcp.WithDescription("Returns the JSON score model contract. "+
			"Call this before interpreting measures returned by get_measure."),
	), s.getScoreContract)

	s.mcp.AddTool(mcp.NewTool("upload_score",
		mcp.WithDescription("Download a MusicXML (.xml, .musicxml) or compressed (.mxl) score from an "+
			"http(s) URL or a base64 data URI, import it and add it to the library under uploads/."),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or data:<mime>;base64,<data> URI")),
		mcp.WithString("filename", mcp.Description("Optional file name; derived from the URL when empty")),
	), s.uploadScore)

	s.mcp.AddResource(
		mcp.NewResource(modelResourceURI, "Score Model Contract",
			mcp.WithResourceDescription("JSON shape of imported scores, measures and events."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readScoreModelResource,
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

func (s *Server) searchScores(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("no scores found"), nil
	}
	return jsonResult(results)
}

func (s *Server) listScores(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder := ""
	if f, err := req.RequireString("folder"); err == nil {
		folder = f
	}

	files, err := s.store.List(folder)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) readScore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.GetScore(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(path + ": " + err.Error()), nil
	}
	return jsonResult(d)
}

func (s *Server) getMeasure(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	part, err := req.RequireString("part")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	number, err := req.RequireString("measure")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	view, err := s.svc.GetMeasure(ctx, path, part, number)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(view)
}

func (s *Server) getScoreContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ScoreModelContract), nil
}

func (s *Server) readScoreModelResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      modelResourceURI,
			MIMEType: "text/markdown",
			Text:     ScoreModelContract,
		},
	}, nil
}
