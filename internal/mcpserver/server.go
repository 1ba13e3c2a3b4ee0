// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the FlowState query catalogue for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/flowstate/internal/apperr"
	"github.com/starford/flowstate/internal/artifact"
	"github.com/starford/flowstate/internal/query"
)

// ArtifactFormatURI identifies the artifact schema resource.
const ArtifactFormatURI = "flowstate://artifact-format"

// Server wraps the MCP server with FlowState tools.
type Server struct {
	mcp    *server.MCPServer
	disp   *query.Dispatcher
	cache  *artifact.Cache
	logger *slog.Logger
}

// New creates a new MCP server with one tool per catalogue operation plus
// reload_artifact.
func New(disp *query.Dispatcher, cache *artifact.Cache, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{disp: disp, cache: cache, logger: logger}

	s.mcp = server.NewMCPServer(
		"FlowState",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	for _, d := range disp.Catalogue() {
		s.mcp.AddTool(toolFor(d), s.operation(d.Name))
	}

	s.mcp.AddTool(mcp.NewTool("reload_artifact",
		mcp.WithDescription("Re-read the correlation artifact from disk and swap it in atomically. "+
			"Call this after the FlowState pipeline has regenerated the data. "+
			"A failed reload keeps the previously loaded data."),
	), s.reloadArtifact)

	s.mcp.AddResource(
		mcp.NewResource(query.DashboardURI, "FlowState Dashboard",
			mcp.WithResourceDescription("Location and metadata of the interactive FlowState dashboard."),
			mcp.WithMIMEType("application/json"),
		),
		s.readDashboardResource,
	)

	s.mcp.AddResource(
		mcp.NewResource(ArtifactFormatURI, "Correlation Artifact Format",
			mcp.WithResourceDescription("Schema of the correlations.json artifact the query tools read."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readArtifactFormatResource,
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

func toolFor(d query.Descriptor) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(d.Description)}
	for _, p := range d.Params {
		popts := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			popts = append(popts, mcp.Required())
		}
		switch p.Type {
		case "number":
			opts = append(opts, mcp.WithNumber(p.Name, popts...))
		default:
			opts = append(opts, mcp.WithString(p.Name, popts...))
		}
	}
	return mcp.NewTool(string(d.Name), opts...)
}

// operation forwards the tool arguments to the dispatcher as a JSON object.
func (s *Server) operation(op query.Operation) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var raw json.RawMessage
		if args := req.GetArguments(); len(args) > 0 {
			b, err := json.Marshal(args)
			if err != nil {
				return errorResult(apperr.Wrap(err, apperr.CodeInvalidParameter,
					"Parameters could not be decoded",
					"Pass the documented parameters as plain JSON values")), nil
			}
			raw = b
		}
		res, err := s.disp.Call(ctx, op, raw)
		if err != nil {
			return errorResult(err), nil
		}
		return jsonResult(res), nil
	}
}

func (s *Server) reloadArtifact(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := s.cache.Reload(); err != nil {
		return errorResult(err), nil
	}
	st := s.cache.Status()
	s.logger.Info("mcp: artifact reloaded",
		slog.String("snapshot", st.SnapshotID),
		slog.Int("timeline_days", st.TimelineDays))
	return jsonResult(st), nil
}

func (s *Server) readDashboardResource(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	out, err := json.MarshalIndent(s.disp.Service().Dashboard(ctx), "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      query.DashboardURI,
			MIMEType: "application/json",
			Text:     string(out),
		},
	}, nil
}

func (s *Server) readArtifactFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ArtifactFormatURI,
			MIMEType: "text/markdown",
			Text:     ArtifactFormat,
		},
	}, nil
}

// errorResult renders err as an IsError result whose text is the JSON error body.
func errorResult(err error) *mcp.CallToolResult {
	out, _ := json.MarshalIndent(apperr.From(err).Body(), "", "  ")
	return mcp.NewToolResultError(string(out))
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText(string(out))
}
