// Package mcpserver exposes read-only Confluence operations as MCP tools.
// Every tool makes one Confluence call and answers with a single text block;
// failures are reported as text rather than as protocol errors.
package mcpserver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"

	"github.com/agentplexus/mcp-confluence-lite/config"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	ServerName    = "Confluence"
	ServerVersion = "0.2.0"

	instructions = "Connect to Confluence to manage spaces and pages"
)

// API is the subset of the Confluence client used by the tools.
// *confluence.Client implements it.
type API interface {
	GetAllSpaces(ctx context.Context, start, limit int) (any, error)
	GetSpace(ctx context.Context, spaceKey string) (any, error)
	GetAllPagesFromSpace(ctx context.Context, spaceKey string, start, limit int) (any, error)
	GetPageByTitle(ctx context.Context, spaceKey, title string) (map[string]any, error)
	CQL(ctx context.Context, cql string, limit int) (any, error)
	ServerInfo(ctx context.Context) (map[string]any, error)
}

// Server is the MCP server for Confluence.
type Server struct {
	client     API
	capability config.InfoCapability
	logger     *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithInfoCapability selects how get_confluence_info queries the instance.
func WithInfoCapability(c config.InfoCapability) Option {
	return func(s *Server) {
		s.capability = c
	}
}

// WithLogger sets the logger used for tool failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// New creates a new MCP server backed by the given Confluence client.
func New(client API, opts ...Option) *Server {
	s := &Server{
		client:     client,
		capability: config.InfoConnectivityOnly,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Client returns the Confluence client shared by all tools.
func (s *Server) Client() API {
	return s.client
}

// MCPServer builds the protocol server with every tool registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	for _, def := range s.Tools() {
		srv.AddTool(def.Tool, def.Handler)
	}

	return srv
}

// handlerFunc is the body of a tool: it returns the success text or an error
// to be flattened by respond.
type handlerFunc func(ctx context.Context, args map[string]any) (string, error)

// wrap turns a handlerFunc into a protocol handler that never fails: errors
// and panics alike come back as "Error <action>: ..." text.
func (s *Server) wrap(name, action string, h handlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (result *mcp.CallToolResult, _ error) {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("tool panicked",
					"tool", name,
					"panic", r,
					"stack", string(debug.Stack()))
				result = respond(action, "", fmt.Errorf("internal error: %v", r))
			}
		}()

		text, err := h(ctx, req.GetArguments())
		if err != nil {
			s.logger.Warn("tool failed",
				"tool", name,
				"kind", Classify(err).String(),
				"error", err)
		}
		return respond(action, text, err), nil
	}
}
