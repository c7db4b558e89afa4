// Command mcp-confluence runs a Confluence MCP server over stdio. It exposes
// tools for listing spaces and pages, reading page content, running CQL
// searches and reporting instance information.
//
// The server reads configuration from environment variables (a .env file in
// the working directory is loaded first when present):
//   - CONFLUENCE_URL: The base URL of your Confluence instance (e.g., https://example.atlassian.net/wiki)
//   - CONFLUENCE_TOKEN: An API token (cloud) or personal access token (server / data center)
//   - CONFLUENCE_USERNAME: Your Confluence username (email for cloud)
//   - CONFLUENCE_PASSWORD: Your password, used when no token is set
//   - CONFLUENCE_CONFIG: Optional YAML file providing the same settings
//   - CONFLUENCE_LOG_LEVEL: debug, info, warn or error (default info)
//
// Example usage:
//
//	export CONFLUENCE_URL=https://example.atlassian.net/wiki
//	export CONFLUENCE_USERNAME=user@example.com
//	export CONFLUENCE_TOKEN=your-api-token
//	go run ./cmd/mcp-confluence
package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/agentplexus/mcp-confluence-lite/config"
	"github.com/agentplexus/mcp-confluence-lite/confluence"
	"github.com/agentplexus/mcp-confluence-lite/mcpserver"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	// Log to stderr to keep stdout clean for JSON-RPC
	logger := newLogger(os.Stderr, os.Getenv(config.EnvLogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, os.Stdin, os.Stdout); err != nil {
		logger.Error("fatal error", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, in io.Reader, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	client := confluence.FromConfig(cfg)
	logger.Info("connected to Confluence",
		"url", cfg.BaseURL,
		"auth", cfg.AuthMode.String(),
		"info", cfg.InfoCapability.String())

	tools := mcpserver.New(client,
		mcpserver.WithInfoCapability(cfg.InfoCapability),
		mcpserver.WithLogger(logger),
	)

	return serve(ctx, logger, tools.MCPServer(), in, out)
}

// serve runs the stdio transport until the input is exhausted or ctx is
// cancelled. Cancellation is a clean shutdown.
func serve(ctx context.Context, logger *slog.Logger, srv *server.MCPServer, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(srv)
	stdio.SetErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError))

	logger.Info("starting Confluence MCP server", "version", mcpserver.ServerVersion)

	err := stdio.Listen(ctx, in, out)
	switch {
	case err == nil:
		logger.Info("input closed, shutting down")
		return nil
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		logger.Info("server shutdown requested")
		return nil
	default:
		return err
	}
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
