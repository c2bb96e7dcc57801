// Package mcp exposes pipeline results to coding agents over the Model
// Context Protocol.
package mcp

import (
	"context"
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/glot/pkg/mcplog"
	"github.com/gnana997/glot/pkg/pipeline"
)

const serverVersion = "0.1.0-dev"

// Server answers tool calls by running the pipeline over the configured
// project. Every call sees the files as they are on disk at that moment.
type Server struct {
	mcpServer *server.MCPServer
	cfg       pipeline.Config
	runner    *pipeline.Runner
	logger    *mcplog.Logger // nil disables the tool-call log

	// runMu serializes runs; a Runner must not be used concurrently.
	runMu sync.Mutex
}

// NewServer creates a server scanning with cfg. logger may be nil.
func NewServer(cfg pipeline.Config, runner *pipeline.Runner, logger *mcplog.Logger) *Server {
	s := &Server{cfg: cfg, runner: runner, logger: logger}

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if logger != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}
	s.mcpServer = server.NewMCPServer("glot", serverVersion, opts...)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: scanOverviewTool(), Handler: s.handleScanOverview},
		server.ServerTool{Tool: listUnresolvedTool(), Handler: s.handleListUnresolved},
		server.ServerTool{Tool: listResolvedKeysTool(), Handler: s.handleListResolvedKeys},
		server.ServerTool{Tool: scanHardcodedTool(), Handler: s.handleScanHardcoded},
		server.ServerTool{Tool: getConfigTool(), Handler: s.handleGetConfig},
	)
	return s
}

// ServeStdio serves on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) scan(ctx context.Context) (*pipeline.Result, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.runner.Run(ctx, s.cfg)
}
