package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/ratinglab/internal/mcp/domain"
	"github.com/louisbranch/ratinglab/internal/observability"
	"github.com/louisbranch/ratinglab/internal/platform/branding"
	"github.com/louisbranch/ratinglab/internal/simulation/storage"
)

// serverVersion identifies the MCP server version.
const serverVersion = "0.1.0"

// serverName identifies this MCP server to clients.
var serverName = branding.AppName + " MCP"

// Stores carries the optional archive backing the tools. A zero value is
// valid: the pure tools still work, archive-backed tools report that the
// archive is not configured.
type Stores struct {
	Runs      storage.RunStore
	Telemetry storage.TelemetryStore
}

type mcpToolRegistrar struct {
	matches func(any) bool
	add     func(*mcp.Server, *mcp.Tool, any)
}

func newMCPToolRegistrar[I any, O any]() mcpToolRegistrar {
	return mcpToolRegistrar{
		matches: func(handler any) bool {
			_, ok := handler.(mcp.ToolHandlerFor[I, O])
			return ok
		},
		add: func(server *mcp.Server, tool *mcp.Tool, handler any) {
			mcp.AddTool(server, tool, handler.(mcp.ToolHandlerFor[I, O]))
		},
	}
}

var mcpToolRegistrars = []mcpToolRegistrar{
	newMCPToolRegistrar[domain.SimulationRunInput, domain.SimulationRunResult](),
	newMCPToolRegistrar[domain.ExpectedScoreInput, domain.ExpectedScoreResult](),
	newMCPToolRegistrar[domain.RunListInput, domain.RunListResult](),
	newMCPToolRegistrar[domain.RunGetInput, domain.RunGetResult](),
}

func addMCPTool(server *mcp.Server, tool *mcp.Tool, handler any) error {
	if tool == nil {
		return fmt.Errorf("tool is nil")
	}
	for _, registrar := range mcpToolRegistrars {
		if registrar.matches(handler) {
			registrar.add(server, tool, handler)
			return nil
		}
	}
	return fmt.Errorf("mcp registration does not support handler type %T for tool %q", handler, tool.Name)
}

// Server hosts the MCP server.
type Server struct {
	mcpServer *mcp.Server
}

// New creates a configured MCP server with every tool registered.
func New(stores Stores) (*Server, error) {
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	emitter := observability.NewEmitter(stores.Telemetry)

	registrations := []struct {
		tool    *mcp.Tool
		handler any
	}{
		{tool: domain.SimulationRunTool(), handler: domain.SimulationRunHandler(stores.Runs, emitter)},
		{tool: domain.ExpectedScoreTool(), handler: domain.ExpectedScoreHandler()},
		{tool: domain.RunListTool(), handler: domain.RunListHandler(stores.Runs)},
		{tool: domain.RunGetTool(), handler: domain.RunGetHandler(stores.Runs)},
	}
	for _, registration := range registrations {
		if err := addMCPTool(mcpServer, registration.tool, registration.handler); err != nil {
			return nil, fmt.Errorf("register MCP tool: %w", err)
		}
	}

	return &Server{mcpServer: mcpServer}, nil
}

// Serve starts the MCP server on stdio and blocks until it stops or the
// context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// serveWithTransport starts the MCP server using the provided transport.
// Context cancellation is the normal shutdown path, not an error.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// Run creates a server over the stores and serves it on stdio until the
// context ends.
func Run(ctx context.Context, stores Stores) error {
	server, err := New(stores)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}
