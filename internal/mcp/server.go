package mcp

import (
	"context"
	"net/http"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	mcp "github.com/mark3labs/mcp-go/mcp"
	srv "github.com/mark3labs/mcp-go/server"

	"github.com/Laisky/image-mcp/internal/mcp/tools"
	"github.com/Laisky/image-mcp/library/log"
)

type ctxKey string

const (
	keyAuthorization ctxKey = "authorization"
)

const (
	serverName    = "image-mcp"
	serverVersion = "1.0.0"

	serverInstructions = "Use search_images to find direct image URLs for a query, " +
		"upload_image or save_images to persist images into blob storage with signed links, " +
		"and download_image to copy a stored blob to a local path."
)

// Toolset bundles the tool implementations the server can register.
// A nil entry simply leaves that tool unregistered.
type Toolset struct {
	SearchImages  tools.Tool
	UploadImage   tools.Tool
	SaveImages    tools.Tool
	DownloadImage tools.Tool
}

// Server wraps the MCP server state for the HTTP and stdio transports.
type Server struct {
	mcpServer *srv.MCPServer
	handler   http.Handler
	logger    logSDK.Logger

	registered []string
}

// NewServer constructs an MCP server exposing the enabled image tools
// under a single streamable HTTP handler.
func NewServer(toolset Toolset, settings ToolsSettings, logger logSDK.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Logger
	}

	hooks := newMCPHooks(logger.Named("mcp_hooks"))

	mcpServer := srv.NewMCPServer(
		serverName,
		serverVersion,
		srv.WithToolCapabilities(true),
		srv.WithInstructions(serverInstructions),
		srv.WithRecovery(),
		srv.WithHooks(hooks),
	)

	streamable := srv.NewStreamableHTTPServer(
		mcpServer,
		srv.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return context.WithValue(ctx, keyAuthorization, r.Header.Get("Authorization"))
		}),
	)

	s := &Server{
		mcpServer: mcpServer,
		handler:   streamable,
		logger:    logger.Named("mcp"),
	}

	s.registerTool(toolset.SearchImages, settings.SearchImagesEnabled)
	s.registerTool(toolset.UploadImage, settings.UploadImageEnabled)
	s.registerTool(toolset.SaveImages, settings.SaveImagesEnabled)
	s.registerTool(toolset.DownloadImage, settings.DownloadImageEnabled)

	if len(s.registered) == 0 {
		return nil, errors.New("no MCP tool is enabled")
	}

	s.logger.Info("mcp server ready", zap.Strings("tools", s.registered))
	return s, nil
}

func (s *Server) registerTool(tool tools.Tool, enabled bool) {
	if tool == nil {
		return
	}

	definition := tool.Definition()
	if !enabled {
		s.logger.Info("mcp tool disabled by config", zap.String("tool", definition.Name))
		return
	}

	s.mcpServer.AddTool(definition, tool.Handle)
	s.registered = append(s.registered, definition.Name)
}

// RegisteredTools returns the names of the tools available to clients.
func (s *Server) RegisteredTools() []string {
	return append([]string(nil), s.registered...)
}

// Handler returns the HTTP handler that should be mounted to serve MCP traffic.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ServeStdio blocks serving the MCP protocol over stdin/stdout.
func (s *Server) ServeStdio() error {
	if err := srv.ServeStdio(s.mcpServer); err != nil {
		return errors.Wrap(err, "serve mcp over stdio")
	}
	return nil
}

func newMCPHooks(logger logSDK.Logger) *srv.Hooks {
	if logger == nil {
		return nil
	}

	hooks := &srv.Hooks{}

	hooks.AddBeforeAny(func(ctx context.Context, id any, method mcp.MCPMethod, message any) {
		fields := hookLogFields(ctx, id, method)
		if message != nil {
			fields = append(fields, zap.Any("request", message))
		}
		logger.Debug("mcp request received", fields...)
	})

	hooks.AddOnSuccess(func(ctx context.Context, id any, method mcp.MCPMethod, message any, result any) {
		fields := hookLogFields(ctx, id, method)
		if result != nil {
			fields = append(fields, zap.Any("response", result))
		}
		logger.Info("mcp request succeeded", fields...)
	})

	hooks.AddOnError(func(ctx context.Context, id any, method mcp.MCPMethod, message any, err error) {
		fields := hookLogFields(ctx, id, method)
		if message != nil {
			fields = append(fields, zap.Any("request", message))
		}
		fields = append(fields, zap.Error(err))
		logger.Error("mcp request failed", fields...)
	})

	hooks.AddOnRegisterSession(func(ctx context.Context, session srv.ClientSession) {
		logger.Info("mcp session registered", zap.String("session_id", session.SessionID()))
	})

	hooks.AddOnUnregisterSession(func(ctx context.Context, session srv.ClientSession) {
		logger.Info("mcp session unregistered", zap.String("session_id", session.SessionID()))
	})

	return hooks
}

func hookLogFields(ctx context.Context, id any, method mcp.MCPMethod) []zap.Field {
	fields := []zap.Field{
		zap.Any("request_id", id),
		zap.String("method", string(method)),
	}

	if session := srv.ClientSessionFromContext(ctx); session != nil {
		fields = append(fields, zap.String("session_id", session.SessionID()))
	}

	return fields
}
