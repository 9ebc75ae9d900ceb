package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/apexmarketer-ai/apex/internal/connectors"
	"github.com/apexmarketer-ai/apex/internal/conversation"
	"github.com/apexmarketer-ai/apex/internal/pipeline"
)

// Server is the ApexMarketer-AI HTTP server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	handlers   *Handlers
	logger     *slog.Logger
}

// Handler returns the root HTTP handler for use in tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ServerConfig holds all dependencies and configuration for creating a Server.
// Optional fields (nil-safe): Conversations, Providers, Apps, MCPServer,
// OpenAPISpec.
type ServerConfig struct {
	// Required dependencies.
	Pipeline *pipeline.Service
	Logger   *slog.Logger

	// Optional dependencies (nil = disabled).
	Conversations *conversation.Store
	Providers     *connectors.Registry
	Apps          *connectors.AppsRegistry
	MCPServer     *mcpserver.MCPServer

	// HTTP server settings.
	Port                int
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	Version             string
	StorageBackend      string
	ModelReady          bool
	MaxRequestBodyBytes int64

	// Optional embedded assets.
	OpenAPISpec []byte // Embedded OpenAPI YAML.
}

// New creates a new HTTP server with all routes configured.
func New(cfg ServerConfig) *Server {
	h := NewHandlers(HandlersDeps{
		Pipeline:            cfg.Pipeline,
		Conversations:       cfg.Conversations,
		Providers:           cfg.Providers,
		Apps:                cfg.Apps,
		Logger:              cfg.Logger,
		Version:             cfg.Version,
		StorageBackend:      cfg.StorageBackend,
		ModelReady:          cfg.ModelReady,
		MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
		OpenAPISpec:         cfg.OpenAPISpec,
	})

	mux := http.NewServeMux()

	// Agent pipeline.
	mux.HandleFunc("POST /v1/agent", h.HandleAgent)

	// Data connectors.
	mux.HandleFunc("GET /v1/data/{provider}", h.HandleDataFetch)
	mux.HandleFunc("POST /v1/data/{provider}", h.HandleDataApply)

	// Conversation history. Literal segments win over {id} under the mux's
	// precedence rules, so /current never shadows a stored conversation.
	mux.HandleFunc("GET /v1/conversations", h.HandleListConversations)
	mux.HandleFunc("POST /v1/conversations", h.HandleCreateConversation)
	mux.HandleFunc("GET /v1/conversations/current", h.HandleGetCurrentConversation)
	mux.HandleFunc("PUT /v1/conversations/current", h.HandleSetCurrentConversation)
	mux.HandleFunc("GET /v1/conversations/{id}", h.HandleGetConversation)
	mux.HandleFunc("DELETE /v1/conversations/{id}", h.HandleDeleteConversation)

	// Connected workspace apps.
	mux.HandleFunc("GET /v1/apps", h.HandleListApps)
	mux.HandleFunc("PUT /v1/apps/{id}", h.HandleUpdateApp)

	// MCP StreamableHTTP transport.
	if cfg.MCPServer != nil {
		mcpHTTP := mcpserver.NewStreamableHTTPServer(cfg.MCPServer)
		mux.Handle("/mcp", mcpHTTP)
	}

	// OpenAPI spec.
	mux.HandleFunc("GET /openapi.yaml", h.HandleOpenAPISpec)

	// Health (no middleware-sensitive state).
	mux.HandleFunc("GET /health", h.HandleHealth)

	// Middleware chain (outermost executes first):
	// request ID → security headers → tracing → logging → recovery → handler.
	var handler http.Handler = mux
	handler = recoveryMiddleware(cfg.Logger, handler)
	handler = loggingMiddleware(cfg.Logger, handler)
	handler = tracingMiddleware(handler)
	handler = securityHeadersMiddleware(handler)
	handler = requestIDMiddleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		handler:  handler,
		handlers: h,
		logger:   cfg.Logger,
	}
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
