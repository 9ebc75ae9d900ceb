// Package mcp implements the Model Context Protocol server for ApexMarketer-AI.
//
// The MCP server exposes the assistant's classification, safety, and data
// capabilities as tools, allowing MCP-compatible agents to reuse the same
// pipeline stages the HTTP API runs.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/apexmarketer-ai/apex/internal/agent"
	"github.com/apexmarketer-ai/apex/internal/connectors"
	"github.com/apexmarketer-ai/apex/internal/conversation"
	"github.com/apexmarketer-ai/apex/internal/safety"
)

// Server wraps the MCP server with the assistant's service layer.
type Server struct {
	mcpServer     *mcpserver.MCPServer
	conversations *conversation.Store
	providers     *connectors.Registry
	logger        *slog.Logger
}

// New creates and configures a new MCP server with all resources and tools.
// conversations and providers may be nil; the corresponding surfaces then
// report empty or unavailable results.
func New(conversations *conversation.Store, providers *connectors.Registry, version string, logger *slog.Logger) *Server {
	s := &Server{
		conversations: conversations,
		providers:     providers,
		logger:        logger,
	}

	s.mcpServer = mcpserver.NewMCPServer(
		"apex",
		version,
		mcpserver.WithResourceCapabilities(true, true),
		mcpserver.WithToolCapabilities(true),
	)

	s.registerResources()
	s.registerTools()

	return s
}

// MCPServer returns the underlying mcp-go server for transport setup.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

func (s *Server) registerResources() {
	// apex://capabilities — the assistant persona and expertise catalog.
	s.mcpServer.AddResource(
		mcplib.NewResource(
			"apex://capabilities",
			"Assistant Capabilities",
			mcplib.WithResourceDescription("Persona profile and marketing expertise catalog"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleCapabilities,
	)

	// apex://conversations/recent — stored conversation history.
	s.mcpServer.AddResource(
		mcplib.NewResource(
			"apex://conversations/recent",
			"Recent Conversations",
			mcplib.WithResourceDescription("Stored conversations, most recent first"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleConversationsRecent,
	)
}

func (s *Server) registerTools() {
	// apex_classify — task type detection plus the matching response format.
	s.mcpServer.AddTool(
		mcplib.NewTool("apex_classify",
			mcplib.WithDescription("Classify a marketing request into a task type and return the response format it maps to"),
			mcplib.WithString("message", mcplib.Description("The user message to classify"), mcplib.Required()),
		),
		s.handleClassify,
	)

	// apex_check_safety — run the safety validator and sanitizer over text.
	s.mcpServer.AddTool(
		mcplib.NewTool("apex_check_safety",
			mcplib.WithDescription("Validate text against the safety rule catalog and return violations, warnings, and the sanitized text"),
			mcplib.WithString("content", mcplib.Description("Text to validate"), mcplib.Required()),
		),
		s.handleCheckSafety,
	)

	// apex_query_data — fetch a preview from a data connector.
	s.mcpServer.AddTool(
		mcplib.NewTool("apex_query_data",
			mcplib.WithDescription("Fetch a bounded preview from a marketing data connector (crm, analytics, airtable)"),
			mcplib.WithString("provider", mcplib.Description("Connector name"), mcplib.Required()),
			mcplib.WithString("entity", mcplib.Description("Provider-specific entity or metric name")),
			mcplib.WithNumber("limit", mcplib.Description("Maximum preview rows")),
		),
		s.handleQueryData,
	)
}

func (s *Server) handleCapabilities(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(map[string]any{
		"persona":   agent.ApexPersona,
		"expertise": agent.ExpertiseAreas,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcp: marshal capabilities: %w", err)
	}

	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      "apex://capabilities",
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleConversationsRecent(ctx context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	var conversations any = []any{}
	if s.conversations != nil {
		conversations = s.conversations.ListAll(ctx)
	}

	data, err := json.MarshalIndent(conversations, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcp: marshal conversations: %w", err)
	}

	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      "apex://conversations/recent",
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleClassify(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	message := request.GetString("message", "")
	if message == "" {
		return errorResult("message is required"), nil
	}

	taskType := agent.DetectTaskType(message)
	format := agent.FormatFor(taskType)

	resultData, _ := json.MarshalIndent(map[string]any{
		"task_type": taskType,
		"format":    format,
	}, "", "  ")
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: string(resultData)},
		},
	}, nil
}

func (s *Server) handleCheckSafety(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	content := request.GetString("content", "")
	if content == "" {
		return errorResult("content is required"), nil
	}

	validation := safety.Validate(content)

	resultData, _ := json.MarshalIndent(map[string]any{
		"is_valid":   validation.IsValid,
		"violations": validation.RuleNames(),
		"warnings":   validation.Warnings,
		"sanitized":  safety.Sanitize(content),
	}, "", "  ")
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: string(resultData)},
		},
	}, nil
}

func (s *Server) handleQueryData(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	if s.providers == nil {
		return errorResult("data connectors are not enabled"), nil
	}

	name := request.GetString("provider", "")
	if name == "" {
		return errorResult("provider is required"), nil
	}
	provider, err := s.providers.Lookup(name)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	res, err := provider.Fetch(ctx, connectors.Query{
		Entity: request.GetString("entity", ""),
		Limit:  int(request.GetFloat("limit", 0)),
	})
	if err != nil {
		return errorResult(fmt.Sprintf("failed to fetch %s data: %v", name, err)), nil
	}

	resultData, _ := json.MarshalIndent(res, "", "  ")
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: string(resultData)},
		},
	}, nil
}

func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
