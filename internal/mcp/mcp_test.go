package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/apexmarketer-ai/apex/internal/connectors"
	"github.com/apexmarketer-ai/apex/internal/conversation"
	"github.com/apexmarketer-ai/apex/internal/kv"
	"github.com/apexmarketer-ai/apex/internal/model"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
	store := conversation.New(kv.NewMemory(), logger)
	registry := connectors.NewRegistry(
		connectors.NewCRM("hs-key", ""),
		connectors.NewAnalytics(""),
	)
	return New(store, registry, "test", logger)
}

func toolRequest(name string, args map[string]any) mcplib.CallToolRequest {
	return mcplib.CallToolRequest{
		Params: mcplib.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func toolText(t *testing.T, result *mcplib.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcplib.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestClassifyTool(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleClassify(context.Background(),
		toolRequest("apex_classify", map[string]any{"message": "Give me a roadmap for Q1"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var parsed struct {
		TaskType model.TaskType `json:"task_type"`
		Format   struct {
			Format    string   `json:"Format"`
			Structure []string `json:"Structure"`
		} `json:"format"`
	}
	require.NoError(t, json.Unmarshal([]byte(toolText(t, result)), &parsed))
	assert.Equal(t, model.TaskRoadmap, parsed.TaskType)
	assert.Equal(t, "Nested Markdown list", parsed.Format.Format)
	assert.NotEmpty(t, parsed.Format.Structure)
}

func TestClassifyToolRequiresMessage(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleClassify(context.Background(),
		toolRequest("apex_classify", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestCheckSafetyTool(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleCheckSafety(context.Background(),
		toolRequest("apex_check_safety", map[string]any{
			"content": "Our api_key: sk_live_abcdef123456 is ready.",
		}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var parsed struct {
		IsValid    bool     `json:"is_valid"`
		Violations []string `json:"violations"`
		Sanitized  string   `json:"sanitized"`
	}
	require.NoError(t, json.Unmarshal([]byte(toolText(t, result)), &parsed))
	assert.False(t, parsed.IsValid)
	assert.Contains(t, parsed.Violations, "API Key Exposure Prevention")
	assert.Contains(t, parsed.Sanitized, "[API_KEY_REDACTED]")
}

func TestQueryDataTool(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleQueryData(context.Background(),
		toolRequest("apex_query_data", map[string]any{
			"provider": "crm",
			"entity":   "pipeline",
			"limit":    float64(3),
		}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var parsed connectors.Result
	require.NoError(t, json.Unmarshal([]byte(toolText(t, result)), &parsed))
	assert.Equal(t, "hubspot", parsed.Meta.Source)
	assert.Equal(t, 3, parsed.Meta.PreviewSize)
}

func TestQueryDataToolErrors(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleQueryData(context.Background(),
		toolRequest("apex_query_data", map[string]any{"provider": "mailchimp"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	// Analytics is registered without credentials.
	result, err = s.handleQueryData(context.Background(),
		toolRequest("apex_query_data", map[string]any{"provider": "analytics"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestCapabilitiesResource(t *testing.T) {
	s := newTestServer(t)

	contents, err := s.handleCapabilities(context.Background(), mcplib.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcplib.TextResourceContents)
	require.True(t, ok)
	assert.Contains(t, text.Text, "ApexMarketer-AI")
	assert.Contains(t, text.Text, "Growth Strategy & Budget Allocation")
}

func TestConversationsResource(t *testing.T) {
	s := newTestServer(t)

	conv := s.conversations.CreateNew()
	conv.Title = "Launch planning"
	require.NoError(t, s.conversations.Save(context.Background(), conv))

	contents, err := s.handleConversationsRecent(context.Background(), mcplib.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcplib.TextResourceContents)
	require.True(t, ok)
	assert.Contains(t, text.Text, "Launch planning")
}
