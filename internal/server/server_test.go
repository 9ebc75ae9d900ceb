package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexmarketer-ai/apex/internal/connectors"
	"github.com/apexmarketer-ai/apex/internal/conversation"
	"github.com/apexmarketer-ai/apex/internal/kv"
	"github.com/apexmarketer-ai/apex/internal/llm"
	"github.com/apexmarketer-ai/apex/internal/model"
	"github.com/apexmarketer-ai/apex/internal/pipeline"
)

type testEnv struct {
	server *Server
	mock   *llm.MockClient
	store  *conversation.Store
}

func newTestEnv(t *testing.T, client llm.Client) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&strings.Builder{}, nil))

	mock, _ := client.(*llm.MockClient)
	medium := kv.NewMemory()
	store := conversation.New(medium, logger)

	srv := New(ServerConfig{
		Pipeline:      pipeline.New(client, logger),
		Conversations: store,
		Providers: connectors.NewRegistry(
			connectors.NewCRM("hs-key", ""),
			connectors.NewAnalytics(""),
			connectors.NewAirtable("at-key", "base-id"),
		),
		Apps:                connectors.NewAppsRegistry(medium),
		Logger:              logger,
		Port:                0,
		Version:             "test",
		StorageBackend:      "memory",
		ModelReady:          client != nil,
		MaxRequestBodyBytes: 1 << 20,
	})

	return &testEnv{server: srv, mock: mock, store: store}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Data T                  `json:"data"`
		Meta model.ResponseMeta `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Meta.RequestID)
	return envelope.Data
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) model.ErrorDetail {
	t.Helper()
	var envelope model.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Error
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, &llm.MockClient{Reply: "ok"})

	rec := env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	health := decodeData[model.HealthResponse](t, rec)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "ApexMarketer-AI", health.Agent)
	assert.Equal(t, "memory", health.Storage)
	assert.True(t, health.ModelReady)
	assert.Len(t, health.Capabilities, 10)
}

func TestAgentHappyPath(t *testing.T) {
	env := newTestEnv(t, &llm.MockClient{Reply: "Your homepage has three critical SEO gaps.", Tokens: 200})

	rec := env.do(t, http.MethodPost, "/v1/agent", model.AgentRequest{
		Message: "Audit my homepage for SEO issues",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	reply := decodeData[model.AgentReply](t, rec)
	assert.Contains(t, reply.Response, "Your homepage has three critical SEO gaps.")
	assert.Equal(t, model.TaskAudit, reply.Metadata.TaskType)
	assert.True(t, reply.Metadata.DetectedAutomatically)
	assert.True(t, reply.Metadata.SafetyValidation.Passed)
	require.NotEmpty(t, reply.ConversationID)

	// The completed turn is recorded.
	rec = env.do(t, http.MethodGet, "/v1/conversations/"+reply.ConversationID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	conv := decodeData[model.Conversation](t, rec)
	assert.Equal(t, "Audit my homepage for SEO issues", conv.Title)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, model.RoleUser, conv.Messages[0].Role)
	assert.Equal(t, model.RoleAssistant, conv.Messages[1].Role)
}

func TestAgentStoresTrimmedMessage(t *testing.T) {
	env := newTestEnv(t, &llm.MockClient{Reply: "Findings below."})

	rec := env.do(t, http.MethodPost, "/v1/agent", model.AgentRequest{
		Message: "  Audit my homepage for SEO issues  \n",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	reply := decodeData[model.AgentReply](t, rec)
	require.NotEmpty(t, reply.ConversationID)

	// The recorded user message matches the text the reply was generated
	// from, not the raw padded input.
	rec = env.do(t, http.MethodGet, "/v1/conversations/"+reply.ConversationID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	conv := decodeData[model.Conversation](t, rec)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "Audit my homepage for SEO issues", conv.Messages[0].Content)
	assert.Equal(t, "Audit my homepage for SEO issues", conv.Title)
}

func TestAgentExplicitTaskType(t *testing.T) {
	env := newTestEnv(t, &llm.MockClient{Reply: "Plan below."})

	rec := env.do(t, http.MethodPost, "/v1/agent", model.AgentRequest{
		Message:  "Help with next quarter",
		TaskType: "strategy",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	reply := decodeData[model.AgentReply](t, rec)
	assert.Equal(t, model.TaskStrategy, reply.Metadata.TaskType)
	assert.False(t, reply.Metadata.DetectedAutomatically)
}

func TestAgentUnknownTaskType(t *testing.T) {
	env := newTestEnv(t, &llm.MockClient{Reply: "unused"})

	rec := env.do(t, http.MethodPost, "/v1/agent", model.AgentRequest{
		Message:  "hello",
		TaskType: "poetry",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.ErrCodeInvalidInput, decodeError(t, rec).Code)
}

func TestAgentEmptyMessage(t *testing.T) {
	env := newTestEnv(t, &llm.MockClient{Reply: "unused"})

	rec := env.do(t, http.MethodPost, "/v1/agent", model.AgentRequest{Message: "   "})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.ErrCodeInvalidInput, decodeError(t, rec).Code)
}

func TestAgentRejectsUnknownFields(t *testing.T) {
	env := newTestEnv(t, &llm.MockClient{Reply: "unused"})

	rec := env.do(t, http.MethodPost, "/v1/agent", map[string]any{
		"message": "hello",
		"mode":    "verbose",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAgentNotConfigured(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/v1/agent", model.AgentRequest{Message: "hello"})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, model.ErrCodeNotConfigured, decodeError(t, rec).Code)
}

func TestAgentConfirmationRoundTrip(t *testing.T) {
	env := newTestEnv(t, &llm.MockClient{Reply: "Emails queued for the full list."})

	// First submission halts at the gate and stores nothing.
	rec := env.do(t, http.MethodPost, "/v1/agent", model.AgentRequest{
		Message: "Send email to all subscribers about the launch",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	confirm := decodeData[model.ConfirmationReply](t, rec)
	assert.True(t, confirm.RequiresConfirmation)
	assert.Equal(t, "bulk_email_send", confirm.Action)
	assert.NotEmpty(t, confirm.Risks)
	assert.Equal(t, confirmationNotice, confirm.Message)
	assert.Nil(t, env.mock.LastMessages, "model must not run before confirmation")

	rec = env.do(t, http.MethodGet, "/v1/conversations", nil)
	assert.Empty(t, decodeData[[]model.Conversation](t, rec))

	// Confirmed resubmission goes straight to generation.
	rec = env.do(t, http.MethodPost, "/v1/agent", model.AgentRequest{
		Message:   "Send email to all subscribers about the launch",
		Confirmed: true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	reply := decodeData[model.AgentReply](t, rec)
	assert.Contains(t, reply.Response, "Emails queued for the full list.")
	assert.NotEmpty(t, reply.ConversationID)
}

func TestAgentUnsafeResponseNotStored(t *testing.T) {
	env := newTestEnv(t, &llm.MockClient{Reply: "Charge card 4111 1111 1111 1111 now."})

	rec := env.do(t, http.MethodPost, "/v1/agent", model.AgentRequest{Message: "hello"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	detail := decodeError(t, rec)
	assert.Equal(t, model.ErrCodeValidationFailed, detail.Code)
	assert.Contains(t, detail.Violations, "PII Exposure Prevention")

	// Nothing reaches the store on a failed turn.
	rec = env.do(t, http.MethodGet, "/v1/conversations", nil)
	assert.Empty(t, decodeData[[]model.Conversation](t, rec))
}

func TestAgentAppendsToExistingConversation(t *testing.T) {
	env := newTestEnv(t, &llm.MockClient{Reply: "First answer."})

	rec := env.do(t, http.MethodPost, "/v1/agent", model.AgentRequest{Message: "Plan a launch campaign"})
	require.Equal(t, http.StatusOK, rec.Code)
	first := decodeData[model.AgentReply](t, rec)

	env.mock.Reply = "Second answer."
	rec = env.do(t, http.MethodPost, "/v1/agent", model.AgentRequest{
		Message:        "Refine the timeline",
		ConversationID: first.ConversationID,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	second := decodeData[model.AgentReply](t, rec)
	assert.Equal(t, first.ConversationID, second.ConversationID)

	rec = env.do(t, http.MethodGet, "/v1/conversations/"+first.ConversationID, nil)
	conv := decodeData[model.Conversation](t, rec)
	assert.Len(t, conv.Messages, 4)
	assert.Equal(t, "Plan a launch campaign", conv.Title)
}

func TestDataFetchCRM(t *testing.T) {
	env := newTestEnv(t, &llm.MockClient{Reply: "ok"})

	rec := env.do(t, http.MethodGet, "/v1/data/crm?entity=deals&limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	res := decodeData[connectors.Result](t, rec)
	assert.Equal(t, "hubspot", res.Meta.Source)
	assert.Equal(t, "deals", res.Meta.Entity)
	assert.Equal(t, 5, res.Meta.Total)
	assert.Equal(t, 2, res.Meta.PreviewSize)
}

func TestDataFetchUnknownProvider(t *testing.T) {
	env := newTestEnv(t, &llm.MockClient{Reply: "ok"})

	rec := env.do(t, http.MethodGet, "/v1/data/mailchimp", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, model.ErrCodeNotFound, decodeError(t, rec).Code)
}

func TestDataFetchNotConfigured(t *testing.T) {
	env := newTestEnv(t, &llm.MockClient{Reply: "ok"})

	// Analytics is registered without credentials in the test env.
	rec := env.do(t, http.MethodGet, "/v1/data/analytics", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, model.ErrCodeNotConfigured, decodeError(t, rec).Code)
}

func TestDataFetchInvalidLimit(t *testing.T) {
	env := newTestEnv(t, &llm.MockClient{Reply: "ok"})

	rec := env.do(t, http.MethodGet, "/v1/data/crm?limit=-3", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDataApply(t *testing.T) {
	env := newTestEnv(t, &llm.MockClient{Reply: "ok"})

	rec := env.do(t, http.MethodPost, "/v1/data/crm", connectors.WriteRequest{
		Entity:  "contacts",
		Records: []map[string]any{{"name": "Ana Silva"}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	res := decodeData[connectors.WriteResult](t, rec)
	assert.Equal(t, "contacts updated successfully", res.Message)
	assert.Equal(t, 1, res.RecordsAffected)
}

func TestConversationLifecycle(t *testing.T) {
	env := newTestEnv(t, &llm.MockClient{Reply: "ok"})

	// Create.
	rec := env.do(t, http.MethodPost, "/v1/conversations", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	conv := decodeData[model.Conversation](t, rec)
	assert.Equal(t, conversation.DefaultTitle, conv.Title)

	// Created conversation becomes current.
	rec = env.do(t, http.MethodGet, "/v1/conversations/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, conv.ID, decodeData[model.Conversation](t, rec).ID)

	// List.
	rec = env.do(t, http.MethodGet, "/v1/conversations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeData[[]model.Conversation](t, rec), 1)

	// Delete clears the current pointer.
	rec = env.do(t, http.MethodDelete, "/v1/conversations/"+conv.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/conversations/current", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/conversations/"+conv.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetCurrentConversation(t *testing.T) {
	env := newTestEnv(t, &llm.MockClient{Reply: "ok"})

	rec := env.do(t, http.MethodPost, "/v1/conversations", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	conv := decodeData[model.Conversation](t, rec)

	// Pointing at a missing conversation is rejected.
	rec = env.do(t, http.MethodPut, "/v1/conversations/current", map[string]string{"id": "missing"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPut, "/v1/conversations/current", map[string]string{"id": conv.ID})
	require.Equal(t, http.StatusOK, rec.Code)

	// An empty id clears the pointer.
	rec = env.do(t, http.MethodPut, "/v1/conversations/current", map[string]string{"id": ""})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodGet, "/v1/conversations/current", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCurrentConversationDanglingPointer(t *testing.T) {
	env := newTestEnv(t, &llm.MockClient{Reply: "ok"})
	ctx := context.Background()

	rec := env.do(t, http.MethodPost, "/v1/conversations", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	conv := decodeData[model.Conversation](t, rec)

	// Remove the target behind the API's back, as cap eviction would, so the
	// pointer survives while the conversation does not.
	require.NoError(t, env.store.Delete(ctx, conv.ID))
	require.NoError(t, env.store.SetCurrentID(ctx, conv.ID))

	rec = env.do(t, http.MethodGet, "/v1/conversations/current", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, model.ErrCodeNotFound, decodeError(t, rec).Code)
}

func TestConnectedApps(t *testing.T) {
	env := newTestEnv(t, &llm.MockClient{Reply: "ok"})

	rec := env.do(t, http.MethodGet, "/v1/apps", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	apps := decodeData[[]connectors.ConnectedApp](t, rec)
	require.Len(t, apps, 3)

	rec = env.do(t, http.MethodPut, "/v1/apps/notion", map[string]bool{"connected": true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeData[connectors.ConnectedApp](t, rec).Connected)

	rec = env.do(t, http.MethodPut, "/v1/apps/jira", map[string]bool{"connected": true})
	require.Equal(t, http.StatusNotFound, rec.Code)
}
