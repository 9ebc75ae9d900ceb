package apex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockServer creates an httptest server that mimics the ApexMarketer-AI API.
func mockServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for pattern, handler := range handlers {
		mux.HandleFunc(pattern, handler)
	}
	return httptest.NewServer(mux)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	c, err := NewClient(Config{
		BaseURL: serverURL,
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)
}

func TestRunCompletedTurn(t *testing.T) {
	srv := mockServer(t, map[string]http.HandlerFunc{
		"POST /v1/agent": func(w http.ResponseWriter, r *http.Request) {
			var req RunRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "Build a product launch roadmap", req.Message)

			writeJSON(w, http.StatusOK, map[string]any{
				"data": map[string]any{
					"response":        "# Launch Roadmap",
					"conversation_id": "conv-1",
					"metadata": map[string]any{
						"task_type":              "roadmap",
						"detected_automatically": true,
						"model":                  "gpt-4-turbo-preview",
						"tokens":                 321,
						"safety_validation":      map[string]any{"passed": true, "warnings": []string{}},
					},
				},
			})
		},
	})
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res, err := c.Run(context.Background(), RunRequest{Message: "Build a product launch roadmap"})
	require.NoError(t, err)
	require.NotNil(t, res.Reply)
	assert.Nil(t, res.Confirmation)
	assert.Equal(t, "# Launch Roadmap", res.Reply.Response)
	assert.Equal(t, "conv-1", res.Reply.ConversationID)
	assert.Equal(t, "roadmap", res.Reply.Metadata.TaskType)
	assert.True(t, res.Reply.Metadata.DetectedAutomatically)
	assert.True(t, res.Reply.Metadata.SafetyValidation.Passed)
}

func TestRunConfirmationHalt(t *testing.T) {
	srv := mockServer(t, map[string]http.HandlerFunc{
		"POST /v1/agent": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"data": map[string]any{
					"requires_confirmation": true,
					"action":                "bulk_email_send",
					"description":           "Send emails to your entire subscriber list",
					"risks":                 []string{"Cannot be recalled once sent"},
					"message":               "This action requires explicit confirmation before proceeding.",
				},
			})
		},
	})
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res, err := c.Run(context.Background(), RunRequest{Message: "Send email to all subscribers"})
	require.NoError(t, err)
	require.NotNil(t, res.Confirmation)
	assert.Nil(t, res.Reply)
	assert.Equal(t, "bulk_email_send", res.Confirmation.Action)
	assert.NotEmpty(t, res.Confirmation.Risks)
}

func TestRunValidationFailure(t *testing.T) {
	srv := mockServer(t, map[string]http.HandlerFunc{
		"POST /v1/agent": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error": map[string]any{
					"code":       "validation_failed",
					"message":    "generated response failed safety validation",
					"violations": []string{"PII Exposure Prevention"},
				},
			})
		},
	})
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Run(context.Background(), RunRequest{Message: "hello"})
	require.Error(t, err)
	assert.True(t, IsValidationFailed(err))

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "validation_failed", apiErr.Code)
	assert.Contains(t, apiErr.Violations, "PII Exposure Prevention")
}

func TestFetchData(t *testing.T) {
	srv := mockServer(t, map[string]http.HandlerFunc{
		"GET /v1/data/crm": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "deals", r.URL.Query().Get("entity"))
			assert.Equal(t, "2", r.URL.Query().Get("limit"))

			writeJSON(w, http.StatusOK, map[string]any{
				"data": map[string]any{
					"data": []map[string]any{{"name": "Acme Corp"}, {"name": "TechStart"}},
					"meta": map[string]any{
						"source":       "hubspot",
						"entity":       "deals",
						"total":        8,
						"preview_size": 2,
					},
				},
			})
		},
	})
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res, err := c.FetchData(context.Background(), "crm", &FetchOptions{Entity: "deals", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, "hubspot", res.Meta.Source)
	assert.Equal(t, 8, res.Meta.Total)
	assert.Equal(t, 2, res.Meta.PreviewSize)
}

func TestFetchDataNotConfigured(t *testing.T) {
	srv := mockServer(t, map[string]http.HandlerFunc{
		"GET /v1/data/analytics": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"error": map[string]any{
					"code":    "not_configured",
					"message": "google_analytics_4 credentials not configured",
				},
			})
		},
	})
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.FetchData(context.Background(), "analytics", nil)
	require.Error(t, err)
	assert.True(t, IsNotConfigured(err))
}

func TestConversationLifecycle(t *testing.T) {
	conv := map[string]any{
		"id":         "conv-42",
		"title":      "New Conversation",
		"messages":   []any{},
		"created_at": time.Now().UTC().Format(time.RFC3339),
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	}

	srv := mockServer(t, map[string]http.HandlerFunc{
		"POST /v1/conversations": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusCreated, map[string]any{"data": conv})
		},
		"GET /v1/conversations": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"data": []any{conv}})
		},
		"GET /v1/conversations/current": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"data": conv})
		},
		"DELETE /v1/conversations/conv-42": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"deleted": true}})
		},
	})
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	ctx := context.Background()

	created, err := c.CreateConversation(ctx)
	require.NoError(t, err)
	assert.Equal(t, "conv-42", created.ID)

	list, err := c.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	current, err := c.CurrentConversation(ctx)
	require.NoError(t, err)
	assert.Equal(t, "conv-42", current.ID)

	require.NoError(t, c.DeleteConversation(ctx, "conv-42"))
}

func TestGetConversationNotFound(t *testing.T) {
	srv := mockServer(t, map[string]http.HandlerFunc{
		"GET /v1/conversations/missing": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"error": map[string]any{
					"code":    "not_found",
					"message": "conversation not found",
				},
			})
		},
	})
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.GetConversation(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestSetAppConnected(t *testing.T) {
	srv := mockServer(t, map[string]http.HandlerFunc{
		"PUT /v1/apps/notion": func(w http.ResponseWriter, r *http.Request) {
			var body map[string]bool
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.True(t, body["connected"])

			writeJSON(w, http.StatusOK, map[string]any{
				"data": map[string]any{
					"id":        "notion",
					"name":      "Notion",
					"connected": true,
				},
			})
		},
	})
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	app, err := c.SetAppConnected(context.Background(), "notion", true)
	require.NoError(t, err)
	assert.True(t, app.Connected)
}

func TestHealth(t *testing.T) {
	srv := mockServer(t, map[string]http.HandlerFunc{
		"GET /health": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"data": map[string]any{
					"status":      "healthy",
					"agent":       "ApexMarketer-AI",
					"model_ready": true,
				},
			})
		},
	})
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", h.Status)
	assert.Equal(t, "ApexMarketer-AI", h.Agent)
	assert.True(t, h.ModelReady)
}
