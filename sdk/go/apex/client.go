package apex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Config holds the settings needed to construct a Client.
type Config struct {
	// BaseURL is the root URL of the ApexMarketer-AI server
	// (e.g. "http://localhost:8080").
	BaseURL string

	// HTTPClient is an optional custom HTTP client. If nil, a default client
	// with a 30-second timeout is used.
	HTTPClient *http.Client

	// Timeout applies to individual API requests. Defaults to 30 seconds.
	// Agent turns can take a while; size this to your model's latency.
	Timeout time.Duration
}

// Client is an HTTP client for the ApexMarketer-AI API.
// All methods are safe for concurrent use.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a Client from the given configuration.
// Returns an error if BaseURL is empty.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("apex: BaseURL is required")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: baseURL,
		client:  httpClient,
	}, nil
}

// agentWire is the union of the completed-turn and confirmation-halt
// response shapes for POST /v1/agent, split into RunResult by Run.
type agentWire struct {
	RequiresConfirmation bool     `json:"requires_confirmation"`
	Action               string   `json:"action"`
	Description          string   `json:"description"`
	Risks                []string `json:"risks"`
	Message              string   `json:"message"`

	Response       string   `json:"response"`
	ConversationID string   `json:"conversation_id"`
	Metadata       Metadata `json:"metadata"`
}

// Run submits one user turn to the agent pipeline. When the message matches
// a sensitive action and req.Confirmed is false, the result carries a
// Confirmation instead of a Reply; resubmit with Confirmed=true to proceed.
func (c *Client) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	var wire agentWire
	if err := c.post(ctx, "/v1/agent", req, &wire); err != nil {
		return nil, err
	}

	if wire.RequiresConfirmation {
		return &RunResult{Confirmation: &ConfirmationRequest{
			Action:      wire.Action,
			Description: wire.Description,
			Risks:       wire.Risks,
			Message:     wire.Message,
		}}, nil
	}

	return &RunResult{Reply: &Reply{
		Response:       wire.Response,
		ConversationID: wire.ConversationID,
		Metadata:       wire.Metadata,
	}}, nil
}

// FetchOptions are optional parameters for FetchData.
type FetchOptions struct {
	// Entity or metric to fetch. Provider-specific; the server applies a
	// default when empty.
	Entity string
	// Limit caps the preview size. Default 5.
	Limit int
	// Period restricts analytics queries (e.g. "30d"). Ignored by other
	// providers.
	Period string
}

// FetchData retrieves a data preview from a marketing connector
// ("crm", "analytics", or "airtable").
func (c *Client) FetchData(ctx context.Context, provider string, opts *FetchOptions) (*DataResult, error) {
	params := url.Values{}
	if opts != nil {
		if opts.Entity != "" {
			params.Set("entity", opts.Entity)
		}
		if opts.Limit > 0 {
			params.Set("limit", strconv.Itoa(opts.Limit))
		}
		if opts.Period != "" {
			params.Set("period", opts.Period)
		}
	}

	path := "/v1/data/" + url.PathEscape(provider)
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	var resp DataResult
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ApplyData submits a write operation to a marketing connector.
func (c *Client) ApplyData(ctx context.Context, provider string, req WriteRequest) (*WriteResult, error) {
	var resp WriteResult
	if err := c.post(ctx, "/v1/data/"+url.PathEscape(provider), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListConversations returns stored conversations, most recent first.
func (c *Client) ListConversations(ctx context.Context) ([]Conversation, error) {
	var resp []Conversation
	if err := c.get(ctx, "/v1/conversations", &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CreateConversation starts a new empty conversation and makes it current.
func (c *Client) CreateConversation(ctx context.Context) (*Conversation, error) {
	var resp Conversation
	if err := c.post(ctx, "/v1/conversations", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetConversation retrieves one conversation by ID.
func (c *Client) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	var resp Conversation
	if err := c.get(ctx, "/v1/conversations/"+url.PathEscape(id), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteConversation removes a conversation. Deleting the current
// conversation also clears the current pointer.
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	return c.doDelete(ctx, "/v1/conversations/"+url.PathEscape(id), nil)
}

// CurrentConversation returns the conversation the UI is focused on.
// Returns a 404 error when no current conversation is set.
func (c *Client) CurrentConversation(ctx context.Context) (*Conversation, error) {
	var resp Conversation
	if err := c.get(ctx, "/v1/conversations/current", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetCurrentConversation points the current-conversation marker at id.
// An empty id clears the marker.
func (c *Client) SetCurrentConversation(ctx context.Context, id string) error {
	body := map[string]string{"id": id}
	return c.put(ctx, "/v1/conversations/current", body, nil)
}

// ListApps returns the workspace app catalog with connection state and
// setup instructions.
func (c *Client) ListApps(ctx context.Context) ([]ConnectedApp, error) {
	var resp []ConnectedApp
	if err := c.get(ctx, "/v1/apps", &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// SetAppConnected connects or disconnects a workspace app and returns its
// updated state.
func (c *Client) SetAppConnected(ctx context.Context, id string, connected bool) (*ConnectedApp, error) {
	body := map[string]bool{"connected": connected}
	var resp ConnectedApp
	if err := c.put(ctx, "/v1/apps/"+url.PathEscape(id), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health checks the server's health status.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.get(ctx, "/health", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ---------------------------------------------------------------------------
// HTTP transport
// ---------------------------------------------------------------------------

// apiEnvelope is the server's standard response wrapper.
type apiEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// apiErrorEnvelope is the server's standard error response wrapper.
type apiErrorEnvelope struct {
	Error struct {
		Code       string   `json:"code"`
		Message    string   `json:"message"`
		Violations []string `json:"violations"`
	} `json:"error"`
}

func (c *Client) post(ctx context.Context, path string, body any, dest any) error {
	return c.send(ctx, http.MethodPost, path, body, dest)
}

func (c *Client) put(ctx context.Context, path string, body any, dest any) error {
	return c.send(ctx, http.MethodPut, path, body, dest)
}

func (c *Client) send(ctx context.Context, method, path string, body any, dest any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("apex: marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("apex: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doRequest(req, dest)
}

func (c *Client) get(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("apex: create request: %w", err)
	}

	return c.doRequest(req, dest)
}

func (c *Client) doDelete(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("apex: create request: %w", err)
	}

	return c.doRequest(req, dest)
}

func (c *Client) doRequest(req *http.Request, dest any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("apex: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	return handleResponse(resp, dest)
}

func handleResponse(resp *http.Response, dest any) error {
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("apex: read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return parseErrorResponse(resp.StatusCode, bodyBytes)
	}

	if resp.StatusCode == http.StatusNoContent || dest == nil {
		return nil
	}

	// Unwrap the server's { "data": ... } envelope.
	var envelope apiEnvelope
	if err := json.Unmarshal(bodyBytes, &envelope); err != nil {
		return fmt.Errorf("apex: decode response envelope: %w", err)
	}

	if envelope.Data == nil {
		// Fallback: some endpoints may not wrap in "data".
		return json.Unmarshal(bodyBytes, dest)
	}

	return json.Unmarshal(envelope.Data, dest)
}

func parseErrorResponse(statusCode int, body []byte) *Error {
	apiErr := &Error{StatusCode: statusCode}

	var envelope apiErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
		apiErr.Violations = envelope.Error.Violations
	} else {
		apiErr.Code = http.StatusText(statusCode)
		apiErr.Message = string(body)
	}

	return apiErr
}
