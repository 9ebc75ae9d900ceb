package model

import "time"

// Error codes returned in the API error envelope.
const (
	ErrCodeInvalidInput     = "invalid_input"
	ErrCodeNotConfigured    = "not_configured"
	ErrCodeUpstreamFailed   = "upstream_failed"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeNotFound         = "not_found"
	ErrCodeInternal         = "internal_error"
)

// APIResponse is the standard success envelope.
type APIResponse struct {
	Data any          `json:"data"`
	Meta ResponseMeta `json:"meta"`
}

// APIError is the standard error envelope.
type APIError struct {
	Error ErrorDetail  `json:"error"`
	Meta  ResponseMeta `json:"meta"`
}

// ErrorDetail carries a machine-readable code and a human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Violations names the safety rules that failed; present only on
	// validation_failed errors.
	Violations []string `json:"violations,omitempty"`
	Details    string   `json:"details,omitempty"`
}

// ResponseMeta is attached to every response.
type ResponseMeta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// AgentRequest is the body of POST /v1/agent.
type AgentRequest struct {
	Message        string `json:"message"`
	Context        string `json:"context,omitempty"`
	TaskType       string `json:"task_type,omitempty"`
	Confirmed      bool   `json:"confirmed,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// AgentReply is the successful pipeline output. ConversationID names the
// conversation the turn was recorded under, when persistence is enabled.
type AgentReply struct {
	Response       string        `json:"response"`
	ConversationID string        `json:"conversation_id,omitempty"`
	Metadata       AgentMetadata `json:"metadata"`
}

// AgentMetadata describes how a reply was produced.
type AgentMetadata struct {
	TaskType              TaskType          `json:"task_type"`
	DetectedAutomatically bool              `json:"detected_automatically"`
	Timestamp             time.Time         `json:"timestamp"`
	Model                 string            `json:"model"`
	Tokens                int               `json:"tokens"`
	SafetyValidation      SafetySummary     `json:"safety_validation"`
	ConfirmationRequired  *ConfirmationEcho `json:"confirmation_required"`
}

// SafetySummary reports the validator outcome accompanying a successful reply.
type SafetySummary struct {
	Passed   bool     `json:"passed"`
	Warnings []string `json:"warnings"`
}

// ConfirmationEcho is the informational gate echo carried in reply metadata.
// Non-nil when the gate matched without requiring explicit consent
// (budget_allocation is warn-only and never halts the pipeline).
type ConfirmationEcho struct {
	Action          string `json:"action"`
	RequiresConsent bool   `json:"requires_consent"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status        string   `json:"status"`
	Agent         string   `json:"agent"`
	Version       string   `json:"version"`
	Storage       string   `json:"storage"`
	ModelReady    bool     `json:"model_ready"`
	Capabilities  []string `json:"capabilities"`
	UptimeSeconds int64    `json:"uptime_seconds"`
}

// ConfirmationReply is the terminal gate-halt output. The caller must
// resubmit the identical message with Confirmed set; no pending-action state
// is held server-side between the halt and the resubmission.
type ConfirmationReply struct {
	RequiresConfirmation bool     `json:"requires_confirmation"`
	Action               string   `json:"action"`
	Description          string   `json:"description"`
	Risks                []string `json:"risks"`
	Message              string   `json:"message"`
}
