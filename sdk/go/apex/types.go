package apex

import "time"

// RunRequest is one user turn submitted to the agent pipeline.
type RunRequest struct {
	// Message is the user's request. Required.
	Message string `json:"message"`

	// Context is optional extra grounding injected ahead of the message.
	Context string `json:"context,omitempty"`

	// TaskType skips automatic task classification when set. One of:
	// strategy, copy, data-insight, roadmap, api-query, audit, campaign,
	// general.
	TaskType string `json:"task_type,omitempty"`

	// ConversationID appends the turn to an existing conversation instead of
	// creating a new one.
	ConversationID string `json:"conversation_id,omitempty"`

	// Confirmed acknowledges a prior confirmation request for a sensitive
	// action.
	Confirmed bool `json:"confirmed,omitempty"`
}

// RunResult is the outcome of an agent turn. Exactly one of Reply and
// Confirmation is set: Confirmation means the server halted before
// generation and is waiting for a resubmission with Confirmed=true.
type RunResult struct {
	Reply        *Reply
	Confirmation *ConfirmationRequest
}

// Reply is a completed agent turn.
type Reply struct {
	Response       string   `json:"response"`
	ConversationID string   `json:"conversation_id,omitempty"`
	Metadata       Metadata `json:"metadata"`
}

// Metadata describes how a reply was produced.
type Metadata struct {
	TaskType              string            `json:"task_type"`
	DetectedAutomatically bool              `json:"detected_automatically"`
	Timestamp             time.Time         `json:"timestamp"`
	Model                 string            `json:"model"`
	Tokens                int               `json:"tokens"`
	SafetyValidation      SafetySummary     `json:"safety_validation"`
	ConfirmationRequired  *ConfirmationEcho `json:"confirmation_required"`
}

// SafetySummary reports the safety validation outcome for a reply.
type SafetySummary struct {
	Passed   bool     `json:"passed"`
	Warnings []string `json:"warnings"`
}

// ConfirmationEcho marks a warn-only sensitive action detected in the turn.
type ConfirmationEcho struct {
	Action          string `json:"action"`
	RequiresConsent bool   `json:"requires_consent"`
}

// ConfirmationRequest is the server's halt response for a sensitive action
// that needs explicit consent before it runs.
type ConfirmationRequest struct {
	Action      string   `json:"action"`
	Description string   `json:"description"`
	Risks       []string `json:"risks"`
	Message     string   `json:"message"`
}

// Message is one message in a stored conversation.
type Message struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Conversation is a stored conversation with its full message history.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DataMeta carries provenance for a connector preview.
type DataMeta struct {
	Source      string     `json:"source"`
	Entity      string     `json:"entity"`
	Total       int        `json:"total"`
	PreviewSize int        `json:"preview_size"`
	Period      string     `json:"period,omitempty"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
	Timestamp   time.Time  `json:"timestamp"`
}

// DataResult is a preview fetched from a marketing data connector.
type DataResult struct {
	Data any      `json:"data"`
	Meta DataMeta `json:"meta"`
}

// WriteRequest is a write operation submitted to a connector.
type WriteRequest struct {
	Entity  string           `json:"entity,omitempty"`
	Records []map[string]any `json:"records,omitempty"`
}

// WriteResult acknowledges a connector write.
type WriteResult struct {
	Message         string    `json:"message"`
	Entity          string    `json:"entity"`
	RecordsAffected int       `json:"records_affected"`
	Timestamp       time.Time `json:"timestamp"`
}

// SetupInstructions walks a user through connecting a workspace app.
type SetupInstructions struct {
	Title string   `json:"title"`
	Steps []string `json:"steps"`
	Note  string   `json:"note,omitempty"`
}

// ConnectedApp is one workspace app and its connection state.
type ConnectedApp struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Icon              string            `json:"icon"`
	Connected         bool              `json:"connected"`
	SetupInstructions SetupInstructions `json:"setup_instructions"`
}

// HealthResponse is the server's health report.
type HealthResponse struct {
	Status        string   `json:"status"`
	Agent         string   `json:"agent"`
	Version       string   `json:"version"`
	Storage       string   `json:"storage"`
	ModelReady    bool     `json:"model_ready"`
	Capabilities  []string `json:"capabilities"`
	UptimeSeconds int64    `json:"uptime_seconds"`
}
