package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/apexmarketer-ai/apex/internal/agent"
	"github.com/apexmarketer-ai/apex/internal/connectors"
	"github.com/apexmarketer-ai/apex/internal/conversation"
	"github.com/apexmarketer-ai/apex/internal/model"
	"github.com/apexmarketer-ai/apex/internal/pipeline"
)

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	pipeline            *pipeline.Service
	conversations       *conversation.Store
	providers           *connectors.Registry
	apps                *connectors.AppsRegistry
	logger              *slog.Logger
	startedAt           time.Time
	version             string
	storageBackend      string
	modelReady          bool
	maxRequestBodyBytes int64
	openapiSpec         []byte
}

// HandlersDeps bundles the dependencies for NewHandlers.
type HandlersDeps struct {
	Pipeline            *pipeline.Service
	Conversations       *conversation.Store
	Providers           *connectors.Registry
	Apps                *connectors.AppsRegistry
	Logger              *slog.Logger
	Version             string
	StorageBackend      string
	ModelReady          bool
	MaxRequestBodyBytes int64
	OpenAPISpec         []byte
}

// NewHandlers creates the handler set.
func NewHandlers(d HandlersDeps) *Handlers {
	return &Handlers{
		pipeline:            d.Pipeline,
		conversations:       d.Conversations,
		providers:           d.Providers,
		apps:                d.Apps,
		logger:              d.Logger,
		startedAt:           time.Now(),
		version:             d.Version,
		storageBackend:      d.StorageBackend,
		modelReady:          d.ModelReady,
		maxRequestBodyBytes: d.MaxRequestBodyBytes,
		openapiSpec:         d.OpenAPISpec,
	}
}

// confirmationNotice accompanies every gate-halt reply.
const confirmationNotice = "This action requires explicit confirmation before proceeding."

// HandleAgent handles POST /v1/agent: the full request pipeline for one user
// turn. Completed turns are recorded in the conversation store; halted or
// failed turns leave it untouched.
func (h *Handlers) HandleAgent(w http.ResponseWriter, r *http.Request) {
	var req model.AgentRequest
	if err := decodeJSON(w, r, &req, h.maxRequestBodyBytes); err != nil {
		handleDecodeError(w, r, err)
		return
	}

	// Trim here so the recorded turn matches the text the pipeline ran on.
	message := strings.TrimSpace(req.Message)

	preq := pipeline.Request{
		Message:   message,
		Context:   req.Context,
		Confirmed: req.Confirmed,
	}
	if req.TaskType != "" {
		taskType, ok := model.ParseTaskType(req.TaskType)
		if !ok {
			writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput,
				"unknown task_type: "+req.TaskType)
			return
		}
		preq.TaskType = taskType
		preq.TaskProvided = true
	}

	res, err := h.pipeline.Run(r.Context(), preq)
	if err != nil {
		h.writeAgentError(w, r, err)
		return
	}

	if res.Confirmation != nil {
		writeJSON(w, r, http.StatusOK, model.ConfirmationReply{
			RequiresConfirmation: true,
			Action:               res.Confirmation.Action,
			Description:          res.Confirmation.Description,
			Risks:                res.Confirmation.Risks,
			Message:              confirmationNotice,
		})
		return
	}

	reply := model.AgentReply{
		Response: res.Response,
		Metadata: res.Metadata,
	}

	if h.conversations != nil {
		conv, err := h.conversations.AppendTurn(r.Context(), req.ConversationID,
			model.Message{
				Role:      model.RoleUser,
				Content:   message,
				Timestamp: time.Now().UTC(),
			},
			model.Message{
				Role:      model.RoleAssistant,
				Content:   res.Response,
				Timestamp: res.Metadata.Timestamp,
				Metadata: map[string]any{
					"task_type": string(res.Metadata.TaskType),
					"model":     res.Metadata.Model,
					"tokens":    res.Metadata.Tokens,
				},
			})
		if err != nil {
			// The reply is already final; losing history is not a request failure.
			h.logger.Warn("failed to record conversation turn", "error", err)
		} else {
			reply.ConversationID = conv.ID
		}
	}

	writeJSON(w, r, http.StatusOK, reply)
}

func (h *Handlers) writeAgentError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *pipeline.ValidationError
	switch {
	case errors.Is(err, pipeline.ErrEmptyMessage):
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "message is required")
	case errors.Is(err, pipeline.ErrNotConfigured):
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeNotConfigured,
			"language model not configured")
	case errors.As(err, &verr):
		writeErrorDetail(w, r, http.StatusUnprocessableEntity, model.ErrorDetail{
			Code:       model.ErrCodeValidationFailed,
			Message:    "generated response failed safety validation",
			Violations: verr.Violations,
		})
	case errors.Is(err, pipeline.ErrNoContent):
		writeError(w, r, http.StatusBadGateway, model.ErrCodeUpstreamFailed,
			"language model returned no content")
	default:
		h.logger.Error("agent pipeline failed", "error", err,
			"request_id", RequestIDFromContext(r.Context()))
		writeError(w, r, http.StatusBadGateway, model.ErrCodeUpstreamFailed,
			"language model request failed")
	}
}

// HandleOpenAPISpec serves the embedded OpenAPI specification.
func (h *Handlers) HandleOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	if len(h.openapiSpec) == 0 {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.openapiSpec)
}

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, model.HealthResponse{
		Status:        "healthy",
		Agent:         agent.ApexPersona.Name,
		Version:       h.version,
		Storage:       h.storageBackend,
		ModelReady:    h.modelReady,
		Capabilities:  agent.Capabilities(),
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
	})
}
