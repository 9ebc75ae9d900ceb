// Package pipeline runs a user message through the full request flow:
// confirmation gate, task classification, prompt construction, generation,
// safety validation, sanitization, and formatting. The pipeline is stateless;
// persisting completed turns is the caller's concern.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/apexmarketer-ai/apex/internal/agent"
	"github.com/apexmarketer-ai/apex/internal/llm"
	"github.com/apexmarketer-ai/apex/internal/model"
	"github.com/apexmarketer-ai/apex/internal/safety"
)

var (
	// ErrEmptyMessage rejects blank input before any other stage runs.
	ErrEmptyMessage = errors.New("pipeline: message is required")

	// ErrNotConfigured signals that no language model client is available.
	ErrNotConfigured = errors.New("pipeline: language model not configured")

	// ErrNoContent signals an upstream response with no usable text.
	ErrNoContent = errors.New("pipeline: model returned no content")
)

// ValidationError reports a generated response discarded for critical safety
// violations. The offending text is never carried on the error.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("pipeline: response failed safety validation: %s", strings.Join(e.Violations, ", "))
}

// Request is one user turn entering the pipeline.
type Request struct {
	Message      string
	Context      string
	TaskType     model.TaskType
	TaskProvided bool
	Confirmed    bool
}

// Result is the pipeline outcome. Exactly one of Confirmation or Response is
// meaningful: a non-nil Confirmation means the flow halted at the gate and no
// generation happened.
type Result struct {
	Confirmation *safety.ConfirmationRequest
	Response     string
	Metadata     model.AgentMetadata
}

// Service wires the pipeline stages around a language model client.
type Service struct {
	client llm.Client
	logger *slog.Logger
	now    func() time.Time
}

// New creates the pipeline service. client may be nil; every Run then fails
// with ErrNotConfigured.
func New(client llm.Client, logger *slog.Logger) *Service {
	return &Service{client: client, logger: logger, now: time.Now}
}

// Run executes the full pipeline for one request.
//
// The confirmation gate is consulted only when the request is not already
// confirmed; a confirmed resubmission proceeds straight to generation. A
// consent-required gate hit halts the flow before any model call. Gate hits
// that do not require consent are carried through as metadata.
func (s *Service) Run(ctx context.Context, req Request) (Result, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return Result{}, ErrEmptyMessage
	}
	if s.client == nil {
		return Result{}, ErrNotConfigured
	}

	var gateEcho *model.ConfirmationEcho
	if !req.Confirmed {
		if confirmation := safety.CheckConfirmation(message); confirmation != nil {
			if confirmation.RequiresExplicitConsent {
				s.logger.Info("pipeline: halted for confirmation", "action", confirmation.Action)
				return Result{Confirmation: confirmation}, nil
			}
			gateEcho = &model.ConfirmationEcho{
				Action:          confirmation.Action,
				RequiresConsent: false,
			}
		}
	}

	taskType := req.TaskType
	if !req.TaskProvided {
		taskType = agent.DetectTaskType(message)
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: agent.BuildSystemPrompt(taskType)},
	}
	if strings.TrimSpace(req.Context) != "" {
		messages = append(messages, llm.Message{Role: llm.RoleUser, Content: "Context: " + req.Context})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: message})

	resp, err := s.client.Generate(ctx, messages)
	if err != nil {
		return Result{}, fmt.Errorf("pipeline: generate: %w", err)
	}
	if strings.TrimSpace(resp.Content) == "" {
		return Result{}, ErrNoContent
	}

	validation := safety.Validate(resp.Content)
	if !validation.IsValid {
		s.logger.Warn("pipeline: response rejected",
			"task_type", taskType,
			"violations", validation.RuleNames())
		return Result{}, &ValidationError{Violations: validation.RuleNames()}
	}

	sanitized := safety.Sanitize(resp.Content)
	formatted := agent.FormatResponse(sanitized, taskType, agent.FormatMetadata{
		GeneratedAt: s.now().UTC(),
		Model:       resp.Model,
	})

	return Result{
		Response: formatted,
		Metadata: model.AgentMetadata{
			TaskType:              taskType,
			DetectedAutomatically: !req.TaskProvided,
			Timestamp:             s.now().UTC(),
			Model:                 resp.Model,
			Tokens:                resp.TotalTokens,
			SafetyValidation: model.SafetySummary{
				Passed:   true,
				Warnings: validation.Warnings,
			},
			ConfirmationRequired: gateEcho,
		},
	}, nil
}
