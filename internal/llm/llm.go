// Package llm abstracts the external text-generation service behind a small
// client interface. The pipeline depends only on Client; the OpenAI
// implementation lives in openai.go and a static test double in mock.go.
package llm

import "context"

// Chat message roles understood by the generation service.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat message sent to the generation service.
type Message struct {
	Role    string
	Content string
}

// Response is the generation outcome: the text plus usage accounting.
type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client generates a completion for an ordered message sequence. Failures
// are surfaced to the caller as-is; the pipeline performs no retries.
type Client interface {
	Generate(ctx context.Context, messages []Message) (Response, error)
}
