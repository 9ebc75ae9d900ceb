package apex

// ChatMessage is one message in a chat completion exchange.
// It is a curated view of the internal message type for use in extension
// interfaces. No internal package imports, so it is safe to use from outside
// the module.
type ChatMessage struct {
	Role    string // "system" | "user" | "assistant"
	Content string
}

// ChatResponse is the outcome of a chat completion call.
type ChatResponse struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
