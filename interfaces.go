package apex

import "context"

// LLMClient generates chat completions for the agent pipeline.
// When provided via WithLLMClient, replaces the OpenAI-backed client selected
// from OPENAI_API_KEY. Uses ChatMessage/ChatResponse (not internal types) to
// avoid forcing internal package imports on external consumers. New() wraps
// it in an adapter for internal use.
type LLMClient interface {
	Generate(ctx context.Context, messages []ChatMessage) (ChatResponse, error)
}

// Store is a string-keyed persistence capability backing conversation history
// and connected-app state. When provided via WithStore, replaces the backend
// selected by APEX_STORAGE (memory, sqlite, or postgres).
// Implementations must tolerate concurrent readers; writes come from one
// logical writer at a time.
type Store interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, replacing any existing value.
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}
