package apex

import (
	"log/slog"
)

// Option configures an App.
type Option func(*resolvedOptions)

// resolvedOptions holds all extension points after applying defaults.
// Unexported — callers use the With* functions.
type resolvedOptions struct {
	port    int
	logger  *slog.Logger
	version string
	client  LLMClient
	medium  Store
}

// WithPort overrides the TCP port from config (APEX_PORT env var).
func WithPort(port int) Option {
	return func(o *resolvedOptions) { o.port = port }
}

// WithLogger sets the structured logger for the App.
// If not set, the default slog logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *resolvedOptions) { o.logger = logger }
}

// WithVersion sets the version string reported in the health endpoint and logs.
func WithVersion(version string) Option {
	return func(o *resolvedOptions) { o.version = version }
}

// WithLLMClient replaces the OpenAI-backed language model client.
// Useful for embedding with a custom provider or for tests.
func WithLLMClient(client LLMClient) Option {
	return func(o *resolvedOptions) { o.client = client }
}

// WithStore replaces the storage backend selected by APEX_STORAGE.
// The provided implementation must satisfy the Store interface.
func WithStore(medium Store) Option {
	return func(o *resolvedOptions) { o.medium = medium }
}
