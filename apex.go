// Package apex is the public API for embedding the ApexMarketer-AI server.
//
// Consumers import this package to construct and run the server without
// forking it:
//
//	app, err := apex.New(
//	    apex.WithVersion(version),
//	    apex.WithLogger(logger),
//	)
//	if err != nil { ... }
//	if err := app.Run(ctx); err != nil { ... }
//
// The import graph enforces a strict no-cycle rule: apex (root) imports
// internal/*, but internal/* never imports apex (root).
package apex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/apexmarketer-ai/apex/api"
	"github.com/apexmarketer-ai/apex/internal/config"
	"github.com/apexmarketer-ai/apex/internal/connectors"
	"github.com/apexmarketer-ai/apex/internal/conversation"
	"github.com/apexmarketer-ai/apex/internal/kv"
	"github.com/apexmarketer-ai/apex/internal/llm"
	"github.com/apexmarketer-ai/apex/internal/mcp"
	"github.com/apexmarketer-ai/apex/internal/pipeline"
	"github.com/apexmarketer-ai/apex/internal/server"
	"github.com/apexmarketer-ai/apex/internal/telemetry"
)

// App is the ApexMarketer-AI server lifecycle. Construct with New(), run with
// Run(). App has no public fields — use New() options to configure it.
type App struct {
	cfg    config.Config
	logger *slog.Logger
	srv    *server.Server
	medium kv.Store

	otelShutdown telemetry.Shutdown
}

// New initialises the server: configuration, telemetry, storage, the
// language model client, data connectors, and the HTTP and MCP surfaces.
// Nothing listens until Run is called.
func New(opts ...Option) (*App, error) {
	o := resolvedOptions{
		logger:  slog.Default(),
		version: "dev",
	}
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.port != 0 {
		cfg.Port = o.port
	}
	logger := o.logger

	ctx := context.Background()

	otelShutdown, err := telemetry.Init(ctx, cfg.OTELEndpoint, cfg.ServiceName, o.version, cfg.OTELInsecure)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	var medium kv.Store
	if o.medium != nil {
		medium = o.medium
	} else {
		medium, err = newStorageBackend(ctx, cfg, logger)
		if err != nil {
			_ = otelShutdown(ctx)
			return nil, fmt.Errorf("storage: %w", err)
		}
	}

	conversations := conversation.New(medium, logger)

	// A missing key is not fatal: the data and conversation surfaces keep
	// working, and /v1/agent reports not_configured.
	var client llm.Client
	if o.client != nil {
		client = llmAdapter{o.client}
	} else {
		if cfg.OpenAIAPIKey != "" {
			client = llm.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
			logger.Info("language model: openai", "model", cfg.OpenAIModel)
		} else {
			logger.Warn("language model: disabled (no OPENAI_API_KEY)")
		}
	}

	providers := connectors.NewRegistry(
		connectors.NewCRM(cfg.HubSpotAPIKey, cfg.SalesforceAPIKey),
		connectors.NewAnalytics(cfg.GoogleAnalyticsKey),
		connectors.NewAirtable(cfg.AirtableAPIKey, cfg.AirtableBaseID),
	)
	apps := connectors.NewAppsRegistry(medium)

	mcpSrv := mcp.New(conversations, providers, o.version, logger)

	srv := server.New(server.ServerConfig{
		Pipeline:            pipeline.New(client, logger),
		Conversations:       conversations,
		Providers:           providers,
		Apps:                apps,
		MCPServer:           mcpSrv.MCPServer(),
		Logger:              logger,
		Port:                cfg.Port,
		ReadTimeout:         cfg.ReadTimeout,
		WriteTimeout:        cfg.WriteTimeout,
		Version:             o.version,
		StorageBackend:      cfg.StorageBackend,
		ModelReady:          client != nil,
		MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
		OpenAPISpec:         api.OpenAPISpec,
	})

	return &App{
		cfg:          cfg,
		logger:       logger,
		srv:          srv,
		medium:       medium,
		otelShutdown: otelShutdown,
	}, nil
}

// Handler returns the root HTTP handler, for embedding and tests.
func (a *App) Handler() http.Handler {
	return a.srv.Handler()
}

// Run starts the HTTP server and blocks until ctx is cancelled or the server
// fails, then shuts everything down.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("apex starting", "port", a.cfg.Port, "storage", a.cfg.StorageBackend)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		a.logger.Info("apex shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()

	if cerr := a.medium.Close(); cerr != nil {
		a.logger.Warn("storage close failed", "error", cerr)
	}
	otelCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if serr := a.otelShutdown(otelCtx); serr != nil {
		a.logger.Warn("telemetry shutdown failed", "error", serr)
	}

	if err != nil {
		return err
	}
	a.logger.Info("apex stopped")
	return nil
}

// llmAdapter bridges the public LLMClient interface to the internal client
// type without exposing internal/llm to module consumers.
type llmAdapter struct {
	c LLMClient
}

func (a llmAdapter) Generate(ctx context.Context, messages []llm.Message) (llm.Response, error) {
	msgs := make([]ChatMessage, len(messages))
	for i, m := range messages {
		msgs[i] = ChatMessage{Role: m.Role, Content: m.Content}
	}
	resp, err := a.c.Generate(ctx, msgs)
	if err != nil {
		return llm.Response{}, err
	}
	return llm.Response{
		Content:          resp.Content,
		Model:            resp.Model,
		PromptTokens:     resp.PromptTokens,
		CompletionTokens: resp.CompletionTokens,
		TotalTokens:      resp.TotalTokens,
	}, nil
}

// newStorageBackend opens the configured key-value medium.
func newStorageBackend(ctx context.Context, cfg config.Config, logger *slog.Logger) (kv.Store, error) {
	switch cfg.StorageBackend {
	case config.StorageSQLite:
		logger.Info("storage: sqlite", "path", cfg.SQLitePath)
		return kv.NewSQLite(ctx, cfg.SQLitePath)
	case config.StoragePostgres:
		logger.Info("storage: postgres")
		return kv.NewPostgres(ctx, cfg.PostgresURL)
	default:
		logger.Info("storage: memory (conversations do not survive restarts)")
		return kv.NewMemory(), nil
	}
}
