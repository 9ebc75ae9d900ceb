// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Storage backend names accepted by APEX_STORAGE.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	// Server settings.
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Language model settings.
	OpenAIAPIKey  string
	OpenAIBaseURL string // Override for proxies and compatible endpoints.
	OpenAIModel   string

	// Storage settings.
	StorageBackend string // "memory", "sqlite", or "postgres"
	SQLitePath     string
	PostgresURL    string

	// Data connector credentials.
	HubSpotAPIKey      string
	SalesforceAPIKey   string
	GoogleAnalyticsKey string
	AirtableAPIKey     string
	AirtableBaseID     string

	// OTEL settings.
	OTELEndpoint string
	OTELInsecure bool
	ServiceName  string

	// Operational settings.
	LogLevel            string
	MaxRequestBodyBytes int64 // Maximum request body size in bytes.
}

// Load reads configuration from environment variables with sensible defaults.
// All parse failures are collected so a misconfigured deployment reports
// every bad variable at once.
func Load() (Config, error) {
	var errs []error
	collectInt := func(key string, def int) int {
		v, err := envInt(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}
	collectBool := func(key string, def bool) bool {
		v, err := envBool(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}
	collectDuration := func(key string, def time.Duration) time.Duration {
		v, err := envDuration(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}

	cfg := Config{
		Port:                collectInt("APEX_PORT", 8080),
		ReadTimeout:         collectDuration("APEX_READ_TIMEOUT", 30*time.Second),
		WriteTimeout:        collectDuration("APEX_WRITE_TIMEOUT", 120*time.Second),
		OpenAIAPIKey:        envStr("OPENAI_API_KEY", ""),
		OpenAIBaseURL:       envStr("OPENAI_BASE_URL", ""),
		OpenAIModel:         envStr("OPENAI_MODEL", "gpt-4-turbo-preview"),
		StorageBackend:      envStr("APEX_STORAGE", StorageMemory),
		SQLitePath:          envStr("APEX_SQLITE_PATH", "apex.db"),
		PostgresURL:         envStr("DATABASE_URL", ""),
		HubSpotAPIKey:       envStr("HUBSPOT_API_KEY", ""),
		SalesforceAPIKey:    envStr("SALESFORCE_API_KEY", ""),
		GoogleAnalyticsKey:  envStr("GOOGLE_ANALYTICS_KEY", ""),
		AirtableAPIKey:      envStr("AIRTABLE_API_KEY", ""),
		AirtableBaseID:      envStr("AIRTABLE_BASE_ID", ""),
		OTELEndpoint:        envStr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELInsecure:        collectBool("OTEL_EXPORTER_OTLP_INSECURE", false),
		ServiceName:         envStr("OTEL_SERVICE_NAME", "apex"),
		LogLevel:            envStr("APEX_LOG_LEVEL", "info"),
		MaxRequestBodyBytes: int64(collectInt("APEX_MAX_REQUEST_BODY_BYTES", 1*1024*1024)), // 1 MB default
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config: %w", errors.Join(errs...))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present.
func (c Config) Validate() error {
	switch c.StorageBackend {
	case StorageMemory:
	case StorageSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("config: APEX_SQLITE_PATH is required for sqlite storage")
		}
	case StoragePostgres:
		if c.PostgresURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required for postgres storage")
		}
	default:
		return fmt.Errorf("config: unknown APEX_STORAGE backend %q", c.StorageBackend)
	}
	if c.MaxRequestBodyBytes <= 0 {
		return fmt.Errorf("config: APEX_MAX_REQUEST_BODY_BYTES must be positive")
	}
	return nil
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid integer", key, v)
	}
	return n, nil
}

func envBool(key string, defaultVal bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s=%q is not a valid boolean", key, v)
	}
	return b, nil
}

func envDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid duration", key, v)
	}
	return d, nil
}
