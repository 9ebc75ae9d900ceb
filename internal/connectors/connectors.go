// Package connectors exposes external marketing data sources behind a common
// provider interface. Providers return curated preview slices; credentials
// gate availability but the data itself is served from local fixtures until
// the upstream integrations land.
package connectors

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrNotConfigured is returned when a provider's credentials are missing.
var ErrNotConfigured = errors.New("connectors: credentials not configured")

// DefaultPreviewLimit caps entity previews when the caller does not specify one.
const DefaultPreviewLimit = 5

// Query selects an entity slice from a provider.
type Query struct {
	Entity string
	Limit  int
	Period string
}

// Meta describes the provenance of a Result.
type Meta struct {
	Source      string     `json:"source"`
	Entity      string     `json:"entity"`
	Total       int        `json:"total"`
	PreviewSize int        `json:"preview_size"`
	Period      string     `json:"period,omitempty"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
	Timestamp   time.Time  `json:"timestamp"`
}

// Result is a provider response: a bounded preview plus provenance metadata.
type Result struct {
	Data any  `json:"data"`
	Meta Meta `json:"meta"`
}

// WriteRequest asks a provider to create or update records.
type WriteRequest struct {
	Entity  string           `json:"entity"`
	Records []map[string]any `json:"records"`
}

// WriteResult acknowledges a write without echoing the records back.
type WriteResult struct {
	Message         string    `json:"message"`
	Entity          string    `json:"entity"`
	RecordsAffected int       `json:"records_affected"`
	Timestamp       time.Time `json:"timestamp"`
}

// Provider is a named external data source.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, q Query) (Result, error)
	Apply(ctx context.Context, req WriteRequest) (WriteResult, error)
}

// Registry resolves providers by name.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry builds a registry over the given providers.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

// Lookup returns the provider registered under name.
func (r *Registry) Lookup(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("connectors: unknown provider %q", name)
	}
	return p, nil
}

// Names lists registered provider names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func previewSlice(rows []map[string]any, limit int) []map[string]any {
	if limit <= 0 {
		limit = DefaultPreviewLimit
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}
