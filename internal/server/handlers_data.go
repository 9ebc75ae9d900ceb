package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/apexmarketer-ai/apex/internal/connectors"
	"github.com/apexmarketer-ai/apex/internal/model"
)

// HandleDataFetch handles GET /v1/data/{provider}. Query parameters: entity
// (provider-specific slice name), limit (preview row cap), period (analytics
// only).
func (h *Handlers) HandleDataFetch(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.lookupProvider(w, r)
	if !ok {
		return
	}

	q := connectors.Query{
		Entity: r.URL.Query().Get("entity"),
		Period: r.URL.Query().Get("period"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput,
				"limit must be a positive integer")
			return
		}
		q.Limit = limit
	}

	res, err := provider.Fetch(r.Context(), q)
	if err != nil {
		h.writeProviderError(w, r, provider.Name(), err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

// HandleDataApply handles POST /v1/data/{provider}.
func (h *Handlers) HandleDataApply(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.lookupProvider(w, r)
	if !ok {
		return
	}

	var req connectors.WriteRequest
	if err := decodeJSON(w, r, &req, h.maxRequestBodyBytes); err != nil {
		handleDecodeError(w, r, err)
		return
	}

	res, err := provider.Apply(r.Context(), req)
	if err != nil {
		h.writeProviderError(w, r, provider.Name(), err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *Handlers) lookupProvider(w http.ResponseWriter, r *http.Request) (connectors.Provider, bool) {
	if h.providers == nil {
		writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "data connectors disabled")
		return nil, false
	}
	provider, err := h.providers.Lookup(r.PathValue("provider"))
	if err != nil {
		writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, err.Error())
		return nil, false
	}
	return provider, true
}

func (h *Handlers) writeProviderError(w http.ResponseWriter, r *http.Request, name string, err error) {
	if errors.Is(err, connectors.ErrNotConfigured) {
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeNotConfigured,
			name+" credentials not configured")
		return
	}
	h.logger.Error("data provider failed", "provider", name, "error", err)
	writeError(w, r, http.StatusBadGateway, model.ErrCodeUpstreamFailed,
		"failed to fetch "+name+" data")
}

// HandleListApps handles GET /v1/apps.
func (h *Handlers) HandleListApps(w http.ResponseWriter, r *http.Request) {
	if h.apps == nil {
		writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "connected apps disabled")
		return
	}
	writeJSON(w, r, http.StatusOK, h.apps.List(r.Context()))
}

// HandleUpdateApp handles PUT /v1/apps/{id}.
func (h *Handlers) HandleUpdateApp(w http.ResponseWriter, r *http.Request) {
	if h.apps == nil {
		writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "connected apps disabled")
		return
	}

	var req struct {
		Connected bool `json:"connected"`
	}
	if err := decodeJSON(w, r, &req, h.maxRequestBodyBytes); err != nil {
		handleDecodeError(w, r, err)
		return
	}

	appID := r.PathValue("id")
	if err := h.apps.SetConnected(r.Context(), appID, req.Connected); err != nil {
		writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, err.Error())
		return
	}

	for _, app := range h.apps.List(r.Context()) {
		if app.ID == appID {
			writeJSON(w, r, http.StatusOK, app)
			return
		}
	}
	writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "unknown app")
}
