package server

import (
	"net/http"

	"github.com/apexmarketer-ai/apex/internal/model"
)

// HandleListConversations handles GET /v1/conversations.
func (h *Handlers) HandleListConversations(w http.ResponseWriter, r *http.Request) {
	if h.conversations == nil {
		writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "conversation history disabled")
		return
	}
	writeJSON(w, r, http.StatusOK, h.conversations.ListAll(r.Context()))
}

// HandleCreateConversation handles POST /v1/conversations: creates an empty
// conversation, stores it, and makes it current.
func (h *Handlers) HandleCreateConversation(w http.ResponseWriter, r *http.Request) {
	if h.conversations == nil {
		writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "conversation history disabled")
		return
	}

	conv := h.conversations.CreateNew()
	if err := h.conversations.Save(r.Context(), conv); err != nil {
		h.logger.Error("failed to store conversation", "error", err)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternal, "failed to store conversation")
		return
	}
	if err := h.conversations.SetCurrentID(r.Context(), conv.ID); err != nil {
		h.logger.Error("failed to set current conversation", "error", err)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternal, "failed to set current conversation")
		return
	}
	writeJSON(w, r, http.StatusCreated, conv)
}

// HandleGetConversation handles GET /v1/conversations/{id}.
func (h *Handlers) HandleGetConversation(w http.ResponseWriter, r *http.Request) {
	if h.conversations == nil {
		writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "conversation history disabled")
		return
	}

	conv, ok := h.conversations.Get(r.Context(), r.PathValue("id"))
	if !ok {
		writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "conversation not found")
		return
	}
	writeJSON(w, r, http.StatusOK, conv)
}

// HandleDeleteConversation handles DELETE /v1/conversations/{id}.
func (h *Handlers) HandleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	if h.conversations == nil {
		writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "conversation history disabled")
		return
	}

	id := r.PathValue("id")
	if _, ok := h.conversations.Get(r.Context(), id); !ok {
		writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "conversation not found")
		return
	}
	if err := h.conversations.Delete(r.Context(), id); err != nil {
		h.logger.Error("failed to delete conversation", "error", err)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternal, "failed to delete conversation")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"deleted": id})
}

// HandleGetCurrentConversation handles GET /v1/conversations/current. A
// pointer to a missing conversation is treated as unset.
func (h *Handlers) HandleGetCurrentConversation(w http.ResponseWriter, r *http.Request) {
	if h.conversations == nil {
		writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "conversation history disabled")
		return
	}

	id := h.conversations.CurrentID(r.Context())
	if id == "" {
		writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "no current conversation")
		return
	}
	conv, ok := h.conversations.Get(r.Context(), id)
	if !ok {
		writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "no current conversation")
		return
	}
	writeJSON(w, r, http.StatusOK, conv)
}

// HandleSetCurrentConversation handles PUT /v1/conversations/current. An
// empty id clears the pointer.
func (h *Handlers) HandleSetCurrentConversation(w http.ResponseWriter, r *http.Request) {
	if h.conversations == nil {
		writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "conversation history disabled")
		return
	}

	var req struct {
		ID string `json:"id"`
	}
	if err := decodeJSON(w, r, &req, h.maxRequestBodyBytes); err != nil {
		handleDecodeError(w, r, err)
		return
	}

	if req.ID != "" {
		if _, ok := h.conversations.Get(r.Context(), req.ID); !ok {
			writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "conversation not found")
			return
		}
	}
	if err := h.conversations.SetCurrentID(r.Context(), req.ID); err != nil {
		h.logger.Error("failed to set current conversation", "error", err)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternal, "failed to set current conversation")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"current": req.ID})
}
