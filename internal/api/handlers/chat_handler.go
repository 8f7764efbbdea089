package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mclarke-dev/docuchat/internal/services"
)

// ChatHandler exposes the chat panel operations to the pages.
type ChatHandler struct {
	chat *services.ChatService
}

func NewChatHandler(chat *services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// List returns the session list, fetching it on first use.
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	auth, ws, ok := requestContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", false)
		return
	}

	sessions, err := h.chat.EnsureSessions(r.Context(), ws, auth.UserID, auth.AccessToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
}

// Create starts a new session against the completed document.
func (h *ChatHandler) Create(w http.ResponseWriter, r *http.Request) {
	auth, ws, ok := requestContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", false)
		return
	}

	id, err := h.chat.Create(r.Context(), ws, auth.AccessToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"chat_id": id})
}

// Select makes a session active and returns its full message history.
func (h *ChatHandler) Select(w http.ResponseWriter, r *http.Request) {
	auth, ws, ok := requestContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", false)
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	messages, err := h.chat.Select(r.Context(), ws, auth.AccessToken, sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

// Delete removes a session.
func (h *ChatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	auth, ws, ok := requestContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", false)
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	if err := h.chat.Delete(r.Context(), ws, auth.AccessToken, sessionID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

type sendMessageRequest struct {
	Message string `json:"message"`
}

// Send posts a user message and returns the assistant reply.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	auth, ws, ok := requestContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", false)
		return
	}

	var req sendMessageRequest
	if err := decodeJSON(r, &req); err != nil || req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required", false)
		return
	}

	reply, err := h.chat.Send(r.Context(), ws, auth.AccessToken, req.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}
