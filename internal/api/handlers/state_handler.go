package handlers

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/mclarke-dev/docuchat/internal/models"
	"github.com/mclarke-dev/docuchat/internal/services"
	"github.com/mclarke-dev/docuchat/internal/state"
)

// StateHandler serves the workspace snapshot the chat page renders from. The
// first call after login bootstraps the workspace: the current document and
// the profile are fetched concurrently, and a completed document triggers the
// one-time session-list load.
type StateHandler struct {
	documents *services.DocumentService
	chat      *services.ChatService
	profiles  *services.ProfileService
}

func NewStateHandler(docs *services.DocumentService, chat *services.ChatService, profiles *services.ProfileService) *StateHandler {
	return &StateHandler{documents: docs, chat: chat, profiles: profiles}
}

type stateResponse struct {
	state.Snapshot
	Profile           models.Profile `json:"profile"`
	CompletionPercent int            `json:"completion_percent"`
}

func (h *StateHandler) Get(w http.ResponseWriter, r *http.Request) {
	auth, ws, ok := requestContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", false)
		return
	}

	var profile models.Profile
	g, ctx := errgroup.WithContext(r.Context())

	g.Go(func() error {
		if ws.DocumentLoaded() {
			return nil
		}
		_, err := h.documents.LoadCurrent(ctx, ws, auth.AccessToken)
		if err == nil {
			ws.MarkDocumentLoaded()
		}
		return err
	})
	g.Go(func() error {
		p, err := h.profiles.Load(ctx, auth.AccessToken)
		if err != nil {
			return err
		}
		profile = p
		return nil
	})

	if err := g.Wait(); err != nil {
		writeError(w, http.StatusBadGateway, err.Error(), true)
		return
	}

	// Entering document-ready triggers the one-time session list fetch.
	if doc := ws.Document(); doc != nil && doc.Status == models.StatusCompleted {
		if _, err := h.chat.EnsureSessions(r.Context(), ws, auth.UserID, auth.AccessToken); err != nil {
			writeServiceError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, stateResponse{
		Snapshot:          ws.Snapshot(),
		Profile:           profile,
		CompletionPercent: profile.CompletionPercent(),
	})
}
