package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mclarke-dev/docuchat/internal/api/middlewares"
	"github.com/mclarke-dev/docuchat/internal/core/backend"
	"github.com/mclarke-dev/docuchat/internal/services"
	"github.com/mclarke-dev/docuchat/internal/session"
	"github.com/mclarke-dev/docuchat/internal/state"
)

type errorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, retryable bool) {
	writeJSON(w, status, errorResponse{Error: msg, Retryable: retryable})
}

// writeServiceError maps service errors onto the banner taxonomy: local
// validation 400, conflict 409, missing auth 401, everything else 502 with
// the server-provided detail (or a generic fallback). Retryable failures are
// flagged so the page can offer a try-again affordance.
func writeServiceError(w http.ResponseWriter, err error) {
	var vErr *services.ValidationError
	if errors.As(err, &vErr) {
		writeError(w, http.StatusBadRequest, vErr.Reason, false)
		return
	}

	switch {
	case errors.Is(err, backend.ErrDocumentExists):
		writeError(w, http.StatusConflict, err.Error(), false)
	case errors.Is(err, backend.ErrNoDocument):
		writeError(w, http.StatusNotFound, "no document found", false)
	case errors.Is(err, services.ErrDocumentNotReady):
		writeError(w, http.StatusConflict, err.Error(), false)
	case errors.Is(err, backend.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "please log in again", false)
	default:
		var rErr *services.RetryableError
		if errors.As(err, &rErr) {
			writeError(w, http.StatusBadGateway, err.Error(), true)
			return
		}
		writeError(w, http.StatusBadGateway, err.Error(), false)
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// requestContext pulls the identity and workspace the session middleware
// attached. Handlers behind RequireSession can rely on both being present.
func requestContext(r *http.Request) (*session.Auth, *state.Workspace, bool) {
	auth, ok := middlewares.AuthFromContext(r.Context())
	if !ok {
		return nil, nil, false
	}
	ws, ok := middlewares.WorkspaceFromContext(r.Context())
	if !ok {
		return nil, nil, false
	}
	return auth, ws, true
}
