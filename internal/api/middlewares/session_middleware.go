package middlewares

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mclarke-dev/docuchat/internal/session"
	"github.com/mclarke-dev/docuchat/internal/state"
)

type contextKey int

const (
	authKey contextKey = iota
	workspaceKey
)

// RequireSession authenticates the request from the session cookie and
// attaches the resolved identity and the user's workspace to the context.
// Unauthenticated requests get a 401 JSON body; the page asks the user to
// log in.
func RequireSession(mgr *session.Manager, registry *state.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth, err := mgr.Authenticate(w, r)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
				return
			}

			ctx := WithSession(r.Context(), auth, registry.Get(auth.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithSession attaches the resolved identity and workspace to the context.
func WithSession(ctx context.Context, auth *session.Auth, ws *state.Workspace) context.Context {
	ctx = context.WithValue(ctx, authKey, auth)
	return context.WithValue(ctx, workspaceKey, ws)
}

// AuthFromContext returns the identity attached by RequireSession.
func AuthFromContext(ctx context.Context) (*session.Auth, bool) {
	auth, ok := ctx.Value(authKey).(*session.Auth)
	return auth, ok
}

// WorkspaceFromContext returns the workspace attached by RequireSession.
func WorkspaceFromContext(ctx context.Context) (*state.Workspace, bool) {
	ws, ok := ctx.Value(workspaceKey).(*state.Workspace)
	return ws, ok
}
