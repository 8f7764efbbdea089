package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/mclarke-dev/docuchat/internal/core/identity"
	"github.com/mclarke-dev/docuchat/internal/session"
	"github.com/mclarke-dev/docuchat/internal/state"
)

// AuthHandler drives login, signup, sign-out and the one-time-token email
// confirmation redirect against the identity provider.
type AuthHandler struct {
	identity *identity.Client
	sessions *session.Manager
	registry *state.Registry
}

func NewAuthHandler(id *identity.Client, mgr *session.Manager, registry *state.Registry) *AuthHandler {
	return &AuthHandler{identity: id, sessions: mgr, registry: registry}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body", false)
		return
	}

	grant, err := h.identity.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid email or password", false)
			return
		}
		writeError(w, http.StatusBadGateway, err.Error(), true)
		return
	}

	if err := h.sessions.Establish(w, r, grant); err != nil {
		writeError(w, http.StatusInternalServerError, "could not establish session", true)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"redirect": "/home"})
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body", false)
		return
	}

	grant, err := h.identity.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error(), false)
		return
	}

	// No tokens means the provider wants the email confirmed first; the
	// /auth/confirm redirect completes the flow.
	if grant.AccessToken == "" {
		writeJSON(w, http.StatusOK, map[string]interface{}{"confirmation_required": true})
		return
	}

	if err := h.sessions.Establish(w, r, grant); err != nil {
		writeError(w, http.StatusInternalServerError, "could not establish session", true)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"redirect": "/home"})
}

// Confirm handles /auth/confirm?token_hash&type&next: it redeems the
// one-time email token, establishes the session and redirects.
func (h *AuthHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	tokenHash := r.URL.Query().Get("token_hash")
	verifyType := r.URL.Query().Get("type")
	next := sanitizeNext(r.URL.Query().Get("next"))

	if tokenHash == "" || verifyType == "" {
		http.Redirect(w, r, "/login?error="+url.QueryEscape("invalid confirmation link"), http.StatusSeeOther)
		return
	}

	grant, err := h.identity.Verify(r.Context(), tokenHash, verifyType)
	if err != nil {
		http.Redirect(w, r, "/login?error="+url.QueryEscape("confirmation failed, request a new link"), http.StatusSeeOther)
		return
	}
	if err := h.sessions.Establish(w, r, grant); err != nil {
		http.Redirect(w, r, "/login?error="+url.QueryEscape("could not establish session"), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// Logout revokes the token (best effort), clears the cookie and drops the
// user's workspace.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if auth, err := h.sessions.Authenticate(w, r); err == nil {
		_ = h.identity.SignOut(r.Context(), auth.AccessToken)
		h.registry.Drop(auth.UserID)
	}
	h.sessions.Clear(w, r)
	writeJSON(w, http.StatusOK, map[string]string{"redirect": "/login"})
}

// sanitizeNext keeps the post-confirmation redirect on-site.
func sanitizeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/home"
	}
	return next
}
