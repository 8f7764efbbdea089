package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/sessions"

	"github.com/mclarke-dev/docuchat/internal/config"
	"github.com/mclarke-dev/docuchat/internal/core/identity"
	"github.com/mclarke-dev/docuchat/internal/models"
)

const cookieName = "docuchat_session"

// ErrNotAuthenticated is returned when no usable session cookie is present.
var ErrNotAuthenticated = errors.New("not authenticated")

// Auth is the resolved identity of the current request.
type Auth struct {
	UserID      string
	Email       string
	AccessToken string
}

// Manager owns the browser session cookie: it stores the identity-provider
// token bundle and transparently refreshes it when the access token expires.
type Manager struct {
	store     *sessions.CookieStore
	identity  *identity.Client
	jwtSecret string
}

func NewManager(cfg *config.Config, id *identity.Client) (*Manager, error) {
	authKey, err := deriveKey(cfg.SessionSecret, "cookie-auth")
	if err != nil {
		return nil, err
	}
	encKey, err := deriveKey(cfg.SessionSecret, "cookie-enc")
	if err != nil {
		return nil, err
	}

	store := sessions.NewCookieStore(authKey, encKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   cfg.AppEnv != "local",
	}

	return &Manager{store: store, identity: id, jwtSecret: cfg.JWTSecret}, nil
}

// Establish writes a fresh token grant into the cookie.
func (m *Manager) Establish(w http.ResponseWriter, r *http.Request, grant *identity.Session) error {
	userID := grant.User.ID
	email := grant.User.Email
	if userID == "" {
		sub, mail, err := ParseClaims(grant.AccessToken, m.jwtSecret)
		if err != nil {
			return err
		}
		userID, email = sub, mail
	}

	bundle := grant.Bundle(time.Now())

	sess, _ := m.store.Get(r, cookieName)
	sess.Values["access_token"] = bundle.AccessToken
	sess.Values["refresh_token"] = bundle.RefreshToken
	sess.Values["expires_at"] = bundle.ExpiresAt.Unix()
	sess.Values["user_id"] = userID
	sess.Values["email"] = email
	return sess.Save(r, w)
}

// Authenticate resolves the current request's identity. Expired bundles are
// refreshed through the identity provider and the cookie is rewritten; a
// failed refresh clears the session.
func (m *Manager) Authenticate(w http.ResponseWriter, r *http.Request) (*Auth, error) {
	sess, err := m.store.Get(r, cookieName)
	if err != nil {
		return nil, ErrNotAuthenticated
	}

	bundle, userID, email, ok := readBundle(sess)
	if !ok {
		return nil, ErrNotAuthenticated
	}

	if bundle.Expired(time.Now()) {
		grant, err := m.identity.Refresh(r.Context(), bundle.RefreshToken)
		if err != nil {
			m.Clear(w, r)
			return nil, ErrNotAuthenticated
		}
		if err := m.Establish(w, r, grant); err != nil {
			return nil, err
		}
		bundle = grant.Bundle(time.Now())
		if grant.User.ID != "" {
			userID, email = grant.User.ID, grant.User.Email
		}
	}

	return &Auth{UserID: userID, Email: email, AccessToken: bundle.AccessToken}, nil
}

// Clear drops the session cookie.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) {
	sess, _ := m.store.Get(r, cookieName)
	sess.Options.MaxAge = -1
	_ = sess.Save(r, w)
}

func readBundle(sess *sessions.Session) (models.TokenBundle, string, string, bool) {
	access, _ := sess.Values["access_token"].(string)
	refresh, _ := sess.Values["refresh_token"].(string)
	expiresAt, _ := sess.Values["expires_at"].(int64)
	userID, _ := sess.Values["user_id"].(string)
	email, _ := sess.Values["email"].(string)

	if access == "" || userID == "" {
		return models.TokenBundle{}, "", "", false
	}
	bundle := models.TokenBundle{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    time.Unix(expiresAt, 0),
	}
	return bundle, userID, email, true
}
