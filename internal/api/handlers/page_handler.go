package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/mclarke-dev/docuchat/internal/session"
)

// PageHandler owns the browser routes and their redirect rules:
// unauthenticated users are sent to /login, authenticated users are sent
// away from the landing and auth pages to /home. The pages themselves are
// static assets; presentation lives in the web dir.
type PageHandler struct {
	sessions *session.Manager
	webDir   string
}

func NewPageHandler(mgr *session.Manager, webDir string) *PageHandler {
	return &PageHandler{sessions: mgr, webDir: webDir}
}

func (h *PageHandler) authenticated(w http.ResponseWriter, r *http.Request) bool {
	_, err := h.sessions.Authenticate(w, r)
	return err == nil
}

func (h *PageHandler) serve(w http.ResponseWriter, r *http.Request, page string) {
	http.ServeFile(w, r, filepath.Join(h.webDir, page))
}

// Landing serves / for visitors; signed-in users go straight to the app.
func (h *PageHandler) Landing(w http.ResponseWriter, r *http.Request) {
	if h.authenticated(w, r) {
		http.Redirect(w, r, "/home", http.StatusSeeOther)
		return
	}
	h.serve(w, r, "index.html")
}

func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.authenticated(w, r) {
		http.Redirect(w, r, "/home", http.StatusSeeOther)
		return
	}
	h.serve(w, r, "login.html")
}

func (h *PageHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if h.authenticated(w, r) {
		http.Redirect(w, r, "/home", http.StatusSeeOther)
		return
	}
	h.serve(w, r, "signup.html")
}

// Home is the chat workspace page.
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	if !h.authenticated(w, r) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	h.serve(w, r, "home.html")
}

func (h *PageHandler) Profile(w http.ResponseWriter, r *http.Request) {
	if !h.authenticated(w, r) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	h.serve(w, r, "profile.html")
}
