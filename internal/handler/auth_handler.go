package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"docproc/internal/domain"
	apperrors "docproc/pkg/errors"
)

// Routes of the two views.
const (
	LoginPath     = "/"
	ProcessorPath = "/ai-document-processor"
)

// SessionService is what the auth handler needs from the session guard.
type SessionService interface {
	SessionChecker
	Login(ctx context.Context, clientID, username, password string) error
	Logout(ctx context.Context, clientID string)
}

// ThemeService reads and flips the theme preference.
type ThemeService interface {
	Get(ctx context.Context, clientID string) domain.ThemePreference
	Toggle(ctx context.Context, clientID string) (domain.ThemePreference, error)
}

// WorkspaceRemover drops a client's workspace on logout.
type WorkspaceRemover interface {
	Remove(clientID string)
}

// AuthHandler serves the login view and the login/logout actions
type AuthHandler struct {
	sessions   SessionService
	themes     ThemeService
	workspaces WorkspaceRemover
	renderer   *Renderer
	logger     domain.Logger
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(sessions SessionService, themes ThemeService, workspaces WorkspaceRemover, renderer *Renderer, logger domain.Logger) *AuthHandler {
	return &AuthHandler{
		sessions:   sessions,
		themes:     themes,
		workspaces: workspaces,
		renderer:   renderer,
		logger:     logger,
	}
}

// LoginPage renders the login view, or forwards clients that already hold a
// session.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	clientID, _ := ClientIDFromContext(r)
	if h.sessions.CheckSession(r.Context(), clientID).Authenticated {
		http.Redirect(w, r, ProcessorPath, http.StatusSeeOther)
		return
	}

	h.renderer.Render(w, http.StatusOK, "login.html", PageData{
		Title: "Login",
		Theme: h.themes.Get(r.Context(), clientID),
	})
}

// Login makes one attempt with the submitted credentials. Form posts and
// JSON bodies are both accepted.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	clientID, ok := ClientIDFromContext(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Client id missing")
		return
	}

	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	} else {
		creds.Username = r.PostFormValue("username")
		creds.Password = r.PostFormValue("password")
	}

	err := h.sessions.Login(r.Context(), clientID, creds.Username, creds.Password)
	if wantsJSON(r) {
		if err != nil {
			writeError(w, apperrors.GetStatusCode(err), apperrors.UserMessage(err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"authenticated": true, "redirect": ProcessorPath})
		return
	}

	if err != nil {
		h.renderer.Render(w, apperrors.GetStatusCode(err), "login.html", PageData{
			Title:    "Login",
			Theme:    h.themes.Get(r.Context(), clientID),
			Error:    apperrors.UserMessage(err),
			Username: creds.Username,
		})
		return
	}
	http.Redirect(w, r, ProcessorPath, http.StatusSeeOther)
}

// Logout clears the session and abandons the workspace, including any
// request still in flight for it.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	clientID, _ := ClientIDFromContext(r)
	h.sessions.Logout(r.Context(), clientID)
	h.workspaces.Remove(clientID)

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"authenticated": false, "redirect": LoginPath})
		return
	}
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}
