package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	domainauth "github.com/target/event-planner/internal/domain/auth"
	"github.com/target/event-planner/internal/service"
)

// AuthServiceInterface defines the auth operations the HTTP layer needs.
type AuthServiceInterface interface {
	SessionLoader
	PermissionResolver
	PrepareLogin(ctx context.Context, sess *domainauth.Session) (*service.LoginContext, error)
	BeginLogin(ctx context.Context, sess *domainauth.Session, redirectURI string) (string, error)
	CompleteLogin(ctx context.Context, sess *domainauth.Session, code, state string) (string, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandlers provides HTTP handlers for the login flow.
type AuthHandlers struct {
	Svc     AuthServiceInterface
	Cookies CookieConfig
	Logger  *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Login starts the Authorization Code + PKCE flow.
// GET /login-with-redirect?redirect_uri=<optional_path>.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	sess, ok := GetSessionFromContext(r.Context())
	if !ok {
		WriteErrorMessage(w, http.StatusInternalServerError, "session missing")
		return
	}

	authURL, err := h.Svc.BeginLogin(r.Context(), sess, r.URL.Query().Get("redirect_uri"))
	if err != nil {
		h.logger().ErrorContext(r.Context(), "begin login failed", "error", err)
		WriteErrorMessage(w, http.StatusInternalServerError, "Failed to start login")
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback completes the login flow.
// GET /oauth-redirect?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	sess, ok := GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	q := r.URL.Query()
	redirect, err := h.Svc.CompleteLogin(r.Context(), sess, q.Get("code"), q.Get("state"))
	switch {
	case errors.Is(err, service.ErrStateMismatch):
		h.logger().WarnContext(r.Context(), "state mismatch")
		http.Redirect(w, r, "/", http.StatusFound)
		return
	case err != nil:
		h.logger().ErrorContext(r.Context(), "oauth callback failed", "error", err)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	// CompleteLogin rotated and saved the session; Sessions issues the new cookie.
	http.Redirect(w, r, redirect, http.StatusFound)
}

// Logout destroys the session.
// GET /logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := GetSessionFromContext(r.Context()); ok {
		if err := h.Svc.Logout(r.Context(), sess.ID); err != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", err)
		}
	}
	h.Cookies.clearSession(w, r)
	http.Redirect(w, r, "/", http.StatusFound)
}
