package httpx

import (
	"context"
	"log/slog"
	"net/http"

	domainauth "github.com/target/event-planner/internal/domain/auth"
	"github.com/target/event-planner/internal/service"
)

// MFAServiceInterface defines the two-factor operations the HTTP layer needs.
type MFAServiceInterface interface {
	Setup(ctx context.Context, sess *domainauth.Session) (*service.SetupResult, error)
	Verify(ctx context.Context, sess *domainauth.Session, code string) error
	Disable(ctx context.Context, sess *domainauth.Session, code string) error
}

// ProfileServiceInterface defines the profile operations the HTTP layer needs.
type ProfileServiceInterface interface {
	Get(ctx context.Context, sess *domainauth.Session) (*service.ProfileView, error)
	Update(ctx context.Context, sess *domainauth.Session, in service.ProfileUpdate) error
}

// ProfileHandlers serves the profile page, profile updates and MFA management.
type ProfileHandlers struct {
	Profile ProfileServiceInterface
	MFA     MFAServiceInterface
	Logger  *slog.Logger
}

func (h *ProfileHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type profileView struct {
	Title string `json:"title"`
	*service.ProfileView
	Success bool `json:"success"`
	Error   bool `json:"error"`
}

// Show returns the freshly loaded profile.
// GET /profile.
func (h *ProfileHandlers) Show(w http.ResponseWriter, r *http.Request) {
	sess, _ := GetSessionFromContext(r.Context())
	view, err := h.Profile.Get(r.Context(), sess)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "load profile failed", "error", err)
		http.Redirect(w, r, "/?error=true", http.StatusFound)
		return
	}
	q := r.URL.Query()
	WriteJSON(w, http.StatusOK, profileView{
		Title:       "Profile",
		ProfileView: view,
		Success:     q.Get("success") == "true",
		Error:       q.Get("error") == "true",
	})
}

// Update saves nickname, favoriteEvent and hobby.
// POST /profile/update.
func (h *ProfileHandlers) Update(w http.ResponseWriter, r *http.Request) {
	vals, err := formValues(r)
	if err != nil {
		http.Redirect(w, r, "/profile", http.StatusFound)
		return
	}
	sess, _ := GetSessionFromContext(r.Context())
	in := service.ProfileUpdate{
		Nickname:      vals.Get("nickname"),
		FavoriteEvent: vals.Get("favoriteEvent"),
		Hobby:         vals.Get("hobby"),
	}
	if err := h.Profile.Update(r.Context(), sess, in); err != nil {
		h.logger().ErrorContext(r.Context(), "update profile failed", "error", err)
		http.Redirect(w, r, "/profile", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/profile?success=true", http.StatusFound)
}

// MFASetup starts enrollment and returns the secret and otpauth URL.
// POST /profile/mfa-setup, POST /profile/mfa-enable.
func (h *ProfileHandlers) MFASetup(w http.ResponseWriter, r *http.Request) {
	sess, _ := GetSessionFromContext(r.Context())
	res, err := h.MFA.Setup(r.Context(), sess)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "mfa setup failed", "error", err)
		writeAppError(w, err, "Failed to generate secret.")
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

// MFAVerify completes enrollment with the submitted totpCode.
// POST /profile/mfa-verify.
func (h *ProfileHandlers) MFAVerify(w http.ResponseWriter, r *http.Request) {
	vals, err := formValues(r)
	if err != nil {
		http.Redirect(w, r, "/profile?error=true", http.StatusFound)
		return
	}
	sess, _ := GetSessionFromContext(r.Context())
	if err := h.MFA.Verify(r.Context(), sess, vals.Get("totpCode")); err != nil {
		h.logger().WarnContext(r.Context(), "mfa verify failed", "error", err)
		http.Redirect(w, r, "/profile?error=true", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/profile?success=true", http.StatusFound)
}

// MFADisable removes two-factor authentication using the submitted totpCode.
// A code field or query parameter is also accepted.
// POST|DELETE /profile/mfa-toggle.
func (h *ProfileHandlers) MFADisable(w http.ResponseWriter, r *http.Request) {
	vals, err := formValues(r)
	if err != nil {
		WriteErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	code := firstNonEmpty(
		vals.Get("totpCode"),
		vals.Get("code"),
		r.URL.Query().Get("totpCode"),
		r.URL.Query().Get("code"),
	)

	sess, _ := GetSessionFromContext(r.Context())
	if err := h.MFA.Disable(r.Context(), sess, code); err != nil {
		if StatusForError(err) >= http.StatusInternalServerError {
			h.logger().ErrorContext(r.Context(), "mfa disable failed", "error", err)
		}
		writeAppError(w, err, "Error disabling MFA")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "MFA disabled successfully"})
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
