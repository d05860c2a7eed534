package httpx

import (
	"net/http"
	"strings"
	"time"

	domainauth "github.com/target/event-planner/internal/domain/auth"
)

// SessionCookieName names the cookie carrying the session id.
const SessionCookieName = "session_id"

// CookieConfig controls session cookie attributes.
type CookieConfig struct {
	Domain string
	// Secure forces the Secure attribute; HTTPS requests get it regardless.
	Secure bool
}

func (c CookieConfig) secure(r *http.Request) bool {
	return c.Secure || r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// setSession writes the session cookie based on the session's expiry.
func (c CookieConfig) setSession(w http.ResponseWriter, r *http.Request, s *domainauth.Session) {
	maxAge := int(time.Until(s.ExpiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = 0
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    s.ID,
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   c.secure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// clearSession expires the session cookie. Attributes mirror setSession so
// browsers match and delete it.
func (c CookieConfig) clearSession(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   c.secure(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}
