package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/httprate"
	domainauth "github.com/target/event-planner/internal/domain/auth"
)

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.InfoContext(r.Context(), "http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *respWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.ErrorContext(r.Context(), "panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// SessionLoader loads the session named by the cookie, creating one when needed.
type SessionLoader interface {
	LoadSession(ctx context.Context, id string) (*domainauth.Session, error)
}

// Sessions returns a middleware that places the request's session in the context.
// A cookie is issued only once a handler has saved a session whose id differs from
// the request's cookie, so anonymous requests that set no state store nothing.
func Sessions(loader SessionLoader, cookies CookieConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(SessionCookieName); err == nil {
				id = c.Value
			}

			sess, err := loader.LoadSession(r.Context(), id)
			if err != nil {
				logger.ErrorContext(r.Context(), "load session failed", "error", err)
				WriteErrorMessage(w, http.StatusServiceUnavailable, "Session storage unavailable")
				return
			}

			sw := &sessionCookieWriter{ResponseWriter: w, issue: func() {
				if sess.ID != id && !sess.ExpiresAt.IsZero() {
					cookies.setSession(w, r, sess)
				}
			}}
			next.ServeHTTP(sw, r.WithContext(SetSessionInContext(r.Context(), sess)))
			sw.issueOnce()
		})
	}
}

// sessionCookieWriter sets the session cookie just before the response header goes out.
type sessionCookieWriter struct {
	http.ResponseWriter
	issue  func()
	issued bool
}

func (w *sessionCookieWriter) issueOnce() {
	if w.issued {
		return
	}
	w.issued = true
	w.issue()
}

func (w *sessionCookieWriter) WriteHeader(status int) {
	w.issueOnce()
	w.ResponseWriter.WriteHeader(status)
}

func (w *sessionCookieWriter) Write(b []byte) (int, error) {
	w.issueOnce()
	return w.ResponseWriter.Write(b)
}

func (w *sessionCookieWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// RequireUser redirects anonymous browser requests to the home page.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r.Context()) == nil {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireUserJSON answers anonymous requests with 401 {"error":"not_authorized"}.
func RequireUserJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r.Context()) == nil {
			WriteErrorMessage(w, http.StatusUnauthorized, "not_authorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PermissionResolver derives event permissions for a user.
type PermissionResolver interface {
	Permissions(user *domainauth.User) (domainauth.Permissions, bool)
}

// PermissionCheck selects the permission a route needs.
type PermissionCheck func(domainauth.Permissions) bool

// CanEdit requires edit permission.
func CanEdit(p domainauth.Permissions) bool { return p.CanEdit }

// CanDelete requires delete permission.
func CanDelete(p domainauth.Permissions) bool { return p.CanDelete }

// RequirePermission answers 403 when the session user lacks the permission.
// It must run after RequireUser.
func RequirePermission(perms PermissionResolver, check PermissionCheck) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, _ := perms.Permissions(CurrentUser(r.Context()))
			if !check(p) {
				WriteErrorMessage(w, http.StatusForbidden, "You do not have permission to perform this action.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitByIP limits each client IP to requests per minute. requests <= 0 disables the limit.
func RateLimitByIP(requests int) func(http.Handler) http.Handler {
	if requests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		requests,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			WriteErrorMessage(w, http.StatusTooManyRequests, "Too many requests, please try again later.")
		}),
	)
}

// chain applies middleware so that the first one listed runs first.
func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
