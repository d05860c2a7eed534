package httpx

import (
	"log/slog"
	"net/http"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth    AuthServiceInterface
	Events  EventServiceInterface
	MFA     MFAServiceInterface
	Profile ProfileServiceInterface
	Cookies CookieConfig
	// EnforceRolePermissions gates edit/delete routes on the session user's roles.
	EnforceRolePermissions bool
	// MFARateLimit is the per-IP request budget per minute for MFA routes; 0 disables it.
	MFARateLimit int
	// Compression is optional; nil disables gzip.
	Compression *CompressionConfig
	Logger      *slog.Logger
}

// NewRouter creates and configures the HTTP router with its middleware stack.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{Svc: services.Auth, Cookies: services.Cookies, Logger: logger}
	eventHandlers := &EventHandlers{Events: services.Events, Auth: services.Auth, Logger: logger}
	profileHandlers := &ProfileHandlers{Profile: services.Profile, MFA: services.MFA, Logger: logger}

	registerAuthRoutes(mux, authHandlers)
	registerEventRoutes(mux, eventHandlers, services)
	registerProfileRoutes(mux, profileHandlers, services.MFARateLimit)

	mws := []func(http.Handler) http.Handler{Recover(logger), Logging(logger)}
	if services.Compression != nil {
		cfg := *services.Compression
		if cfg.Logger == nil {
			cfg.Logger = logger
		}
		mws = append(mws, Compression(cfg))
	}

	// Health checks bypass Sessions and never touch the session store.
	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", healthHandler)
	root.HandleFunc("HEAD /healthz", healthHandler)
	root.Handle("/", chain(mux, Sessions(services.Auth, services.Cookies, logger)))
	return chain(root, mws...)
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET /login-with-redirect", h.Login)
	mux.HandleFunc("GET /oauth-redirect", h.Callback)
	mux.HandleFunc("GET /logout", h.Logout)
}

func registerEventRoutes(mux *http.ServeMux, h *EventHandlers, services RouterServices) {
	editGate := []func(http.Handler) http.Handler{RequireUser}
	deleteGate := []func(http.Handler) http.Handler{RequireUser}
	if services.EnforceRolePermissions {
		editGate = append(editGate, RequirePermission(services.Auth, CanEdit))
		deleteGate = append(deleteGate, RequirePermission(services.Auth, CanDelete))
	}

	mux.HandleFunc("GET /{$}", h.Home)
	mux.Handle("GET /create-event", chain(http.HandlerFunc(h.CreateForm), RequireUser))
	mux.Handle("POST /create-event", chain(http.HandlerFunc(h.Create), RequireUser))
	mux.HandleFunc("GET /events/{id}", h.Show)
	mux.Handle("GET /events/{id}/edit", chain(http.HandlerFunc(h.EditForm), editGate...))
	mux.Handle("POST /events/{id}/edit", chain(http.HandlerFunc(h.Update), editGate...))
	mux.Handle("POST /events/{id}/delete", chain(http.HandlerFunc(h.Delete), deleteGate...))
}

func registerProfileRoutes(mux *http.ServeMux, h *ProfileHandlers, rateLimit int) {
	limit := RateLimitByIP(rateLimit)

	mux.Handle("GET /profile", chain(http.HandlerFunc(h.Show), RequireUser))
	mux.Handle("POST /profile/update", chain(http.HandlerFunc(h.Update), RequireUser))

	setup := chain(http.HandlerFunc(h.MFASetup), limit, RequireUserJSON)
	mux.Handle("POST /profile/mfa-setup", setup)
	mux.Handle("POST /profile/mfa-enable", setup)
	mux.Handle("POST /profile/mfa-verify", chain(http.HandlerFunc(h.MFAVerify), limit, RequireUser))

	toggle := chain(http.HandlerFunc(h.MFADisable), limit, RequireUserJSON)
	mux.Handle("POST /profile/mfa-toggle", toggle)
	mux.Handle("DELETE /profile/mfa-toggle", toggle)
}
