package httpx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/target/event-planner/internal/adapters/devauth"
	"github.com/target/event-planner/internal/adapters/filestore"
	domainauth "github.com/target/event-planner/internal/domain/auth"
	"github.com/target/event-planner/internal/domain/model"
	authmocks "github.com/target/event-planner/internal/mocks/auth"
	"github.com/target/event-planner/internal/ports"
	"github.com/target/event-planner/internal/service"
)

// testApp wires the real services over in-memory/temp-dir adapters.
type testApp struct {
	handler  http.Handler
	sessions *authmocks.MemorySessionStore
	store    *filestore.EventStore
	auth     *service.AuthService
}

type testAppOptions struct {
	provider ports.IdentityProvider
	enforce  bool
	limit    int
	compress bool
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestApp(t *testing.T, opts testAppOptions) *testApp {
	t.Helper()

	provider := opts.provider
	if provider == nil {
		p, err := devauth.NewProvider(devauth.Config{
			UserID: "u1", Username: "jane", Email: "jane@example.com", Roles: []string{"admin"},
		})
		require.NoError(t, err)
		provider = p
	}

	logger := discardLogger()
	sessions := authmocks.NewMemorySessionStore()
	authSvc, err := service.NewAuthService(service.AuthServiceOptions{
		Provider: provider,
		Sessions: sessions,
		Roles:    authmocks.StaticRoleResolver{},
		Config:   service.AuthServiceConfig{ClientID: "client-1", BaseURL: "http://idp.test"},
		Logger:   logger,
	})
	require.NoError(t, err)

	store := filestore.NewEventStore(filepath.Join(t.TempDir(), "events.json"))
	eventSvc := service.MustNewEventService(service.EventServiceOptions{Repo: store, Logger: logger})
	mfaSvc, err := service.NewMFAService(service.MFAServiceOptions{Provider: provider, Auth: authSvc})
	require.NoError(t, err)
	profileSvc, err := service.NewProfileService(service.ProfileServiceOptions{Provider: provider, Auth: authSvc})
	require.NoError(t, err)

	rs := RouterServices{
		Auth:                   authSvc,
		Events:                 eventSvc,
		MFA:                    mfaSvc,
		Profile:                profileSvc,
		EnforceRolePermissions: opts.enforce,
		MFARateLimit:           opts.limit,
		Logger:                 logger,
	}
	if opts.compress {
		rs.Compression = &CompressionConfig{}
	}

	return &testApp{
		handler:  NewRouter(rs),
		sessions: sessions,
		store:    store,
		auth:     authSvc,
	}
}

// login stores an authenticated session and returns its id.
func (a *testApp) login(t *testing.T, roles ...string) string {
	t.Helper()
	user := &domainauth.User{
		ID:            "u1",
		Username:      "jane",
		Email:         "jane@example.com",
		Registrations: []domainauth.Registration{{ApplicationID: "app", Roles: roles}},
		Data:          map[string]any{},
	}
	id := "sess-" + strings.Join(roles, "-")
	require.NoError(t, a.sessions.Save(context.Background(), domainauth.Session{
		ID:        id,
		User:      user,
		ExpiresAt: time.Now().Add(time.Hour),
	}))
	return id
}

func (a *testApp) seed(t *testing.T, names ...string) {
	t.Helper()
	for _, n := range names {
		_, err := a.store.Create(context.Background(), &model.CreateEventRequest{Name: n, Date: "2025-06-01", Location: "Park"})
		require.NoError(t, err)
	}
}

// do serves a request, attaching the session cookie when sessionID is set.
func (a *testApp) do(method, target, sessionID string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sessionID})
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	return nil
}
