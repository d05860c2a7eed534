package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	domainauth "github.com/target/event-planner/internal/domain/auth"
	apperrors "github.com/target/event-planner/internal/errors"
	"github.com/target/event-planner/internal/ports"
	"golang.org/x/oauth2"
)

const (
	stateTokenLength  = 32
	defaultSessionTTL = 24 * time.Hour
)

// ErrStateMismatch is returned by CompleteLogin when the callback state does not
// match the value issued for the session. The provider is never called in that case.
var ErrStateMismatch = errors.New("oauth state mismatch")

// AuthServiceConfig holds the static values exposed to login views.
type AuthServiceConfig struct {
	ClientID   string
	BaseURL    string
	SessionTTL time.Duration // default 24h when zero
}

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.IdentityProvider // Required
	Sessions ports.SessionStore     // Required
	Roles    ports.RoleResolver     // Required
	Config   AuthServiceConfig
	Logger   *slog.Logger // Optional
}

// AuthService orchestrates the Authorization Code + PKCE login, session lifecycle
// and role-derived permissions.
type AuthService struct {
	provider ports.IdentityProvider
	sessions ports.SessionStore
	roles    ports.RoleResolver
	config   AuthServiceConfig
	logger   *slog.Logger
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) (*AuthService, error) {
	if opts.Provider == nil {
		return nil, errors.New("IdentityProvider is required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("SessionStore is required")
	}
	if opts.Roles == nil {
		return nil, errors.New("RoleResolver is required")
	}
	cfg := opts.Config
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		provider: opts.Provider,
		sessions: opts.Sessions,
		roles:    opts.Roles,
		config:   cfg,
		logger:   logger.With("component", "auth_service"),
	}, nil
}

// LoadSession returns the stored session for id, or a new anonymous session
// when id is empty, unknown or expired. New sessions are not persisted until
// SaveSession is called, so their ExpiresAt stays zero until then.
func (s *AuthService) LoadSession(ctx context.Context, id string) (*domainauth.Session, error) {
	if id != "" {
		sess, err := s.sessions.Get(ctx, id)
		switch {
		case err == nil && time.Now().Before(sess.ExpiresAt):
			return &sess, nil
		case err == nil:
			if delErr := s.sessions.Delete(ctx, id); delErr != nil {
				s.logger.WarnContext(ctx, "failed to delete expired session", "error", delErr)
			}
		case !errors.Is(err, ports.ErrSessionNotFound):
			return nil, fmt.Errorf("get session: %w", err)
		}
	}

	return &domainauth.Session{ID: generateSessionID()}, nil
}

// SaveSession extends the session lifetime and persists it.
func (s *AuthService) SaveSession(ctx context.Context, sess *domainauth.Session) error {
	if sess == nil || sess.ID == "" {
		return errors.New("session ID is required")
	}
	sess.ExpiresAt = time.Now().Add(s.config.SessionTTL)
	if err := s.sessions.Save(ctx, *sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// LoginContext carries what a view needs to render a login link.
type LoginContext struct {
	ClientID  string `json:"clientId"`
	Challenge string `json:"challenge"`
	State     string `json:"state"`
	BaseURL   string `json:"baseUrl"`
	AuthURL   string `json:"authUrl"`
}

// PrepareLogin issues a fresh state token and PKCE verifier for sess and
// returns the matching challenge and authorization URL.
func (s *AuthService) PrepareLogin(ctx context.Context, sess *domainauth.Session) (*LoginContext, error) {
	if sess == nil {
		return nil, errors.New("session is required")
	}
	state, err := randomToken(stateTokenLength)
	if err != nil {
		return nil, fmt.Errorf("generate state: %w", err)
	}
	verifier := oauth2.GenerateVerifier()
	challenge := oauth2.S256ChallengeFromVerifier(verifier)

	sess.StateValue = state
	sess.Verifier = verifier
	if err := s.SaveSession(ctx, sess); err != nil {
		return nil, err
	}

	return &LoginContext{
		ClientID:  s.config.ClientID,
		Challenge: challenge,
		State:     state,
		BaseURL:   s.config.BaseURL,
		AuthURL:   s.provider.AuthorizeURL(ports.AuthorizeInput{State: state, Challenge: challenge}),
	}, nil
}

// BeginLogin records where to go after login and returns the provider authorization URL.
// Only same-origin relative paths are kept as destination; anything else becomes "/".
func (s *AuthService) BeginLogin(ctx context.Context, sess *domainauth.Session, redirectURI string) (string, error) {
	if sess == nil {
		return "", errors.New("session is required")
	}
	sess.RedirectURI = SafeRedirect(redirectURI)
	lc, err := s.PrepareLogin(ctx, sess)
	if err != nil {
		return "", fmt.Errorf("begin login: %w", err)
	}
	return lc.AuthURL, nil
}

// CompleteLogin validates the callback state, exchanges the code with the session's
// verifier, loads the user and stores it in a session with a new id.
// It returns the post-login redirect target.
func (s *AuthService) CompleteLogin(ctx context.Context, sess *domainauth.Session, code, state string) (string, error) {
	if sess == nil {
		return "", errors.New("session is required")
	}
	if sess.StateValue == "" || subtle.ConstantTimeCompare([]byte(state), []byte(sess.StateValue)) != 1 {
		return "", ErrStateMismatch
	}
	if code == "" {
		return "", apperrors.Validation("authorization code is required")
	}

	tok, err := s.provider.ExchangeCode(ctx, ports.ExchangeInput{Code: code, Verifier: sess.Verifier})
	if err != nil {
		return "", apperrors.Upstream(err, "Failed to exchange authorization code")
	}
	user, err := s.provider.FetchUser(ctx, tok.AccessToken)
	if err != nil {
		return "", apperrors.Upstream(err, "Failed to load user")
	}

	redirect := SafeRedirect(sess.RedirectURI)
	oldID := sess.ID

	sess.ID = generateSessionID()
	sess.User = &user
	sess.CustomData = user.Data
	sess.ClearLoginChallenge()
	if err := s.SaveSession(ctx, sess); err != nil {
		return "", err
	}
	if err := s.sessions.Delete(ctx, oldID); err != nil {
		s.logger.WarnContext(ctx, "failed to delete pre-login session", "error", err)
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return redirect, nil
}

// Logout removes a session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Permissions derives event permissions for user. hasRoles is false when the
// user is nil or the profile carries no registrations or roles.
func (s *AuthService) Permissions(user *domainauth.User) (perms domainauth.Permissions, hasRoles bool) {
	if user == nil {
		return domainauth.Permissions{}, false
	}
	roles, ok := s.roles.Roles(*user)
	if !ok {
		return domainauth.Permissions{}, false
	}
	return domainauth.DerivePermissions(roles), true
}

// SafeRedirect returns raw when it is a same-origin absolute path, otherwise "/".
func SafeRedirect(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.Contains(raw, `\`) {
		return "/"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return raw
}

func generateSessionID() string {
	return uuid.New().String()
}

// randomToken returns n URL-safe random characters.
func randomToken(n int) (string, error) {
	b := make([]byte, (n*3+3)/4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
