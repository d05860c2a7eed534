// Package devauth provides a config-driven, in-process IdentityProvider for local development.
package devauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"maps"
	"net/url"
	"strconv"
	"sync"
	"time"

	domainauth "github.com/target/event-planner/internal/domain/auth"
	"github.com/target/event-planner/internal/ports"
)

// ErrInvalidCode is returned when a one-time code does not match the secret.
var ErrInvalidCode = errors.New("dev auth: invalid one-time code")

// ErrUserNotFound is returned for any user id other than the configured one.
var ErrUserNotFound = errors.New("dev auth: user not found")

// Config controls the dev identity provider.
// UserID and Email are required; Roles may be empty.
type Config struct {
	UserID   string
	Username string
	Email    string
	Roles    []string
	// CallbackURL is where AuthorizeURL sends the browser. Defaults to /oauth-redirect.
	CallbackURL string
	// Now overrides the clock used for TOTP checks.
	Now func() time.Time
}

// Provider implements ports.IdentityProvider for local development.
// It short-circuits the OAuth flow by redirecting straight back to the callback
// with the caller's state. ExchangeCode accepts any code and every access token
// resolves to the configured user. Two-factor codes are real RFC 6238 TOTP.
type Provider struct {
	mu          sync.Mutex
	user        domainauth.User
	callbackURL string
	now         func() time.Time
	nextMethod  int
}

var _ ports.IdentityProvider = (*Provider)(nil)

// NewProvider constructs a dev identity provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	username := cfg.Username
	if username == "" {
		username = cfg.Email
	}
	callback := cfg.CallbackURL
	if callback == "" {
		callback = "/oauth-redirect"
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	user := domainauth.User{
		ID:       cfg.UserID,
		Username: username,
		Email:    cfg.Email,
		Data:     map[string]any{},
	}
	if len(cfg.Roles) > 0 {
		user.Registrations = []domainauth.Registration{{
			ApplicationID: "dev",
			Roles:         append([]string(nil), cfg.Roles...),
		}}
	}

	return &Provider{user: user, callbackURL: callback, now: now}, nil
}

// AuthorizeURL returns the local callback URL carrying a dev code and the caller's state.
func (p *Provider) AuthorizeURL(in ports.AuthorizeInput) string {
	q := url.Values{}
	q.Set("code", "dev")
	q.Set("state", in.State)
	return p.callbackURL + "?" + q.Encode()
}

// ExchangeCode ignores the code value and returns a random access token.
func (p *Provider) ExchangeCode(_ context.Context, in ports.ExchangeInput) (ports.Token, error) {
	if in.Code == "" {
		return ports.Token{}, errors.New("dev auth: authorization code is required")
	}
	if in.Verifier == "" {
		return ports.Token{}, errors.New("dev auth: PKCE verifier is required")
	}
	tok, err := randomString(32)
	if err != nil {
		return ports.Token{}, fmt.Errorf("generate token: %w", err)
	}
	return ports.Token{AccessToken: tok, Expiry: p.now().Add(time.Hour)}, nil
}

// FetchUser returns the configured user for any non-empty token.
func (p *Provider) FetchUser(_ context.Context, accessToken string) (domainauth.User, error) {
	if accessToken == "" {
		return domainauth.User{}, errors.New("dev auth: access token is required")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return cloneUser(p.user), nil
}

// RetrieveUser returns the configured user when userID matches.
func (p *Provider) RetrieveUser(_ context.Context, userID string) (domainauth.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if userID != p.user.ID {
		return domainauth.User{}, ErrUserNotFound
	}
	return cloneUser(p.user), nil
}

// PatchUser merges data keys into the user.
func (p *Provider) PatchUser(_ context.Context, userID string, patch ports.UserPatch) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if userID != p.user.ID {
		return ErrUserNotFound
	}
	if patch.Data != nil {
		if p.user.Data == nil {
			p.user.Data = map[string]any{}
		}
		maps.Copy(p.user.Data, patch.Data)
	}
	return nil
}

// GenerateSecret returns a fresh 160-bit TOTP secret.
func (p *Provider) GenerateSecret(context.Context) (ports.TwoFactorSecret, error) {
	raw, b32, err := generateTOTPSecret()
	if err != nil {
		return ports.TwoFactorSecret{}, fmt.Errorf("generate secret: %w", err)
	}
	return ports.TwoFactorSecret{
		Secret:              base64.StdEncoding.EncodeToString(raw),
		SecretBase32Encoded: b32,
	}, nil
}

// EnableTwoFactor checks a TOTP code against a base32 secret and adds it as an authenticator method.
func (p *Provider) EnableTwoFactor(_ context.Context, in ports.EnableTwoFactorInput) error {
	secret, err := decodeTOTPSecret(in.Secret)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if in.UserID != p.user.ID {
		return ErrUserNotFound
	}
	if !validTOTP(secret, in.Code, p.now()) {
		return ErrInvalidCode
	}
	if p.user.TwoFactor == nil {
		p.user.TwoFactor = &domainauth.TwoFactor{}
	}
	p.nextMethod++
	p.user.TwoFactor.Methods = append(p.user.TwoFactor.Methods, domainauth.TwoFactorMethod{
		ID:     "dev-" + strconv.Itoa(p.nextMethod),
		Method: domainauth.TwoFactorMethodAuthenticator,
		Secret: in.Secret,
	})
	return nil
}

// DisableTwoFactor removes the method after checking code against the method's secret.
func (p *Provider) DisableTwoFactor(_ context.Context, in ports.DisableTwoFactorInput) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if in.UserID != p.user.ID {
		return ErrUserNotFound
	}
	if p.user.TwoFactor == nil {
		return errors.New("dev auth: no two-factor methods enabled")
	}

	methods := p.user.TwoFactor.Methods
	for i, m := range methods {
		if in.MethodID != "" && m.ID != in.MethodID {
			continue
		}
		secret, err := decodeTOTPSecret(m.Secret)
		if err != nil {
			return err
		}
		if !validTOTP(secret, in.Code, p.now()) {
			return ErrInvalidCode
		}
		p.user.TwoFactor.Methods = append(methods[:i:i], methods[i+1:]...)
		return nil
	}
	return fmt.Errorf("dev auth: two-factor method %q not found", in.MethodID)
}

func cloneUser(u domainauth.User) domainauth.User {
	out := u
	if u.Registrations != nil {
		out.Registrations = make([]domainauth.Registration, len(u.Registrations))
		for i, r := range u.Registrations {
			r.Roles = append([]string(nil), r.Roles...)
			out.Registrations[i] = r
		}
	}
	if u.TwoFactor != nil {
		out.TwoFactor = &domainauth.TwoFactor{
			Methods: append([]domainauth.TwoFactorMethod(nil), u.TwoFactor.Methods...),
		}
	}
	out.Data = maps.Clone(u.Data)
	return out
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	b := make([]byte, (n*3+3)/4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	return s[:n], nil
}
