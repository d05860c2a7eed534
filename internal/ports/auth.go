// Package ports defines interfaces (hexagonal ports) for identity, session and event storage behavior.
// Implementations live in internal/adapters; orchestration in internal/service.
package ports

import (
	"context"
	"errors"
	"time"

	domainauth "github.com/target/event-planner/internal/domain/auth"
)

// AuthorizeInput carries the per-login values embedded in the authorization URL.
type AuthorizeInput struct {
	State     string
	Challenge string
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code     string
	Verifier string
}

// Token is the result of a successful code exchange.
type Token struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	Expiry       time.Time
}

// UserPatch holds the user fields to merge into the provider's user record.
// Nil fields are left untouched.
type UserPatch struct {
	Data map[string]any
}

// TwoFactorSecret is a freshly generated TOTP shared secret.
type TwoFactorSecret struct {
	Secret              string
	SecretBase32Encoded string
}

// EnableTwoFactorInput groups parameters for enrolling a pending secret with a one-time code.
type EnableTwoFactorInput struct {
	UserID string
	Code   string
	Secret string
}

// DisableTwoFactorInput groups parameters for removing an enrolled method.
type DisableTwoFactorInput struct {
	UserID   string
	MethodID string
	Code     string
}

// IdentityProvider is the narrow surface of the external identity provider the app depends on.
type IdentityProvider interface {
	// AuthorizeURL builds the provider authorization URL for an Authorization Code + PKCE (S256) login.
	AuthorizeURL(in AuthorizeInput) string

	// ExchangeCode trades an authorization code and PKCE verifier for tokens.
	ExchangeCode(ctx context.Context, in ExchangeInput) (Token, error)

	// FetchUser returns the profile of the user the access token was issued to.
	FetchUser(ctx context.Context, accessToken string) (domainauth.User, error)

	// RetrieveUser loads a user by id with provider API credentials.
	RetrieveUser(ctx context.Context, userID string) (domainauth.User, error)

	// PatchUser merges the patch into the user's record.
	PatchUser(ctx context.Context, userID string, patch UserPatch) error

	// GenerateSecret returns a new TOTP shared secret for enrollment.
	GenerateSecret(ctx context.Context) (TwoFactorSecret, error)

	// EnableTwoFactor checks a one-time code against a pending secret and, when it matches, enrolls
	// the secret as an authenticator method. It returns an error when the code is rejected.
	EnableTwoFactor(ctx context.Context, in EnableTwoFactorInput) error

	// DisableTwoFactor removes an enrolled method, using the one-time code as credential.
	DisableTwoFactor(ctx context.Context, in DisableTwoFactorInput) error
}

// ErrSessionNotFound is returned by SessionStore.Get for unknown or expired sessions.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists and retrieves sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// RoleResolver extracts the role set from a user profile.
// ok is false when the profile has no registrations or no roles.
type RoleResolver interface {
	Roles(user domainauth.User) (roles []string, ok bool)
}
