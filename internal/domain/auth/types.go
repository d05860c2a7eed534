// Package auth contains domain-level types for identity, sessions and permissions.
// It is pure and free of framework/adapter concerns.
package auth

import (
	"slices"
	"time"
)

// Role is a role string assigned to a user registration by the identity provider.
// Matching is exact and case-sensitive.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "Viewer"
)

// TwoFactorMethodAuthenticator is the method name for TOTP authenticator apps.
const TwoFactorMethodAuthenticator = "authenticator"

// Registration binds a user to an application with a set of roles.
type Registration struct {
	ApplicationID string   `json:"applicationId,omitempty"`
	Roles         []string `json:"roles,omitempty"`
}

// TwoFactorMethod is one enrolled second factor.
type TwoFactorMethod struct {
	ID     string `json:"id,omitempty"`
	Method string `json:"method"`
	Secret string `json:"secret,omitempty"`
}

// TwoFactor lists the user's enrolled second factors.
type TwoFactor struct {
	Methods []TwoFactorMethod `json:"methods"`
}

// User mirrors the identity provider's user record.
// Data is an open bag for app-specific fields (nickname, favoriteEvent, hobby).
type User struct {
	ID            string         `json:"id"`
	Username      string         `json:"username,omitempty"`
	Email         string         `json:"email,omitempty"`
	FirstName     string         `json:"firstName,omitempty"`
	LastName      string         `json:"lastName,omitempty"`
	Registrations []Registration `json:"registrations,omitempty"`
	TwoFactor     *TwoFactor     `json:"twoFactor,omitempty"`
	Data          map[string]any `json:"data,omitempty"`
}

// DisplayName returns the name authenticator apps and views show for the user.
func (u User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	if u.Email != "" {
		return u.Email
	}
	return u.ID
}

// TwoFactorEnabled reports whether at least one second factor is enrolled.
func (u User) TwoFactorEnabled() bool {
	return u.TwoFactor != nil && len(u.TwoFactor.Methods) > 0
}

// Session is the server-side state kept per browser.
// ID is an opaque session identifier carried in the session cookie.
type Session struct {
	ID string `json:"id"`
	// User is nil until the OAuth callback completes.
	User *User `json:"user,omitempty"`
	// StateValue is the OAuth state token issued with the last login challenge.
	StateValue string `json:"state_value,omitempty"`
	// Verifier is the PKCE code verifier matching the last challenge.
	Verifier string `json:"verifier,omitempty"`
	// RedirectURI is where to send the user after login.
	RedirectURI string `json:"redirect_uri,omitempty"`
	// TwoFactorSecret is the pending MFA enrollment secret.
	TwoFactorSecret string         `json:"two_factor_secret,omitempty"`
	CustomData      map[string]any `json:"custom_data,omitempty"`
	ExpiresAt       time.Time      `json:"expires_at"`
}

// Authenticated returns true if a user is stored in the session.
func (s *Session) Authenticated() bool { return s != nil && s.User != nil }

// ClearLoginChallenge drops the one-shot OAuth values once they were used.
func (s *Session) ClearLoginChallenge() {
	s.StateValue = ""
	s.Verifier = ""
	s.RedirectURI = ""
}

// Permissions are the event actions a user may perform.
type Permissions struct {
	CanEdit   bool `json:"canEdit"`
	CanDelete bool `json:"canDelete"`
}

// DerivePermissions maps a role set to permissions.
// admin grants edit and delete, editor grants edit only, anything else grants neither.
func DerivePermissions(roles []string) Permissions {
	switch {
	case slices.Contains(roles, string(RoleAdmin)):
		return Permissions{CanEdit: true, CanDelete: true}
	case slices.Contains(roles, string(RoleEditor)):
		return Permissions{CanEdit: true}
	default:
		return Permissions{}
	}
}
