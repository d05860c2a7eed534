package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOAuth authenticates against FusionAuth using OAuth2 + PKCE.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses the in-process dev identity provider (for development only).
	AuthModeMock AuthMode = "mock"
)

// DevAPIKey is the FusionAuth API key used when FUSIONAUTH_API_KEY is not set.
// It matches the key shipped with the FusionAuth docker quickstart and must never
// reach a real deployment.
const DevAPIKey = "DevKey8675309"

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// FusionAuthConfig contains the OAuth client and REST API settings for FusionAuth.
type FusionAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	BaseURL      string `env:"BASE_URL"           envDefault:"http://localhost:9011"`
	APIKey       string `env:"FUSIONAUTH_API_KEY"`
	RedirectURL  string `env:"OAUTH_REDIRECT_URL" envDefault:"http://localhost:3000/oauth-redirect"`
	Scope        string `env:"OAUTH_SCOPE"        envDefault:"offline_access"`
	// HTTPTimeout bounds every call made to FusionAuth.
	HTTPTimeout time.Duration `env:"OAUTH_HTTP_TIMEOUT" envDefault:"10s"`
}

// UsesDevAPIKey reports whether the API key was left unset and the dev key is in use.
func (f *FusionAuthConfig) UsesDevAPIKey() bool {
	return f.APIKey == "" || f.APIKey == DevAPIKey
}

// Scopes splits Scope on whitespace.
func (f *FusionAuthConfig) Scopes() []string {
	return strings.Fields(f.Scope)
}

// DevAuthConfig controls mock/dev authentication identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	UserID   string   `env:"USER_ID"  envDefault:"dev-user"`
	Username string   `env:"USERNAME" envDefault:"dev"`
	Email    string   `env:"EMAIL"    envDefault:"dev@example.com"`
	Roles    []string `env:"ROLES"    envDefault:"admin"           envSeparator:";"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which identity provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// FusionAuth configuration (used when Mode=oauth).
	FusionAuth FusionAuthConfig

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// RolesPath is a JMESPath expression selecting the role set from a user profile.
	RolesPath string `env:"ROLES_PATH" envDefault:"registrations[0].roles"`

	// EnforceRolePermissions makes edit and delete routes check canEdit/canDelete
	// in addition to requiring a logged-in user.
	EnforceRolePermissions bool `env:"ENFORCE_ROLE_PERMISSIONS" envDefault:"false"`
}

// Sanitize fills in defaults that depend on other fields.
func (a *AuthConfig) Sanitize() {
	if a.FusionAuth.APIKey == "" {
		a.FusionAuth.APIKey = DevAPIKey
	}
	a.FusionAuth.BaseURL = strings.TrimRight(a.FusionAuth.BaseURL, "/")
	if strings.TrimSpace(a.RolesPath) == "" {
		a.RolesPath = "registrations[0].roles"
	}
}

// Validate reports configuration that cannot work in the selected mode.
func (a *AuthConfig) Validate() error {
	if a.Mode != AuthModeOAuth {
		return nil
	}
	if a.FusionAuth.ClientID == "" {
		return fmt.Errorf("CLIENT_ID is required when AUTH_MODE=oauth")
	}
	if a.FusionAuth.BaseURL == "" {
		return fmt.Errorf("BASE_URL is required when AUTH_MODE=oauth")
	}
	return nil
}

// MFAConfig contains two-factor enrollment settings.
type MFAConfig struct {
	// Issuer is shown by authenticator apps next to the account name.
	Issuer string `env:"MFA_ISSUER" envDefault:"EventPlanner"`

	// RateLimit is the number of MFA verification attempts allowed per client IP per minute.
	RateLimit int `env:"MFA_RATE_LIMIT" envDefault:"10"`
}

// Sanitize applies guardrails to MFA configuration values.
func (m *MFAConfig) Sanitize() {
	if m.RateLimit < 1 {
		m.RateLimit = 1
	}
	if strings.TrimSpace(m.Issuer) == "" {
		m.Issuer = "EventPlanner"
	}
}
