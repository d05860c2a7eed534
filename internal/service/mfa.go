package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	domainauth "github.com/target/event-planner/internal/domain/auth"
	apperrors "github.com/target/event-planner/internal/errors"
	"github.com/target/event-planner/internal/ports"
)

const defaultMFAIssuer = "EventPlanner"

// MFAServiceOptions groups dependencies for MFAService.
type MFAServiceOptions struct {
	Provider ports.IdentityProvider // Required
	Auth     *AuthService           // Required: persists session changes
	Issuer   string                 // otpauth issuer, default EventPlanner
}

// MFAService enrolls, verifies and disables TOTP second factors.
type MFAService struct {
	provider ports.IdentityProvider
	auth     *AuthService
	issuer   string
	logger   *slog.Logger
}

// NewMFAService constructs a new MFAService.
func NewMFAService(opts MFAServiceOptions) (*MFAService, error) {
	if opts.Provider == nil {
		return nil, errors.New("IdentityProvider is required")
	}
	if opts.Auth == nil {
		return nil, errors.New("AuthService is required")
	}
	issuer := strings.TrimSpace(opts.Issuer)
	if issuer == "" {
		issuer = defaultMFAIssuer
	}
	return &MFAService{
		provider: opts.Provider,
		auth:     opts.Auth,
		issuer:   issuer,
		logger:   opts.Auth.logger.With("component", "mfa_service"),
	}, nil
}

// SetupResult is returned to the browser to render the enrollment QR code.
type SetupResult struct {
	Secret    string `json:"secret"`
	QRCodeURL string `json:"qrCodeUrl"`
}

// Setup generates a pending TOTP secret, stores it in the session and returns the otpauth URL.
func (s *MFAService) Setup(ctx context.Context, sess *domainauth.Session) (*SetupResult, error) {
	if !sess.Authenticated() {
		return nil, apperrors.Unauthorized("not_authorized")
	}

	secret, err := s.provider.GenerateSecret(ctx)
	if err != nil {
		return nil, apperrors.Upstream(err, "Failed to generate secret.")
	}

	sess.TwoFactorSecret = secret.SecretBase32Encoded
	if err := s.auth.SaveSession(ctx, sess); err != nil {
		return nil, err
	}

	return &SetupResult{
		Secret:    secret.SecretBase32Encoded,
		QRCodeURL: s.provisioningURI(secret.SecretBase32Encoded, sess.User.DisplayName()),
	}, nil
}

func (s *MFAService) provisioningURI(secret, account string) string {
	v := url.Values{}
	v.Set("secret", secret)
	v.Set("issuer", s.issuer)
	return "otpauth://totp/" + url.PathEscape(s.issuer+":"+account) + "?" + v.Encode()
}

// Verify checks code against the pending secret and, on success, enables the
// authenticator method for the user.
func (s *MFAService) Verify(ctx context.Context, sess *domainauth.Session, code string) error {
	if !sess.Authenticated() {
		return apperrors.Unauthorized("not_authorized")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return apperrors.ValidationField("totpCode", "TOTP code is required")
	}
	if sess.TwoFactorSecret == "" {
		return apperrors.Validation("No pending two-factor setup")
	}

	userID := sess.User.ID
	secret := sess.TwoFactorSecret
	if err := s.provider.EnableTwoFactor(ctx, ports.EnableTwoFactorInput{UserID: userID, Code: code, Secret: secret}); err != nil {
		s.logger.WarnContext(ctx, "two-factor code rejected", "user_id", userID, "error", err)
		return apperrors.Upstream(err, "Invalid TOTP code")
	}

	sess.User.TwoFactor = &domainauth.TwoFactor{Methods: []domainauth.TwoFactorMethod{
		{Method: domainauth.TwoFactorMethodAuthenticator},
	}}
	sess.TwoFactorSecret = ""
	if err := s.auth.SaveSession(ctx, sess); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "two-factor enabled", "user_id", userID)
	return nil
}

// Disable removes every enrolled method, using code as the credential for each.
// An empty code is rejected before the provider is called.
func (s *MFAService) Disable(ctx context.Context, sess *domainauth.Session, code string) error {
	if !sess.Authenticated() {
		return apperrors.Unauthorized("not_authorized")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return apperrors.ValidationField("totpCode", "TOTP code is required")
	}

	userID := sess.User.ID
	user, err := s.provider.RetrieveUser(ctx, userID)
	if err != nil {
		return apperrors.Upstream(err, "Error disabling MFA")
	}
	if !user.TwoFactorEnabled() {
		return apperrors.Validation("No two-factor methods enabled.")
	}

	for _, m := range user.TwoFactor.Methods {
		in := ports.DisableTwoFactorInput{UserID: userID, MethodID: m.ID, Code: code}
		if err := s.provider.DisableTwoFactor(ctx, in); err != nil {
			return apperrors.Upstream(fmt.Errorf("method %s: %w", m.ID, err), "Error disabling MFA")
		}
	}

	sess.User.TwoFactor = nil
	if err := s.auth.SaveSession(ctx, sess); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "two-factor disabled", "user_id", userID, "methods", len(user.TwoFactor.Methods))
	return nil
}
