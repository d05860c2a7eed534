package service

import (
	"context"
	"errors"
	"maps"
	"strings"

	domainauth "github.com/target/event-planner/internal/domain/auth"
	apperrors "github.com/target/event-planner/internal/errors"
	"github.com/target/event-planner/internal/ports"
)

// ProfileServiceOptions groups dependencies for ProfileService.
type ProfileServiceOptions struct {
	Provider ports.IdentityProvider // Required
	Auth     *AuthService           // Required: persists session changes
}

// ProfileService reads and updates the app-specific profile data kept by the identity provider.
type ProfileService struct {
	provider ports.IdentityProvider
	auth     *AuthService
}

// NewProfileService constructs a new ProfileService.
func NewProfileService(opts ProfileServiceOptions) (*ProfileService, error) {
	if opts.Provider == nil {
		return nil, errors.New("IdentityProvider is required")
	}
	if opts.Auth == nil {
		return nil, errors.New("AuthService is required")
	}
	return &ProfileService{provider: opts.Provider, auth: opts.Auth}, nil
}

// ProfileView is the freshly loaded user with its two-factor status.
type ProfileView struct {
	User             domainauth.User `json:"user"`
	TwoFactorEnabled bool            `json:"is2FAEnabled"`
}

// Get loads the session user from the provider.
func (s *ProfileService) Get(ctx context.Context, sess *domainauth.Session) (*ProfileView, error) {
	if !sess.Authenticated() {
		return nil, apperrors.Unauthorized("not_authorized")
	}
	user, err := s.provider.RetrieveUser(ctx, sess.User.ID)
	if err != nil {
		return nil, apperrors.Upstream(err, "Failed to load profile")
	}
	return &ProfileView{User: user, TwoFactorEnabled: user.TwoFactorEnabled()}, nil
}

// ProfileUpdate holds the editable profile fields. Empty values clear the field.
type ProfileUpdate struct {
	Nickname      string
	FavoriteEvent string
	Hobby         string
}

func (u ProfileUpdate) data() map[string]any {
	out := make(map[string]any, 3)
	for k, v := range map[string]string{
		"nickname":      u.Nickname,
		"favoriteEvent": u.FavoriteEvent,
		"hobby":         u.Hobby,
	} {
		if v = strings.TrimSpace(v); v == "" {
			out[k] = nil
		} else {
			out[k] = v
		}
	}
	return out
}

// Update patches the user's data bag and mirrors it into the session.
func (s *ProfileService) Update(ctx context.Context, sess *domainauth.Session, in ProfileUpdate) error {
	if !sess.Authenticated() {
		return apperrors.Unauthorized("not_authorized")
	}
	data := in.data()
	if err := s.provider.PatchUser(ctx, sess.User.ID, ports.UserPatch{Data: data}); err != nil {
		return apperrors.Upstream(err, "Failed to update profile")
	}

	if sess.User.Data == nil {
		sess.User.Data = make(map[string]any, len(data))
	}
	maps.Copy(sess.User.Data, data)
	sess.CustomData = sess.User.Data
	return s.auth.SaveSession(ctx, sess)
}
