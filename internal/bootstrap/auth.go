package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/target/event-planner/config"
	"github.com/target/event-planner/internal/adapters/authroles"
	"github.com/target/event-planner/internal/adapters/devauth"
	"github.com/target/event-planner/internal/adapters/fusionauth"
	redisadapter "github.com/target/event-planner/internal/adapters/redis"
	"github.com/target/event-planner/internal/ports"
	"github.com/target/event-planner/internal/service"
)

// BuildIdentityProvider returns the provider for the configured auth mode.
//
//nolint:ireturn // provider is chosen at runtime
func BuildIdentityProvider(ctx context.Context, cfg config.AuthConfig, logger *slog.Logger) (ports.IdentityProvider, error) {
	switch cfg.Mode {
	case config.AuthModeMock:
		logger.WarnContext(ctx, "dev auth enabled; logins skip the identity provider",
			"user_id", cfg.DevAuth.UserID, "roles", cfg.DevAuth.Roles)
		prov, err := devauth.NewProvider(devauth.Config{
			UserID:   cfg.DevAuth.UserID,
			Username: cfg.DevAuth.Username,
			Email:    cfg.DevAuth.Email,
			Roles:    cfg.DevAuth.Roles,
		})
		if err != nil {
			return nil, fmt.Errorf("create dev auth provider: %w", err)
		}
		return prov, nil

	case config.AuthModeOAuth:
		fa := cfg.FusionAuth
		client, err := fusionauth.NewClient(fusionauth.Config{
			BaseURL:      fa.BaseURL,
			ClientID:     fa.ClientID,
			ClientSecret: fa.ClientSecret,
			APIKey:       fa.APIKey,
			RedirectURL:  fa.RedirectURL,
			Scopes:       fa.Scopes(),
			HTTPClient:   &http.Client{Timeout: fa.HTTPTimeout},
		})
		if err != nil {
			return nil, fmt.Errorf("create fusionauth client: %w", err)
		}
		return client, nil

	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.Mode)
	}
}

// AuthDeps groups what BuildAuthService needs.
type AuthDeps struct {
	Auth        config.AuthConfig
	Session     config.SessionConfig
	Provider    ports.IdentityProvider
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildAuthService wires the Redis session store and JMESPath role resolver into an AuthService.
func BuildAuthService(deps AuthDeps) (*service.AuthService, error) {
	if deps.RedisClient == nil {
		return nil, errors.New("auth service requires a redis client")
	}
	roles, err := authroles.NewJMESPathResolver(deps.Auth.RolesPath)
	if err != nil {
		return nil, err
	}
	return service.NewAuthService(service.AuthServiceOptions{
		Provider: deps.Provider,
		Sessions: redisadapter.NewSessionStore(deps.RedisClient),
		Roles:    roles,
		Config: service.AuthServiceConfig{
			ClientID:   deps.Auth.FusionAuth.ClientID,
			BaseURL:    deps.Auth.FusionAuth.BaseURL,
			SessionTTL: deps.Session.TTL,
		},
		Logger: deps.Logger,
	})
}
