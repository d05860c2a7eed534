package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/target/event-planner/config"
	"github.com/target/event-planner/internal/core"
	"github.com/target/event-planner/internal/ports"
	"github.com/target/event-planner/internal/service"
)

// ServiceContainer holds the application services.
type ServiceContainer struct {
	Auth    *service.AuthService
	Events  *service.EventService
	MFA     *service.MFAService
	Profile *service.ProfileService
}

// ServiceDeps contains dependencies for building services.
type ServiceDeps struct {
	Config      *config.AppConfig
	Provider    ports.IdentityProvider
	EventRepo   core.EventRepository
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// NewServices builds every service from deps.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	authSvc, err := BuildAuthService(AuthDeps{
		Auth:        deps.Config.Auth,
		Session:     deps.Config.Session,
		Provider:    deps.Provider,
		RedisClient: deps.RedisClient,
		Logger:      logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("auth service: %w", err)
	}

	eventSvc, err := service.NewEventService(service.EventServiceOptions{Repo: deps.EventRepo, Logger: logger})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("event service: %w", err)
	}

	mfaSvc, err := service.NewMFAService(service.MFAServiceOptions{
		Provider: deps.Provider,
		Auth:     authSvc,
		Issuer:   deps.Config.MFA.Issuer,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("mfa service: %w", err)
	}

	profileSvc, err := service.NewProfileService(service.ProfileServiceOptions{Provider: deps.Provider, Auth: authSvc})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("profile service: %w", err)
	}

	return ServiceContainer{Auth: authSvc, Events: eventSvc, MFA: mfaSvc, Profile: profileSvc}, nil
}

// Infrastructure holds connections that outlive individual services.
type Infrastructure struct {
	Provider    ports.IdentityProvider
	EventRepo   core.EventRepository
	RedisClient redis.UniversalClient
	closers     []func() error
}

// Close releases every connection, joining their errors.
func (i *Infrastructure) Close() error {
	var errs []error
	for j := len(i.closers) - 1; j >= 0; j-- {
		errs = append(errs, i.closers[j]())
	}
	return errors.Join(errs...)
}

// InitInfrastructure connects the identity provider, event store and Redis.
// On failure, whatever was already opened is closed.
func InitInfrastructure(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*Infrastructure, error) {
	infra := &Infrastructure{}

	provider, err := BuildIdentityProvider(ctx, cfg.Auth, logger)
	if err != nil {
		return nil, err
	}
	infra.Provider = provider

	repo, closeRepo, err := BuildEventRepository(ctx, EventStoreDeps{
		Events:   cfg.Events,
		Postgres: cfg.Postgres,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("event store: %w", err)
	}
	infra.EventRepo = repo
	infra.closers = append(infra.closers, closeRepo)

	redisClient, err := ConnectRedis(ctx, cfg.Redis, logger)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("connect redis: %w", err), infra.Close())
	}
	infra.RedisClient = redisClient
	infra.closers = append(infra.closers, redisClient.Close)

	return infra, nil
}
