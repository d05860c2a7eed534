package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/target/event-planner/config"
	"github.com/target/event-planner/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logStartupInfo(ctx, logger, &cfg)
	bootstrap.LogConfigWarnings(ctx, logger, &cfg)

	infra, err := bootstrap.InitInfrastructure(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := infra.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close infrastructure failed", "error", cerr)
		}
	}()

	services, err := bootstrap.NewServices(&bootstrap.ServiceDeps{
		Config:      &cfg,
		Provider:    infra.Provider,
		EventRepo:   infra.EventRepo,
		RedisClient: infra.RedisClient,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	return bootstrap.RunWithShutdown(ctx, &cfg, services, logger)
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting event planner",
		"addr", cfg.HTTP.Addr,
		"auth_mode", cfg.Auth.Mode,
		"events_backend", cfg.Events.Backend,
		"enforce_role_permissions", cfg.Auth.EnforceRolePermissions,
		"dev", cfg.IsDev)
}
