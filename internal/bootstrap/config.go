package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/target/event-planner/config"
)

// InitLogger initializes the structured logger.
func InitLogger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	return logger
}

// LoadConfig loads configuration from a .env file (when present) and the environment.
func LoadConfig() (config.AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return config.AppConfig{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg config.AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.Sanitize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LogConfigWarnings reports settings that are acceptable for development only.
func LogConfigWarnings(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	if cfg.Auth.Mode == config.AuthModeOAuth && cfg.Auth.FusionAuth.UsesDevAPIKey() {
		logger.WarnContext(ctx, "FUSIONAUTH_API_KEY not set; using the development API key")
	}
	if cfg.Auth.Mode == config.AuthModeMock && !cfg.IsDev {
		logger.WarnContext(ctx, "AUTH_MODE=mock outside dev mode; every login becomes the dev user",
			"user_id", cfg.Auth.DevAuth.UserID)
	}
	if !cfg.HTTP.SecureCookies(cfg.IsDev) {
		logger.WarnContext(ctx, "session cookies are not marked Secure")
	}
}
