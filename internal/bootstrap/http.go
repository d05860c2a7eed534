package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/target/event-planner/config"
	httpx "github.com/target/event-planner/internal/http"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// BuildHTTPHandler builds the router and middleware stack from config and services.
func BuildHTTPHandler(cfg *config.AppConfig, services ServiceContainer, logger *slog.Logger) http.Handler {
	rs := httpx.RouterServices{
		Auth:    services.Auth,
		Events:  services.Events,
		MFA:     services.MFA,
		Profile: services.Profile,
		Cookies: httpx.CookieConfig{
			Domain: cfg.HTTP.CookieDomain,
			Secure: cfg.HTTP.SecureCookies(cfg.IsDev),
		},
		EnforceRolePermissions: cfg.Auth.EnforceRolePermissions,
		MFARateLimit:           cfg.MFA.RateLimit,
		Logger:                 logger,
	}
	if cfg.HTTP.CompressionEnabled {
		logger.Info("HTTP compression enabled", "level", cfg.HTTP.CompressionLevel)
		rs.Compression = &httpx.CompressionConfig{Level: cfg.HTTP.CompressionLevel, Logger: logger}
	}
	return httpx.NewRouter(rs)
}

// NewHTTPServer returns a server with the timeouts used in production.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	if addr == "" {
		addr = ":3000"
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// ServeHTTP runs server on ln until ctx is canceled, then shuts it down gracefully.
func ServeHTTP(ctx context.Context, server *http.Server, ln net.Listener, logger *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.InfoContext(ctx, "starting HTTP server", "addr", ln.Addr().String())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		logger.Info("HTTP server stopped")
		return nil
	})

	return g.Wait()
}

// RunWithShutdown listens on the configured address and serves until SIGINT or SIGTERM.
func RunWithShutdown(ctx context.Context, cfg *config.AppConfig, services ServiceContainer, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := NewHTTPServer(cfg.HTTP.Addr, BuildHTTPHandler(cfg, services, logger))
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", server.Addr, err)
	}
	return ServeHTTP(ctx, server, ln, logger)
}
