// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthVault Contributors

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/authvault/authvault/internal/auth"
	authpg "github.com/authvault/authvault/internal/auth/postgres"
	"github.com/authvault/authvault/internal/config"
	"github.com/authvault/authvault/internal/httpapi"
	"github.com/authvault/authvault/internal/logging"
	"github.com/authvault/authvault/internal/observability"
	"github.com/authvault/authvault/internal/store"
)

// shutdownTimeout bounds graceful shutdown of the HTTP servers.
const shutdownTimeout = 5 * time.Second

// newServeCmd creates the serve subcommand with all flags configured.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the authentication API server",
		Long: `Start the HTTP API server which handles registration, login,
logout, and session verification, plus a metrics/health endpoint.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	config.RegisterFlags(cmd.Flags())

	return cmd
}

// runServe starts the API server and blocks until shutdown.
func runServe(ctx context.Context, cfg *config.Config) error {
	logging.SetDefault("authvault", version, cfg.LogFormat)

	slog.Info("starting authvault",
		"addr", cfg.Addr,
		"metrics_addr", cfg.MetricsAddr,
		"log_format", cfg.LogFormat,
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := store.NewPool(ctx, cfg.DatabaseURL, cfg.MaxConns)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	slog.Info("database pool established")

	migrator, err := store.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := migrator.Close(); err != nil {
		slog.Warn("error closing migrator", "error", err)
	}

	slog.Info("database schema up to date")

	hasher := auth.NewArgon2idHasher()
	codec, err := auth.NewTokenCodec([]byte(cfg.JWTSecret), cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("failed to create token codec: %w", err)
	}

	users := authpg.NewUserRepository(pool)
	svc, err := auth.NewService(users, hasher)
	if err != nil {
		return fmt.Errorf("failed to create credential service: %w", err)
	}

	// Start observability server if configured
	var obsServer *observability.Server
	var metrics *observability.Metrics
	if cfg.MetricsAddr != "" {
		obsServer = observability.NewServer(cfg.MetricsAddr, func() bool {
			pingCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			return pool.Ping(pingCtx) == nil
		})
		metrics = obsServer.Metrics()

		obsErrChan, obsErr := obsServer.Start()
		if obsErr != nil {
			return fmt.Errorf("failed to start observability server: %w", obsErr)
		}
		go func() {
			if serveErr := <-obsErrChan; serveErr != nil {
				slog.Error("observability server error", "error", serveErr)
			}
		}()
	}

	handler, err := httpapi.NewHandler(svc, codec, httpapi.CookieConfig{
		Domain: cfg.CookieDomain,
		Secure: cfg.CookieSecure,
		MaxAge: cfg.TokenTTL,
	}, metrics, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create API handler: %w", err)
	}

	apiServer := httpapi.NewServer(cfg.Addr, httpapi.NewRouter(handler, cfg.AllowedOrigins))
	apiErrChan, err := apiServer.Start()
	if err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	select {
	case serveErr := <-apiErrChan:
		if serveErr != nil {
			slog.Error("api server failed", "error", serveErr)
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := apiServer.Stop(shutdownCtx); err != nil {
		slog.Warn("error stopping api server", "error", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			slog.Warn("error stopping observability server", "error", err)
		}
	}

	slog.Info("authvault stopped")
	return nil
}
