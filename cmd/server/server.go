// Copyright 2025 The imagegate authors
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lmittmann/tint"
	"github.com/urfave/cli/v3"

	"imagegate/internal/config"
	"imagegate/internal/database"
	"imagegate/internal/handlers"
	"imagegate/internal/repository"
	"imagegate/internal/services/access"
	"imagegate/internal/services/email"
	"imagegate/internal/services/invite"
	"imagegate/internal/services/keycipher"
	"imagegate/internal/services/session"
)

// setupLogger configures the global slog logger.
func setupLogger(level, format string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = tint.NewHandler(os.Stdout, &tint.Options{Level: logLevel})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func runServer(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)

	logger := setupLogger(cfg.Log.Level, cfg.Log.Format)

	// Open SQLite database; migrations run on open.
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	repo := repository.New(db)

	// Services
	accessSvc := access.NewService(repo, &cfg.Auth, logger)
	cipher := keycipher.New(cfg.Auth.EncryptionSecret)
	sessions := session.NewManager(&cfg.Auth, logger)

	var mailer invite.Mailer
	if cfg.SMTP.Host != "" {
		svc, err := email.NewService(&cfg.SMTP, cfg.Server.BaseURL)
		if err != nil {
			return fmt.Errorf("failed to create email service: %w", err)
		}
		mailer = svc
	} else {
		logger.Warn("SMTP not configured, invitation mail disabled")
	}
	invites := invite.NewService(repo, mailer, logger)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handlers.ErrorHandler(logger)

	h := handlers.New(repo, accessSvc, invites, cipher, sessions, &cfg.Auth, logger)
	setupRoutes(e, h, accessSvc, sessions, logger)

	logger.Info("server_config",
		"database", cfg.Database.DSN,
		"admins", len(accessSvc.AdminEmails()),
		"site_password_set", cfg.Auth.SitePassword != "",
		"key_storage_enabled", cipher.Enabled(),
		"log_level", cfg.Log.Level,
	)

	return startWithGracefulShutdown(ctx, e, cfg, logger)
}

func startWithGracefulShutdown(ctx context.Context, e *echo.Echo, cfg *config.Config, logger *slog.Logger) error {
	errChan := make(chan error, 1)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		logger.Info("Server running", "url", cfg.Server.BaseURL)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("shutting down server")
	case err := <-errChan:
		logger.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	}

	logger.Info("server stopped")
	return nil
}
