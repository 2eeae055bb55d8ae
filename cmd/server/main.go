// Package main runs the users API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/users-api/internal/config"
	"github.com/phrazzld/users-api/internal/platform/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to a config.yaml file (default: ./config.yaml when present)")
	migrate := flag.String("migrate", "", "Run a migration command and exit: up, down, status, version")
	verbose := flag.Bool("verbose", false, "Log at debug level regardless of configuration")
	flag.Parse()

	if err := run(*configPath, *migrate, *verbose); err != nil {
		slog.Error("users-api exited with error", "error", err)
		os.Exit(1)
	}
}

func run(configPath, migrate string, verbose bool) error {
	cfg, err := loadAppConfig(configPath)
	if err != nil {
		return err
	}
	if verbose {
		cfg.Server.LogLevel = "debug"
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if migrate != "" {
		return runMigrations(ctx, cfg, migrate, log)
	}

	userStore, closeStore, err := setupUserStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	app, err := newApplication(cfg, log, userStore, closeStore)
	if err != nil {
		_ = closeStore(context.Background())
		return err
	}
	return app.Run(ctx)
}

// loadAppConfig loads configuration and logs a safe summary of it.
func loadAppConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database_driver", cfg.Database.Driver)
	slog.Debug("auth configuration",
		"jwt_secret_present", cfg.Auth.JWTSecret != "",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	return cfg, nil
}
