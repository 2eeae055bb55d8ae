package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/users-api/internal/config"
	"github.com/phrazzld/users-api/internal/events"
	"github.com/phrazzld/users-api/internal/service"
	"github.com/phrazzld/users-api/internal/service/auth"
	"github.com/phrazzld/users-api/internal/store"
)

// application holds the wired dependencies of the server.
type application struct {
	config *config.Config
	logger *slog.Logger

	userStore  store.UserStore
	closeStore func(context.Context) error

	jwtService   auth.JWTService
	hasher       auth.PasswordHasher
	eventEmitter *events.InMemoryEventEmitter
	userService  service.UserService
}

// newApplication wires services on top of an opened user store.
func newApplication(
	cfg *config.Config,
	logger *slog.Logger,
	userStore store.UserStore,
	closeStore func(context.Context) error,
) (*application, error) {
	app := &application{
		config:     cfg,
		logger:     logger,
		userStore:  userStore,
		closeStore: closeStore,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.hasher = auth.NewBcryptHasher(cfg.Auth.BcryptCost)

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(events.NewLogHandler(logger))

	app.userService = service.NewUserService(app.userStore, app.hasher, app.eventEmitter, logger)

	logger.Info("application initialized")
	return app, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases the store connection.
func (app *application) cleanup(ctx context.Context) {
	if app.closeStore != nil {
		if err := app.closeStore(ctx); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
	app.logger.Info("application shutdown completed")
}
