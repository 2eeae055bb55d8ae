package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/phrazzld/users-api/internal/config"
	"github.com/phrazzld/users-api/internal/platform/mongo"
	"github.com/phrazzld/users-api/internal/platform/postgres"
	"github.com/phrazzld/users-api/internal/redact"
	"github.com/phrazzld/users-api/internal/store"
)

// setupUserStore opens the configured backend and returns the store and a
// function releasing its connection.
func setupUserStore(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (store.UserStore, func(context.Context) error, error) {
	switch cfg.Database.Driver {
	case config.DriverMongo:
		client, err := mongo.Connect(ctx, cfg.Database.URL, cfg.Database.Timeout())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to mongo: %s", redact.Error(err))
		}
		coll := client.Database(cfg.Database.Name).Collection(mongo.UsersCollection)

		indexCtx, cancel := context.WithTimeout(ctx, cfg.Database.Timeout())
		defer cancel()
		if err := mongo.EnsureUserIndexes(indexCtx, coll); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}

		logger.Info("database connection established", "driver", cfg.Database.Driver, "database", cfg.Database.Name)
		return mongo.NewMongoUserStore(coll, logger), client.Disconnect, nil

	case config.DriverPostgres:
		db, err := openPostgres(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("database connection established", "driver", cfg.Database.Driver)
		return postgres.NewPostgresUserStore(db, logger), func(context.Context) error { return db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// openPostgres opens a pgx-backed pool and pings it.
func openPostgres(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %s", redact.Error(err))
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Database.Timeout())
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %s", redact.Error(err))
	}
	return db, nil
}
