package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/users-api/internal/config"
	"github.com/phrazzld/users-api/internal/platform/mongo"
	"github.com/phrazzld/users-api/internal/platform/postgres/migrations"
	"github.com/phrazzld/users-api/internal/redact"
	"github.com/pressly/goose/v3"
)

// MigrationTableName is the goose version table.
const MigrationTableName = "schema_migrations"

var validMigrationCommands = map[string]bool{
	"up":      true,
	"down":    true,
	"status":  true,
	"version": true,
}

// slogGooseLogger forwards goose output to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

// Fatalf logs at error level and leaves exiting to main.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

// runMigrations executes command against the configured backend. For
// MongoDB only "up" applies, and it ensures the collection indexes.
func runMigrations(ctx context.Context, cfg *config.Config, command string, logger *slog.Logger) error {
	if !validMigrationCommands[command] {
		return fmt.Errorf("unknown migration command %q", command)
	}

	log := logger.With("component", "migrations", "driver", cfg.Database.Driver, "command", command)

	switch cfg.Database.Driver {
	case config.DriverMongo:
		return migrateMongo(ctx, cfg, command, log)
	case config.DriverPostgres:
		return migratePostgres(ctx, cfg, command, log)
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func migrateMongo(ctx context.Context, cfg *config.Config, command string, log *slog.Logger) error {
	if command != "up" {
		log.Info("nothing to do for mongo")
		return nil
	}

	client, err := mongo.Connect(ctx, cfg.Database.URL, cfg.Database.Timeout())
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	coll := client.Database(cfg.Database.Name).Collection(mongo.UsersCollection)
	if err := mongo.EnsureUserIndexes(ctx, coll); err != nil {
		return err
	}

	log.Info("mongo indexes ensured", "collection", mongo.UsersCollection)
	return nil
}

func migratePostgres(ctx context.Context, cfg *config.Config, command string, log *slog.Logger) error {
	db, err := openPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	goose.SetLogger(&slogGooseLogger{logger: log})
	goose.SetBaseFS(migrations.FS)
	goose.SetTableName(MigrationTableName)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	log.Info("starting migration command")

	switch command {
	case "up":
		err = goose.UpContext(ctx, db, ".")
	case "down":
		err = goose.DownContext(ctx, db, ".")
	case "status":
		err = goose.StatusContext(ctx, db, ".")
	case "version":
		err = goose.VersionContext(ctx, db, ".")
	}
	if err != nil {
		log.Error("migration failed", "error", redact.Error(err))
		return fmt.Errorf("migration %s failed: %w", command, err)
	}

	log.Info("migration command completed")
	return nil
}
