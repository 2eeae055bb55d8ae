package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/phrazzld/users-api/internal/domain"
	"github.com/phrazzld/users-api/internal/platform/logger"
	"github.com/phrazzld/users-api/internal/redact"
	"github.com/phrazzld/users-api/internal/store"
)

const userColumns = `id, name, email, hashed_password, is_admin, created_at, updated_at`

// PostgresUserStore implements store.UserStore on the users table.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.UserStore = (*PostgresUserStore)(nil)

// NewPostgresUserStore creates a store over db, which may be a *sql.DB or a
// *sql.Tx.
func NewPostgresUserStore(db store.DBTX, log *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &PostgresUserStore{
		db:     db,
		logger: log.With(slog.String("component", "user_store"), slog.String("backend", "postgres")),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.HashedPassword,
		&u.IsAdmin,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}

// List returns all users, oldest first.
func (s *PostgresUserStore) List(ctx context.Context) ([]*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at ASC, id ASC`)
	if err != nil {
		log.Error("failed to query users", slog.String("error", redact.Error(err)))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	users := []*domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			log.Error("failed to scan user row", slog.String("error", redact.Error(err)))
			return nil, MapError(err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		log.Error("failed iterating user rows", slog.String("error", redact.Error(err)))
		return nil, MapError(err)
	}

	log.Debug("listed users", slog.Int("count", len(users)))
	return users, nil
}

// Create inserts a new user. The user must already carry a hashed password.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if user.HashedPassword == "" {
		return store.NewStoreError("user", "create", "hashed password is required", store.ErrInvalidEntity)
	}
	if err := user.Validate(); err != nil {
		log.Debug("user failed validation", slog.String("user_id", user.ID), slog.String("error", redact.Error(err)))
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID,
		user.Name,
		user.Email,
		user.HashedPassword,
		user.IsAdmin,
		user.CreatedAt.UTC(),
		user.UpdatedAt.UTC(),
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("email already exists", slog.String("user_id", user.ID))
			return store.ErrEmailExists
		}
		log.Error("failed to insert user", slog.String("user_id", user.ID), slog.String("error", redact.Error(err)))
		return MapError(err)
	}

	log.Debug("user created", slog.String("user_id", user.ID))
	return nil
}

// GetByID returns the user with id.
func (s *PostgresUserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if domain.ValidateID(id) != nil {
		return nil, store.ErrUserNotFound
	}
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id, slog.String("user_id", id))
}

// GetByEmail returns the user with the given email, compared after
// normalisation.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getOne(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		domain.NormalizeEmail(email),
		slog.String("lookup", "email"))
}

func (s *PostgresUserStore) getOne(ctx context.Context, query string, arg any, attr slog.Attr) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	u, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		mapped := mapUserError(err)
		if store.IsNotFoundError(mapped) {
			log.Debug("user not found", attr)
			return nil, mapped
		}
		log.Error("failed to fetch user", attr, slog.String("error", redact.Error(err)))
		return nil, mapped
	}
	return u, nil
}

// Update applies patch to the user with id in a single statement and returns
// the stored result. Absent users yield store.ErrUserNotFound.
func (s *PostgresUserStore) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if domain.ValidateID(id) != nil {
		return nil, store.ErrUserNotFound
	}

	var name, email sql.NullString
	var isAdmin sql.NullBool
	if patch.Name != nil {
		name = sql.NullString{String: *patch.Name, Valid: true}
	}
	if patch.Email != nil {
		email = sql.NullString{String: *patch.Email, Valid: true}
	}
	if patch.IsAdmin != nil {
		isAdmin = sql.NullBool{Bool: *patch.IsAdmin, Valid: true}
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE users SET
			name       = COALESCE($2::text, name),
			email      = COALESCE($3::text, email),
			is_admin   = COALESCE($4::boolean, is_admin),
			updated_at = $5
		WHERE id = $1
		RETURNING `+userColumns,
		id, name, email, isAdmin, time.Now().UTC(),
	)

	u, err := scanUser(row)
	if err != nil {
		mapped := mapUserError(err)
		switch {
		case store.IsNotFoundError(mapped):
			log.Debug("user not found for update", slog.String("user_id", id))
		case store.IsDuplicateError(mapped):
			log.Debug("email already exists", slog.String("user_id", id))
		default:
			log.Error("failed to update user", slog.String("user_id", id), slog.String("error", redact.Error(err)))
		}
		return nil, mapped
	}

	log.Debug("user updated", slog.String("user_id", id))
	return u, nil
}
