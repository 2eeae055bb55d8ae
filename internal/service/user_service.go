package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/users-api/internal/domain"
	"github.com/phrazzld/users-api/internal/events"
	"github.com/phrazzld/users-api/internal/platform/logger"
	"github.com/phrazzld/users-api/internal/redact"
	"github.com/phrazzld/users-api/internal/service/auth"
	"github.com/phrazzld/users-api/internal/store"
)

// UserService provides the user operations exposed by the API.
type UserService interface {
	// ListUsers returns every user, oldest first.
	ListUsers(ctx context.Context) ([]*domain.User, error)

	// GetUser returns the user with id. Malformed IDs are reported as
	// store.ErrUserNotFound.
	GetUser(ctx context.Context, id string) (*domain.User, error)

	// RegisterUser validates, hashes and stores a new user.
	RegisterUser(ctx context.Context, name, email, password string) (*domain.User, error)

	// UpdateUser applies a partial update and returns the stored result.
	UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)

	// Authenticate checks an email and password pair.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
}

// UserServiceImpl implements UserService.
type UserServiceImpl struct {
	userStore store.UserStore
	hasher    auth.PasswordHasher
	emitter   events.EventEmitter
	logger    *slog.Logger
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a UserService. emitter may be nil.
func NewUserService(
	userStore store.UserStore,
	hasher auth.PasswordHasher,
	emitter events.EventEmitter,
	log *slog.Logger,
) *UserServiceImpl {
	if userStore == nil {
		panic("userStore cannot be nil")
	}
	if hasher == nil {
		panic("hasher cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &UserServiceImpl{
		userStore: userStore,
		hasher:    hasher,
		emitter:   emitter,
		logger:    log.With("component", "user_service"),
	}
}

func (s *UserServiceImpl) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, s.logger)
}

// ListUsers returns every user, oldest first.
func (s *UserServiceImpl) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.userStore.List(ctx)
	if err != nil {
		s.log(ctx).Error("failed to list users", "error", redact.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetUser returns the user with id.
func (s *UserServiceImpl) GetUser(ctx context.Context, id string) (*domain.User, error) {
	id = domain.NormalizeID(id)
	if domain.ValidateID(id) != nil {
		s.log(ctx).Debug("malformed user id", "user_id", id)
		return nil, store.ErrUserNotFound
	}

	user, err := s.userStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.log(ctx).Debug("user not found", "user_id", id)
		} else {
			s.log(ctx).Error("failed to retrieve user", "error", redact.Error(err), "user_id", id)
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	return user, nil
}

// RegisterUser validates, hashes and stores a new user, then emits
// user.registered.
func (s *UserServiceImpl) RegisterUser(ctx context.Context, name, email, password string) (*domain.User, error) {
	log := s.log(ctx)

	user, err := domain.NewUser(name, email, password)
	if err != nil {
		log.Debug("registration failed validation", "error", redact.Error(err))
		return nil, fmt.Errorf("invalid user: %w", err)
	}

	existing, err := s.userStore.GetByEmail(ctx, user.Email)
	switch {
	case err == nil && existing != nil:
		log.Debug("registration with existing email", "user_id", existing.ID)
		return nil, fmt.Errorf("failed to register user: %w", store.ErrEmailExists)
	case err != nil && !errors.Is(err, store.ErrUserNotFound):
		log.Error("failed to check existing email", "error", redact.Error(err))
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}

	hash, err := s.hasher.Hash(user.Password)
	if err != nil {
		log.Error("failed to hash password", "error", redact.Error(err))
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	user.HashedPassword = hash
	user.Password = ""

	if err := s.userStore.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			// Lost a race with a concurrent registration.
			log.Debug("registration with existing email", "user_id", user.ID)
		} else {
			log.Error("failed to save user", "error", redact.Error(err), "user_id", user.ID)
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	log.Info("user registered", "user_id", user.ID)
	s.emit(ctx, events.NewUserEvent(events.TypeUserRegistered, user.ID))

	return user, nil
}

// UpdateUser applies patch to the user with id. Empty string fields are
// ignored; a patch with nothing left returns the current record unchanged.
func (s *UserServiceImpl) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	log := s.log(ctx)

	id = domain.NormalizeID(id)
	if domain.ValidateID(id) != nil {
		log.Debug("malformed user id", "user_id", id)
		return nil, store.ErrUserNotFound
	}

	patch = patch.Normalize()
	if err := patch.Validate(); err != nil {
		log.Debug("update failed validation", "error", redact.Error(err), "user_id", id)
		return nil, fmt.Errorf("invalid update: %w", err)
	}

	if patch.IsEmpty() {
		return s.GetUser(ctx, id)
	}

	user, err := s.userStore.Update(ctx, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			log.Debug("user not found for update", "user_id", id)
		case errors.Is(err, store.ErrEmailExists):
			log.Debug("update to existing email", "user_id", id)
		default:
			log.Error("failed to update user", "error", redact.Error(err), "user_id", id)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	log.Info("user updated", "user_id", id)
	s.emit(ctx, events.NewUserEvent(events.TypeUserUpdated, id, patchFields(patch)...))

	return user, nil
}

// Authenticate returns the user matching email and password.
func (s *UserServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	log := s.log(ctx)

	user, err := s.userStore.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login for unknown email")
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to look up user for login", "error", redact.Error(err))
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			log.Debug("login with wrong password", "user_id", user.ID)
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to compare password", "error", redact.Error(err), "user_id", user.ID)
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	return user, nil
}

// emit publishes event. Failures are logged and never surface to callers.
func (s *UserServiceImpl) emit(ctx context.Context, event *events.UserEvent) {
	if s.emitter == nil {
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.log(ctx).Warn("failed to emit event",
			"error", redact.Error(err),
			"event_type", event.Type,
			"user_id", event.UserID)
	}
}

func patchFields(p domain.UserPatch) []string {
	var fields []string
	if p.Name != nil {
		fields = append(fields, "name")
	}
	if p.Email != nil {
		fields = append(fields, "email")
	}
	if p.IsAdmin != nil {
		fields = append(fields, "isAdmin")
	}
	return fields
}
