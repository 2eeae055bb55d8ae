package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/users-api/internal/domain"
	"github.com/phrazzld/users-api/internal/events"
	"github.com/phrazzld/users-api/internal/mocks"
	"github.com/phrazzld/users-api/internal/platform/logger"
	"github.com/phrazzld/users-api/internal/service"
	"github.com/phrazzld/users-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

type fixture struct {
	store   *mocks.MockUserStore
	hasher  *mocks.MockPasswordHasher
	emitter *mocks.MockEventEmitter
	svc     *service.UserServiceImpl
}

func newFixture(t *testing.T, users ...*domain.User) *fixture {
	t.Helper()

	log, _ := logger.NewTestLogger(t)
	f := &fixture{
		store:   mocks.NewMockUserStore(users...),
		hasher:  &mocks.MockPasswordHasher{},
		emitter: &mocks.MockEventEmitter{},
	}
	f.svc = service.NewUserService(f.store, f.hasher, f.emitter, log)
	return f
}

func storedUser(t *testing.T, name, email string, created time.Time) *domain.User {
	t.Helper()

	u, err := domain.NewUser(name, email, "secret1")
	require.NoError(t, err)
	u.HashedPassword = "hashed:secret1"
	u.Password = ""
	u.CreatedAt = created
	u.UpdatedAt = created
	return u
}

func TestListUsers(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	older := storedUser(t, "Old", "old@example.com", now.Add(-time.Hour))
	newer := storedUser(t, "New", "new@example.com", now)
	f := newFixture(t, newer, older)

	users, err := f.svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, older.ID, users[0].ID)
	assert.Equal(t, newer.ID, users[1].ID)

	empty := newFixture(t)
	users, err = empty.svc.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)

	boom := errors.New("db down")
	f.store.ListFn = func(context.Context) ([]*domain.User, error) { return nil, boom }
	_, err = f.svc.ListUsers(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestGetUser(t *testing.T) {
	t.Parallel()

	user := storedUser(t, "Jane", "jane@example.com", time.Now())
	f := newFixture(t, user)

	got, err := f.svc.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	got, err = f.svc.GetUser(context.Background(), strings.ToUpper(user.ID))
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = f.svc.GetUser(context.Background(), domain.NewID())
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	called := false
	f.store.GetByIDFn = func(context.Context, string) (*domain.User, error) {
		called = true
		return nil, nil
	}
	_, err = f.svc.GetUser(context.Background(), "not-an-id")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
	assert.False(t, called, "malformed ids never reach the store")
}

func TestRegisterUser(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		user, err := f.svc.RegisterUser(context.Background(), "Jane", " Jane@Example.com ", "secret1")
		require.NoError(t, err)

		assert.Equal(t, "jane@example.com", user.Email)
		assert.Equal(t, "hashed:secret1", user.HashedPassword)
		assert.Empty(t, user.Password)
		assert.False(t, user.IsAdmin)

		stored, err := f.store.GetByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, "hashed:secret1", stored.HashedPassword)
		assert.Empty(t, stored.Password)

		assert.Equal(t, []string{events.TypeUserRegistered}, f.emitter.Types())
		assert.Equal(t, user.ID, f.emitter.Events[0].UserID)
	})

	t.Run("validation errors", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name, userName, email, password string
			want                            error
		}{
			{"missing name", "", "a@example.com", "secret1", domain.ErrEmptyName},
			{"bad email", "Jane", "nope", "secret1", domain.ErrInvalidEmail},
			{"short password", "Jane", "a@example.com", "12345", domain.ErrPasswordTooShort},
			{"long password", "Jane", "a@example.com", strings.Repeat("p", 73), domain.ErrPasswordTooLong},
		}

		for _, tt := range tests {
			f := newFixture(t)
			_, err := f.svc.RegisterUser(context.Background(), tt.userName, tt.email, tt.password)
			assert.ErrorIs(t, err, tt.want, tt.name)
			assert.ErrorIs(t, err, domain.ErrValidation, tt.name)
			assert.Empty(t, f.store.Users, tt.name)
			assert.Empty(t, f.emitter.Events, tt.name)
		}
	})

	t.Run("existing email", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, storedUser(t, "Jane", "jane@example.com", time.Now()))
		_, err := f.svc.RegisterUser(context.Background(), "Other", "JANE@example.com", "secret1")
		assert.ErrorIs(t, err, store.ErrEmailExists)
		assert.Len(t, f.store.Users, 1)
		assert.Empty(t, f.emitter.Events)
	})

	t.Run("duplicate detected on create", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.store.CreateFn = func(context.Context, *domain.User) error { return store.ErrEmailExists }
		_, err := f.svc.RegisterUser(context.Background(), "Jane", "jane@example.com", "secret1")
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})

	t.Run("lookup failure", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("timeout")
		f := newFixture(t)
		f.store.GetByEmailFn = func(context.Context, string) (*domain.User, error) { return nil, boom }
		_, err := f.svc.RegisterUser(context.Background(), "Jane", "jane@example.com", "secret1")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("hash failure", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("hash failed")
		f := newFixture(t)
		f.hasher.HashFn = func(string) (string, error) { return "", boom }
		_, err := f.svc.RegisterUser(context.Background(), "Jane", "jane@example.com", "secret1")
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, f.store.Users)
	})

	t.Run("emit failure does not fail registration", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.emitter.Err = errors.New("handler failed")
		_, err := f.svc.RegisterUser(context.Background(), "Jane", "jane@example.com", "secret1")
		assert.NoError(t, err)
	})

	t.Run("nil emitter", func(t *testing.T) {
		t.Parallel()

		svc := service.NewUserService(mocks.NewMockUserStore(), &mocks.MockPasswordHasher{}, nil, nil)
		_, err := svc.RegisterUser(context.Background(), "Jane", "jane@example.com", "secret1")
		assert.NoError(t, err)
	})
}

func TestUpdateUser(t *testing.T) {
	t.Parallel()

	t.Run("partial update", func(t *testing.T) {
		t.Parallel()

		user := storedUser(t, "Jane", "jane@example.com", time.Now())
		f := newFixture(t, user)

		got, err := f.svc.UpdateUser(context.Background(), user.ID, domain.UserPatch{
			Name:    strPtr("Janet"),
			Email:   strPtr(""),
			IsAdmin: boolPtr(true),
		})
		require.NoError(t, err)
		assert.Equal(t, "Janet", got.Name)
		assert.Equal(t, "jane@example.com", got.Email)
		assert.True(t, got.IsAdmin)

		require.Equal(t, []string{events.TypeUserUpdated}, f.emitter.Types())
		assert.Equal(t, []string{"name", "isAdmin"}, f.emitter.Events[0].Fields)
	})

	t.Run("isAdmin false is applied", func(t *testing.T) {
		t.Parallel()

		user := storedUser(t, "Jane", "jane@example.com", time.Now())
		user.IsAdmin = true
		f := newFixture(t, user)

		got, err := f.svc.UpdateUser(context.Background(), user.ID, domain.UserPatch{IsAdmin: boolPtr(false)})
		require.NoError(t, err)
		assert.False(t, got.IsAdmin)
	})

	t.Run("email is normalized", func(t *testing.T) {
		t.Parallel()

		user := storedUser(t, "Jane", "jane@example.com", time.Now())
		f := newFixture(t, user)

		got, err := f.svc.UpdateUser(context.Background(), user.ID, domain.UserPatch{Email: strPtr(" NEW@Example.com")})
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", got.Email)
	})

	t.Run("empty patch returns current record", func(t *testing.T) {
		t.Parallel()

		user := storedUser(t, "Jane", "jane@example.com", time.Now())
		f := newFixture(t, user)
		f.store.UpdateFn = func(context.Context, string, domain.UserPatch) (*domain.User, error) {
			t.Fatal("store update must not be called")
			return nil, nil
		}

		got, err := f.svc.UpdateUser(context.Background(), user.ID, domain.UserPatch{Name: strPtr("  ")})
		require.NoError(t, err)
		assert.Equal(t, "Jane", got.Name)
		assert.Empty(t, f.emitter.Events)
	})

	t.Run("errors", func(t *testing.T) {
		t.Parallel()

		user := storedUser(t, "Jane", "jane@example.com", time.Now())
		other := storedUser(t, "Other", "other@example.com", time.Now())
		f := newFixture(t, user, other)

		_, err := f.svc.UpdateUser(context.Background(), "garbage", domain.UserPatch{Name: strPtr("x")})
		assert.ErrorIs(t, err, store.ErrUserNotFound)

		_, err = f.svc.UpdateUser(context.Background(), domain.NewID(), domain.UserPatch{Name: strPtr("x")})
		assert.ErrorIs(t, err, store.ErrUserNotFound)

		_, err = f.svc.UpdateUser(context.Background(), domain.NewID(), domain.UserPatch{})
		assert.ErrorIs(t, err, store.ErrUserNotFound)

		_, err = f.svc.UpdateUser(context.Background(), user.ID, domain.UserPatch{Email: strPtr("bad")})
		assert.ErrorIs(t, err, domain.ErrInvalidEmail)

		_, err = f.svc.UpdateUser(context.Background(), user.ID, domain.UserPatch{Email: strPtr("other@example.com")})
		assert.ErrorIs(t, err, store.ErrEmailExists)

		assert.Len(t, f.store.Users, 2, "update never inserts")
		assert.Empty(t, f.emitter.Events)
	})
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	user := storedUser(t, "Jane", "jane@example.com", time.Now())

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, user)
		got, err := f.svc.Authenticate(context.Background(), "Jane@Example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, user)
		_, err := f.svc.Authenticate(context.Background(), "jane@example.com", "wrong!")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, user)
		_, err := f.svc.Authenticate(context.Background(), "nobody@example.com", "secret1")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
		assert.Zero(t, f.hasher.CompareCallCount)
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("db down")
		f := newFixture(t)
		f.store.GetByEmailFn = func(context.Context, string) (*domain.User, error) { return nil, boom }
		_, err := f.svc.Authenticate(context.Background(), "jane@example.com", "secret1")
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, service.ErrInvalidCredentials)
	})
}

func TestUpdateUserNormalizesID(t *testing.T) {
	t.Parallel()

	user := storedUser(t, "Jane", "jane@example.com", time.Now())
	f := newFixture(t, user)

	var storeID string
	f.store.UpdateFn = func(_ context.Context, id string, _ domain.UserPatch) (*domain.User, error) {
		storeID = id
		u := *user
		return &u, nil
	}

	_, err := f.svc.UpdateUser(context.Background(), strings.ToUpper(user.ID), domain.UserPatch{Name: strPtr("Janet")})
	require.NoError(t, err)
	assert.Equal(t, user.ID, storeID)

	require.Len(t, f.emitter.Events, 1)
	assert.Equal(t, user.ID, f.emitter.Events[0].UserID)
}

func TestStoreErrorsAreRedactedInLogs(t *testing.T) {
	t.Parallel()

	log, buf := logger.NewTestLogger(t)
	userStore := mocks.NewMockUserStore()
	userStore.GetByEmailFn = func(context.Context, string) (*domain.User, error) {
		return nil, errors.New("dial mongodb://admin:hunter2@db:27017 for jane@example.com")
	}
	svc := service.NewUserService(userStore, &mocks.MockPasswordHasher{}, nil, log)

	_, err := svc.RegisterUser(context.Background(), "Jane", "jane@example.com", "secret1")
	require.Error(t, err)

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	out := buf.String()
	assert.Contains(t, out, "failed to check existing email")
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "jane@example.com")
}
