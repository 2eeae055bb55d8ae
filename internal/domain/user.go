package domain

import (
	"errors"
	"strings"
	"time"
)

// Field-level validation errors for users.
var (
	ErrEmptyUserID      = errors.New("user ID cannot be empty")
	ErrEmptyName        = errors.New("name cannot be empty")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters long")
	ErrPasswordTooLong  = errors.New("password must be at most 72 characters long")
	ErrEmptyPassword    = errors.New("password cannot be empty")
)

// Password length bounds. The upper bound is bcrypt's input limit.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

// User is a registered user record.
type User struct {
	ID             string    `json:"_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Password       string    `json:"-"` // plaintext, only set between registration and hashing
	HashedPassword string    `json:"-"`
	IsAdmin        bool      `json:"isAdmin"`
	CreatedAt      time.Time `json:"date"`
	UpdatedAt      time.Time `json:"-"`
}

// NewUser creates a User with a fresh ID and timestamps from the given
// registration details. The name is trimmed and the email normalized.
//
// The caller is responsible for hashing Password before storing the user.
func NewUser(name, email, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        NewID(),
		Name:      strings.TrimSpace(name),
		Email:     NormalizeEmail(email),
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == "" {
		return NewValidationError("id", "is required", ErrEmptyUserID)
	}
	if err := ValidateID(u.ID); err != nil {
		return NewValidationError("id", "has invalid format", err)
	}

	if strings.TrimSpace(u.Name) == "" {
		return NewValidationError("name", "is required", ErrEmptyName)
	}

	if u.Email == "" {
		return NewValidationError("email", "is required", ErrEmptyEmail)
	}
	if !IsValidEmail(u.Email) {
		return NewValidationError("email", "has invalid format", ErrInvalidEmail)
	}

	if u.Password != "" {
		if len(u.Password) < MinPasswordLength {
			return NewValidationError("password", "is too short", ErrPasswordTooShort)
		}
		if len(u.Password) > MaxPasswordLength {
			return NewValidationError("password", "is too long", ErrPasswordTooLong)
		}
	} else if u.HashedPassword == "" {
		// Stored users only carry the hash.
		return NewValidationError("password", "is required", ErrEmptyPassword)
	}

	return nil
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserPatch is a partial update of a user. Nil fields are left untouched.
type UserPatch struct {
	Name    *string
	Email   *string
	IsAdmin *bool
}

// Normalize drops empty string fields and normalizes the email.
func (p UserPatch) Normalize() UserPatch {
	out := UserPatch{IsAdmin: p.IsAdmin}

	if p.Name != nil {
		if name := strings.TrimSpace(*p.Name); name != "" {
			out.Name = &name
		}
	}

	if p.Email != nil {
		if email := NormalizeEmail(*p.Email); email != "" {
			out.Email = &email
		}
	}

	return out
}

// Validate checks the fields that are present.
func (p UserPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return NewValidationError("name", "is required", ErrEmptyName)
	}
	if p.Email != nil && !IsValidEmail(*p.Email) {
		return NewValidationError("email", "has invalid format", ErrInvalidEmail)
	}
	return nil
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.IsAdmin == nil
}

// Apply copies the present fields onto u and bumps UpdatedAt.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.IsAdmin != nil {
		u.IsAdmin = *p.IsAdmin
	}
	u.UpdatedAt = time.Now().UTC()
}
