package api

import "github.com/phrazzld/users-api/internal/domain"

// Client-facing validation messages.
const (
	MsgNameRequired     = "Name is required"
	MsgValidEmail       = "Please include a valid email"
	MsgPasswordLength   = "Please enter a password with 6 or more characters"
	MsgPasswordTooLong  = "Password must be at most 72 characters"
	MsgPasswordRequired = "Password is required"
	MsgInvalidBody      = "Invalid request body"
	MsgUserExists       = "User already exists"
	MsgUserNotFound     = "User not found"
	MsgInvalidCreds     = "Invalid Credentials"
	MsgServerError      = "Server Error"
)

// fieldMessenger is implemented by requests that name their own validation
// messages. Keys are "field.tag" or just "field".
type fieldMessenger interface {
	fieldMessages() map[string]string
}

// RegisterRequest is the body of POST /api/users.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

func (RegisterRequest) fieldMessages() map[string]string {
	return map[string]string{
		"name":         MsgNameRequired,
		"email":        MsgValidEmail,
		"password":     MsgPasswordLength,
		"password.max": MsgPasswordTooLong,
	}
}

// LoginRequest is the body of POST /api/auth.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (LoginRequest) fieldMessages() map[string]string {
	return map[string]string{
		"email":    MsgValidEmail,
		"password": MsgPasswordRequired,
	}
}

// UpdateUserRequest is the body of PATCH /api/users/{id}. Absent fields are
// left unchanged.
type UpdateUserRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	IsAdmin *bool   `json:"isAdmin"`
}

// Patch converts the request to a domain patch.
func (r UpdateUserRequest) Patch() domain.UserPatch {
	return domain.UserPatch{
		Name:    r.Name,
		Email:   r.Email,
		IsAdmin: r.IsAdmin,
	}
}

// TokenResponse is returned by registration and login.
type TokenResponse struct {
	Token string `json:"token"`
}
