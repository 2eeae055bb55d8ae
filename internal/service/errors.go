package service

import "errors"

// Service errors that callers check with errors.Is. Store sentinels such as
// store.ErrUserNotFound and store.ErrEmailExists pass through wrapped.
var (
	// ErrInvalidCredentials is returned by Authenticate for both an unknown
	// email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
