package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/phrazzld/users-api/internal/api/shared"
	"github.com/phrazzld/users-api/internal/service/auth"
)

// Headers a token may arrive in.
const (
	AuthTokenHeader     = "x-auth-token"
	AuthorizationHeader = "Authorization"
)

// Messages returned on 401.
const (
	MsgNoToken      = "No token, authorization denied"
	MsgInvalidToken = "Token is not valid"
)

// AuthMiddleware authenticates requests with a JWT.
type AuthMiddleware struct {
	jwtService auth.JWTService
}

// NewAuthMiddleware creates an AuthMiddleware.
func NewAuthMiddleware(jwtService auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// Authenticate validates the request token and stores the user ID in the
// context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, MsgNoToken, auth.ErrMissingToken)
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), token)
		if err != nil {
			var opts []shared.ResponseOption
			if !errors.Is(err, auth.ErrExpiredToken) {
				opts = append(opts, shared.WithElevatedLogLevel())
			}
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, MsgInvalidToken, err, opts...)
			return
		}

		ctx := shared.WithUserID(r.Context(), claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken reads x-auth-token, then an "Authorization: Bearer" header.
func extractToken(r *http.Request) string {
	if t := strings.TrimSpace(r.Header.Get(AuthTokenHeader)); t != "" {
		return t
	}

	parts := strings.Fields(r.Header.Get(AuthorizationHeader))
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}
