package api

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/users-api/internal/api/shared"
	"github.com/phrazzld/users-api/internal/domain"
	"github.com/phrazzld/users-api/internal/service"
	"github.com/phrazzld/users-api/internal/service/auth"
	"github.com/phrazzld/users-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-safe message for err.
func GetSafeErrorMessage(err error) string {
	switch {
	case err == nil:
		return MsgServerError
	case errors.Is(err, auth.ErrMissingToken):
		return "No token, authorization denied"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Token is not valid"
	case errors.Is(err, store.ErrNotFound):
		return MsgUserNotFound
	case errors.Is(err, store.ErrDuplicate):
		return MsgUserExists
	case errors.Is(err, service.ErrInvalidCredentials):
		return MsgInvalidCreds
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request"
	default:
		return MsgServerError
	}
}

// validationFieldErrors converts validator or domain validation failures
// into client field errors. messages supplies per-field text.
func validationFieldErrors(err error, messages map[string]string) []shared.FieldError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]shared.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, shared.BodyFieldError(fe.Field(), lookupMessage(messages, fe.Field(), fe.Tag())))
		}
		return out
	}

	var derr *domain.ValidationError
	if errors.As(err, &derr) {
		return []shared.FieldError{shared.BodyFieldError(derr.Field, domainFieldMessage(derr))}
	}

	return []shared.FieldError{{Msg: GetSafeErrorMessage(err)}}
}

func lookupMessage(messages map[string]string, field, tag string) string {
	if msg, ok := messages[field+"."+tag]; ok {
		return msg
	}
	if msg, ok := messages[field]; ok {
		return msg
	}
	return "Invalid value"
}

func domainFieldMessage(err *domain.ValidationError) string {
	switch {
	case errors.Is(err, domain.ErrEmptyName):
		return MsgNameRequired
	case errors.Is(err, domain.ErrEmptyEmail), errors.Is(err, domain.ErrInvalidEmail):
		return MsgValidEmail
	case errors.Is(err, domain.ErrPasswordTooLong):
		return MsgPasswordTooLong
	case errors.Is(err, domain.ErrPasswordTooShort), errors.Is(err, domain.ErrEmptyPassword):
		return MsgPasswordLength
	default:
		return "Invalid value"
	}
}

// respondWithServiceError writes the response for an error returned by the
// service layer. 5xx details are logged and never sent to the client.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)

	switch {
	case status == http.StatusBadRequest && errors.Is(err, domain.ErrValidation):
		shared.RespondWithErrors(w, r, status, validationFieldErrors(err, nil)...)
	case status == http.StatusBadRequest:
		shared.RespondWithErrors(w, r, status, shared.FieldError{Msg: GetSafeErrorMessage(err)})
	case status >= http.StatusInternalServerError:
		shared.RespondWithErrorAndLog(w, r, status, MsgServerError, err)
	default:
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
	}
}
