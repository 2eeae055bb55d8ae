package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/users-api/internal/api/shared"
)

// getPathID returns the named chi URL parameter.
func getPathID(r *http.Request, paramName string) string {
	return chi.URLParam(r, paramName)
}

// decodeAndValidate decodes the JSON body into req and validates it. On
// failure it writes a 400 and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	return decodeRequest(w, r, req, false)
}

// decodeOptionalAndValidate is decodeAndValidate for requests where a
// missing body means the zero request.
func decodeOptionalAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	return decodeRequest(w, r, req, true)
}

func decodeRequest(w http.ResponseWriter, r *http.Request, req interface{}, allowEmpty bool) bool {
	err := shared.DecodeJSON(w, r, req)
	if allowEmpty && errors.Is(err, shared.ErrEmptyBody) {
		err = nil
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			shared.RespondWithErrors(w, r, http.StatusRequestEntityTooLarge, shared.FieldError{Msg: "Request body too large"})
			return false
		}
		shared.RespondWithErrors(w, r, http.StatusBadRequest, shared.FieldError{Msg: MsgInvalidBody})
		return false
	}

	if err := shared.ValidateRequest(req); err != nil {
		var messages map[string]string
		if fm, ok := req.(fieldMessenger); ok {
			messages = fm.fieldMessages()
		}
		shared.RespondWithErrors(w, r, http.StatusBadRequest, validationFieldErrors(err, messages)...)
		return false
	}

	return true
}
