package domain

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// User IDs are MongoDB ObjectIDs in their 24 character hex form, whichever
// store backs the service.
var objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

var validate = validator.New()

// NewID returns a fresh user ID.
func NewID() string {
	return bson.NewObjectID().Hex()
}

// ValidateID returns ErrInvalidID unless id is a 24 character hex string.
func ValidateID(id string) error {
	if !objectIDPattern.MatchString(id) {
		return ErrInvalidID
	}
	return nil
}

// IsValidEmail reports whether email is a syntactically valid address.
func IsValidEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

// NormalizeID lower-cases id so that hex IDs compare equal in every store.
func NormalizeID(id string) string {
	return strings.ToLower(id)
}
