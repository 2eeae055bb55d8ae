package mongo

import (
	"errors"
	"fmt"

	"github.com/phrazzld/users-api/internal/store"
	driver "go.mongodb.org/mongo-driver/v2/mongo"
)

// MapError translates driver errors into store sentinels. Errors it does
// not recognise are returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, driver.ErrNoDocuments) {
		return store.ErrNotFound
	}
	if IsDuplicateKey(err) {
		return store.ErrDuplicate
	}
	return err
}

// IsDuplicateKey reports whether err is a unique index violation.
func IsDuplicateKey(err error) bool {
	return driver.IsDuplicateKeyError(err)
}

// mapUserError is MapError specialised to the users collection sentinels.
func mapUserError(err error) error {
	switch mapped := MapError(err); {
	case errors.Is(mapped, store.ErrNotFound):
		return store.ErrUserNotFound
	case errors.Is(mapped, store.ErrDuplicate):
		return store.ErrEmailExists
	case mapped == nil:
		return nil
	default:
		return fmt.Errorf("mongo: %w", mapped)
	}
}
