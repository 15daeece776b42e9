package repositories

import (
	"errors"
	"fmt"

	"queens/internal/apperrors"

	"gorm.io/gorm"
)

// translate maps storage errors onto the API error taxonomy.
// Anything that is neither a miss nor a duplicate is treated as the
// database being unavailable (timeouts, refused connections, closed pools).
func translate(err error, resource, key string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NotFound(resource, key)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.Conflict(fmt.Sprintf("%s %s already exists", resource, key))
	default:
		return apperrors.Unavailable("database", err)
	}
}
