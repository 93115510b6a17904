package store

import (
	"errors"
	"strings"
)

var (
	// ErrDuplicateUsername surfaces the users.username UNIQUE constraint.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrInvalidEnum is returned when a direct write carries a severity or
	// status outside the documented sets. Bulk loads bypass this check.
	ErrInvalidEnum = errors.New("value outside allowed set")
)

// isUniqueViolation matches both the modernc sqlite and postgres constraint
// error texts; neither driver exposes a portable typed error through
// database/sql.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
