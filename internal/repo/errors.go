// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file centralizes the error sentinels and the
// driver-agnostic classification helpers shared by all repositories.
package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate indicates that an insert collided with a unique constraint
// (user email, city triple, idempotency tuple). Callers that rely on
// get-or-create semantics catch it and re-fetch the surviving row.
var ErrDuplicate = errors.New("duplicate")

// IsDuplicate reports whether err is a unique-constraint violation. GORM's
// sentinel is checked first; the string fallbacks cover drivers that return
// plain-text errors (glebarez/sqlite, Postgres).
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, ErrDuplicate) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key")
}
