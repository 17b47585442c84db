package manage

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when the targeted row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrRoleInUse refuses role deletion while users still hold the role.
	ErrRoleInUse = errors.New("role cannot be deleted, users still depend on it")

	// ErrAuthorityInUse refuses authority deletion while roles still grant it.
	ErrAuthorityInUse = errors.New("authority cannot be deleted, roles still depend on it")
)

// ConflictError reports uniqueness violations. Multiple violated fields are
// aggregated into a single message so the caller gets one response.
type ConflictError struct {
	Reasons []string
}

func (e *ConflictError) Error() string {
	return strings.Join(e.Reasons, ", ")
}
