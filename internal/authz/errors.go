package authz

import "errors"

var (
	// ErrUserNotFound is returned when the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrRoleNotFound is returned when the referenced role does not exist under this guard.
	ErrRoleNotFound = errors.New("role not found")

	// ErrPermissionNotFound is returned when the referenced permission does not exist under this guard.
	ErrPermissionNotFound = errors.New("permission not found")
)
