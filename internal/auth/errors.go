package auth

import (
	"errors"

	"github.com/ambulancia-platform/ms-auth/internal/authz"
	"github.com/ambulancia-platform/ms-auth/internal/token"
)

var (
	// ErrUserNotFound is returned when no account matches the presented identity.
	ErrUserNotFound = errors.New("user does not exist")

	// ErrInvalidPassword is returned when the password comparison fails.
	ErrInvalidPassword = errors.New("password is incorrect")

	// ErrUserInactive is returned when the account exists but is not active.
	// Inactive accounts are rejected on every login path regardless of
	// credential correctness.
	ErrUserInactive = errors.New("user account is inactive")

	// ErrEmailExists is returned when attempting to create or update a user
	// with an email that is already taken.
	ErrEmailExists = errors.New("email is already in use")

	// ErrPhoneExists is returned when attempting to create or update a user
	// with a phone number that is already taken.
	ErrPhoneExists = errors.New("phone number is already in use")

	// ErrSelfDelete is returned when an administrator attempts to delete
	// their own account.
	ErrSelfDelete = errors.New("can not delete own account")

	// ErrPermissionDenied is returned when an authenticated user lacks the
	// role or permission an operation requires.
	ErrPermissionDenied = errors.New("insufficient role or permission")
)

// Category classifies a failure for the facade's status mapping. It keeps
// "who are you" (validation), "you can't do that" (authorization), garbage
// input and missing referents apart, and everything unexpected collapses to
// internal so no raw storage fault ever reaches a caller.
type Category int

const (
	// CategoryInternal is an unexpected fault, surfaced as a generic failure.
	CategoryInternal Category = iota
	// CategoryValidation covers bad credentials, unknown identities and
	// inactive accounts.
	CategoryValidation
	// CategoryAuthorization covers authenticated but insufficient access.
	CategoryAuthorization
	// CategoryMalformed covers unparseable input, rejected before any store access.
	CategoryMalformed
	// CategoryNotFound covers mutations referencing absent users or roles.
	CategoryNotFound
)

// Categorize maps an error returned by any Service operation to its category.
func Categorize(err error) Category {
	switch {
	case err == nil:
		return CategoryInternal
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrInvalidPassword),
		errors.Is(err, ErrUserInactive),
		errors.Is(err, ErrEmailExists),
		errors.Is(err, ErrPhoneExists),
		errors.Is(err, token.ErrInvalid):
		return CategoryValidation
	case errors.Is(err, ErrPermissionDenied),
		errors.Is(err, ErrSelfDelete):
		return CategoryAuthorization
	case errors.Is(err, token.ErrMalformed):
		return CategoryMalformed
	case errors.Is(err, authz.ErrUserNotFound),
		errors.Is(err, authz.ErrRoleNotFound),
		errors.Is(err, authz.ErrPermissionNotFound):
		return CategoryNotFound
	default:
		return CategoryInternal
	}
}
