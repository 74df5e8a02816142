package auth

import "time"

// RoleInfo is the wire-friendly projection of a role.
type RoleInfo struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// PermissionInfo is the wire-friendly projection of a permission.
type PermissionInfo struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Profile is the resolved view of a user: the identity record plus the
// roles and effective permissions current at the time of the call.
type Profile struct {
	ID          uint64           `json:"id"`
	Name        string           `json:"name"`
	Email       string           `json:"email"`
	Phone       *string          `json:"phone,omitempty"`
	Status      string           `json:"status"`
	Roles       []RoleInfo       `json:"roles"`
	Permissions []PermissionInfo `json:"permissions"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// AuthResult is returned by every successful login-shaped operation.
// NewAccount distinguishes an implicitly provisioned account from an
// existing one, so callers never have to infer provisioning from side
// effects.
type AuthResult struct {
	Token         string    `json:"token"`
	TokenType     string    `json:"tokenType"`
	ExpiresAt     time.Time `json:"expiresAt"`
	User          Profile   `json:"user"`
	NewAccount    bool      `json:"isNewUser"`
	RequiresSetup bool      `json:"requiresSetup"`
}

// ValidationResult is the strict valid/invalid outcome of a token check.
// Invalid is an ordinary result, not an error: the zero UserID and nil
// ExpiresAt accompany a diagnostic message.
type ValidationResult struct {
	Valid     bool       `json:"isValid"`
	UserID    uint64     `json:"userId,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Message   string     `json:"message"`
}

// Page describes a slice of a paginated listing.
type Page struct {
	Total       int64 `json:"total"`
	PerPage     int   `json:"perPage"`
	CurrentPage int   `json:"currentPage"`
	LastPage    int   `json:"lastPage"`
}

// CreateUserInput carries the fields for administrative user creation.
type CreateUserInput struct {
	Name     string
	Email    string
	Phone    string // raw, normalized before storage; empty means no phone identity
	Password string
	RoleIDs  []uint
}

// UpdateUserInput carries the mutable profile fields. Nil pointers leave the
// field untouched.
type UpdateUserInput struct {
	Name   *string
	Email  *string
	Phone  *string
	Status *string
}
