package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// UserStatus represents the lifecycle state of a user account.
type UserStatus string

const (
	// UserStatusActive indicates the account may authenticate.
	UserStatusActive UserStatus = "active"
	// UserStatusInactive indicates the account is blocked from every login path.
	UserStatusInactive UserStatus = "inactive"
)

// User represents an identity record in the platform.
// Accounts are provisioned by an administrator or implicitly through the
// phone bootstrap login. Roles are attached through RoleAssignment rows.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey"`
	// Name is the display name of the user.
	Name string `gorm:"size:255;not null"`
	// Email is the globally unique email address.
	Email string `gorm:"unique;size:255;not null"`
	// Phone is the optional phone number in canonical international form.
	// Unique when present; nil for accounts without a phone identity.
	Phone *string `gorm:"size:32;uniqueIndex"`
	// Password is the Argon2id hashed password. Empty for system-only accounts
	// that never authenticate with credentials.
	Password string `gorm:"size:255"`
	// Status indicates whether the account may log in (active or inactive).
	Status UserStatus `gorm:"type:varchar(20);not null;default:'active'"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the User model.
func (User) TableName() string {
	return "users"
}

// IsActive reports whether the account may authenticate.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
// This function should be used when creating or updating user passwords.
// It uses the default Argon2id parameters for secure password hashing.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// VerifyPassword verifies a plaintext password against the user's stored hashed password.
// It uses constant-time comparison to prevent timing attacks.
// Returns true if the password matches, false otherwise.
func (u *User) VerifyPassword(password string) bool {
	if u.Password == "" {
		return false
	}

	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}
