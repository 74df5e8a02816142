package models

import "time"

// AccessToken represents an issued bearer token.
// Only the SHA-256 hash of the secret part is persisted; the plaintext
// compound value ("<id>|<secret>") is returned to the caller exactly once at
// issuance. A leaked table therefore never exposes usable tokens.
type AccessToken struct {
	// ID is the public identifier, the first part of the compound token value.
	ID uint64 `gorm:"primaryKey"`
	// UserID is the ID of the owning user.
	UserID uint64 `gorm:"not null;index"`
	// User is the owning user (loaded via foreign key).
	// Deleting a user removes all of their tokens (CASCADE).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	// Name is the display label given at issuance (e.g., "ambulancia-token").
	Name string `gorm:"size:100;not null"`
	// TokenHash is the hex encoded SHA-256 hash of the secret part.
	TokenHash string `gorm:"size:64;not null;uniqueIndex"`
	// Abilities is the ordered snapshot of permission names captured at issuance.
	Abilities []string `gorm:"serializer:json"`
	// ExpiresAt is the expiry instant. Nil means non-expiring, although the
	// issuing policy always sets one.
	ExpiresAt *time.Time
	// Revoked marks the token as unusable. Revocation is terminal.
	Revoked bool `gorm:"not null;default:false"`
	// LastUsedAt records the most recent successful validation.
	LastUsedAt *time.Time
	// CreatedAt is the timestamp when the token was issued (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the AccessToken model.
// This overrides GORM's default pluralized table naming.
func (AccessToken) TableName() string {
	return "access_tokens"
}

// Expired reports whether the token is past its expiry at the given instant.
func (t *AccessToken) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}

// Usable reports whether the token is neither revoked nor expired.
func (t *AccessToken) Usable(now time.Time) bool {
	return !t.Revoked && !t.Expired(now)
}
