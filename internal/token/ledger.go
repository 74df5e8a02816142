// Package token implements the bearer token ledger.
//
// A token is presented as a compound value "<id>|<secret>". The id part is
// the public identifier of the ledger row, the secret part exists only in
// the plaintext returned once at issuance; the ledger persists nothing but
// its SHA-256 hash. Validation recomputes the hash from the presented secret
// and compares in constant time, so neither a leaked database nor a timing
// side channel yields a usable token.
package token

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ambulancia-platform/ms-auth/internal/db/models"
	"github.com/ambulancia-platform/ms-auth/internal/randstr"
)

var (
	// ErrMalformed is returned when the presented value is not a two part
	// compound with a numeric public identifier. Rejected before any lookup.
	ErrMalformed = errors.New("token is malformed")

	// ErrInvalid is returned for every negative validation outcome: unknown
	// identifier, secret mismatch, revoked or expired. Callers must branch on
	// it, it is an ordinary result and not a fault.
	ErrInvalid = errors.New("token is revoked, expired or unknown")
)

// separator joins the public identifier and the secret part.
const separator = "|"

// Ledger persists and validates issued bearer tokens.
type Ledger struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(l *Ledger) {
		if fn != nil {
			l.now = fn
		}
	}
}

// NewLedger creates a token ledger with the given expiry policy.
func NewLedger(db *gorm.DB, ttl time.Duration, opts ...Option) *Ledger {
	l := &Ledger{
		db:  db,
		ttl: ttl,
		now: time.Now,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Issue mints a token for the user with the given label and ability snapshot.
// It returns the one-time plaintext compound value and the persisted record.
// The plaintext is never retrievable again: losing it means reissuing.
func (l *Ledger) Issue(userID uint64, name string, abilities []string) (string, *models.AccessToken, error) {
	secret := randstr.Secret()
	expiresAt := l.now().Add(l.ttl)

	if abilities == nil {
		abilities = []string{}
	}

	record := models.AccessToken{
		UserID:    userID,
		Name:      name,
		TokenHash: hashSecret(secret),
		Abilities: abilities,
		ExpiresAt: &expiresAt,
	}

	if err := l.db.Create(&record).Error; err != nil {
		return "", nil, fmt.Errorf("failed to store token: %w", err)
	}

	plaintext := strconv.FormatUint(record.ID, 10) + separator + secret

	return plaintext, &record, nil
}

// Validate parses and checks a presented compound value. Malformed input
// fails closed with ErrMalformed; missing, mismatching, revoked and expired
// tokens all return ErrInvalid. On success the record is returned and its
// last-used timestamp updated.
func (l *Ledger) Validate(presented string) (*models.AccessToken, error) {
	id, secret, err := split(presented)
	if err != nil {
		return nil, err
	}

	var record models.AccessToken

	err = l.db.First(&record, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalid
		}

		return nil, fmt.Errorf("failed to look up token: %w", err)
	}

	if !secureCompare(record.TokenHash, secret) {
		return nil, ErrInvalid
	}

	if !record.Usable(l.now()) {
		return nil, ErrInvalid
	}

	now := l.now()
	record.LastUsedAt = &now

	// best effort, a failed touch must not invalidate the token
	_ = l.db.Model(&models.AccessToken{}).
		Where("id = ?", record.ID).
		Update("last_used_at", now).Error

	return &record, nil
}

// Revoke marks the token unusable. Idempotent: revoking an already revoked
// token is not an error.
func (l *Ledger) Revoke(record *models.AccessToken) error {
	if record == nil {
		return nil
	}

	err := l.db.Model(&models.AccessToken{}).
		Where("id = ?", record.ID).
		Update("revoked", true).Error
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	record.Revoked = true

	return nil
}

// RevokeAllForUser marks every token of the user unusable.
// Used on account deactivation and deletion cleanup.
func (l *Ledger) RevokeAllForUser(userID uint64) error {
	err := l.db.Model(&models.AccessToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
	if err != nil {
		return fmt.Errorf("failed to revoke user tokens: %w", err)
	}

	return nil
}

// PruneExpired deletes revoked rows and rows whose expiry is older than the
// given grace period. Purely operational housekeeping: expiry is enforced at
// validation time, correctness never depends on this sweep running.
func (l *Ledger) PruneExpired(grace time.Duration) (int64, error) {
	cutoff := l.now().Add(-grace)

	result := l.db.Where("revoked = ? OR expires_at < ?", true, cutoff).
		Delete(&models.AccessToken{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune tokens: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// split parses the compound value into (public identifier, secret part).
func split(presented string) (uint64, string, error) {
	parts := strings.Split(presented, separator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return 0, "", ErrMalformed
	}

	id, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return 0, "", ErrMalformed
	}

	return id, parts[1], nil
}

// hashSecret returns the hex encoded SHA-256 hash of the secret part.
func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// secureCompare recomputes the verifier from the presented secret and
// compares it to the stored hash in constant time.
func secureCompare(storedHash, secret string) bool {
	actual := hashSecret(secret)

	if len(storedHash) != len(actual) {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(storedHash), []byte(actual)) == 1
}
