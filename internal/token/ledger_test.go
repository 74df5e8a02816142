package token

import (
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ambulancia-platform/ms-auth/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.AccessToken{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func TestIssueAndValidate(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedger(db, 24*time.Hour)

	plaintext, record, err := ledger.Issue(1, "test-token", []string{"view-patients"})
	require.NoError(t, err)
	require.NotNil(t, record)

	// compound shape: numeric id, separator, secret
	parts := strings.Split(plaintext, "|")
	require.Len(t, parts, 2)
	assert.NotEmpty(t, parts[1])

	// the secret itself is never persisted
	assert.NotContains(t, record.TokenHash, parts[1])
	assert.Len(t, record.TokenHash, 64)

	validated, err := ledger.Validate(plaintext)
	require.NoError(t, err)
	assert.Equal(t, record.ID, validated.ID)
	assert.Equal(t, uint64(1), validated.UserID)
	assert.Equal(t, []string{"view-patients"}, validated.Abilities)
	assert.NotNil(t, validated.LastUsedAt)
}

func TestValidateMalformed(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedger(db, 24*time.Hour)

	for _, presented := range []string{
		"",
		"justonepart",
		"|secretonly",
		"123|",
		"notanumber|secret",
		"1|2|3",
	} {
		_, err := ledger.Validate(presented)
		assert.ErrorIs(t, err, ErrMalformed, "presented = %q", presented)
	}
}

func TestValidateUnknownID(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedger(db, 24*time.Hour)

	_, err := ledger.Validate("999|somesecretvalue")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidateWrongSecret(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedger(db, 24*time.Hour)

	plaintext, _, err := ledger.Issue(1, "test-token", nil)
	require.NoError(t, err)

	id := strings.Split(plaintext, "|")[0]

	_, err = ledger.Validate(id + "|wrongsecret")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidateRevoked(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedger(db, 24*time.Hour)

	plaintext, record, err := ledger.Issue(1, "test-token", nil)
	require.NoError(t, err)

	require.NoError(t, ledger.Revoke(record))
	assert.True(t, record.Revoked)

	_, err = ledger.Validate(plaintext)
	assert.ErrorIs(t, err, ErrInvalid)

	// revoking again is not an error
	assert.NoError(t, ledger.Revoke(record))
}

func TestValidateExpired(t *testing.T) {
	db := setupTestDB(t)

	now := time.Now()
	clock := now
	ledger := NewLedger(db, time.Hour, WithClock(func() time.Time { return clock }))

	plaintext, _, err := ledger.Issue(1, "test-token", nil)
	require.NoError(t, err)

	// still valid just before expiry
	clock = now.Add(59 * time.Minute)
	_, err = ledger.Validate(plaintext)
	assert.NoError(t, err)

	// invalid once the expiry has passed
	clock = now.Add(61 * time.Minute)
	_, err = ledger.Validate(plaintext)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestRevokeAllForUser(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedger(db, 24*time.Hour)

	first, _, err := ledger.Issue(7, "test-token", nil)
	require.NoError(t, err)
	second, _, err := ledger.Issue(7, "test-token", nil)
	require.NoError(t, err)
	other, _, err := ledger.Issue(8, "test-token", nil)
	require.NoError(t, err)

	require.NoError(t, ledger.RevokeAllForUser(7))

	_, err = ledger.Validate(first)
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = ledger.Validate(second)
	assert.ErrorIs(t, err, ErrInvalid)

	// other users are untouched
	_, err = ledger.Validate(other)
	assert.NoError(t, err)
}

func TestPruneExpired(t *testing.T) {
	db := setupTestDB(t)

	now := time.Now()
	clock := now
	ledger := NewLedger(db, time.Hour, WithClock(func() time.Time { return clock }))

	_, stale, err := ledger.Issue(1, "test-token", nil)
	require.NoError(t, err)
	require.NoError(t, ledger.Revoke(stale))

	clock = now.Add(48 * time.Hour)

	fresh, _, err := ledger.Issue(1, "test-token", nil)
	require.NoError(t, err)

	pruned, err := ledger.PruneExpired(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	// the fresh token survives the sweep
	_, err = ledger.Validate(fresh)
	assert.NoError(t, err)
}
