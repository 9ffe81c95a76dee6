package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/code-arena/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)

	meta, signed, err := tm.GenerateToken("user-1", domain.UserRoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "user-1", meta.SubjectID)
	assert.WithinDuration(t, meta.IssuedAt.Add(5*time.Minute), meta.ExpiresAt, time.Second)

	claims, err := tm.ParseToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.SubjectID)
	assert.Equal(t, domain.UserRoleAdmin, claims.Role)
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	_, signed, err := NewTokenManager("one", 5).GenerateToken("user-1", domain.UserRoleMember)
	require.NoError(t, err)

	_, err = NewTokenManager("two", 5).ParseToken(signed)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	tm := NewTokenManager("secret", 1)
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	_, signed, err := tm.GenerateToken("user-1", domain.UserRoleMember)
	require.NoError(t, err)

	_, err = tm.ParseToken(signed)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22", 4)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "hunter22"))
	assert.ErrorIs(t, ComparePassword(hash, "hunter23"), ErrPasswordMismatch)
}

func TestPasswordTooLong(t *testing.T) {
	long := strings.Repeat("a", 73)
	_, err := HashPassword(long, 4)
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	hash, err := HashPassword(long[:72], 4)
	require.NoError(t, err)
	assert.ErrorIs(t, ComparePassword(hash, long), ErrPasswordMismatch)
}

func TestComparePasswordCorruptHash(t *testing.T) {
	err := ComparePassword("not-a-bcrypt-hash", "hunter22")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPasswordMismatch)
}

func TestHashPasswordClampsCost(t *testing.T) {
	hash, err := HashPassword("hunter22", 1)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
