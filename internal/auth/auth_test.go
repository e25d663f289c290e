package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	token, issued, err := m.GenerateToken("user-1", "agent")
	require.NoError(t, err)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "agent", claims.Role)
	assert.Equal(t, issued.ID, claims.ID)
}

func TestTokenManager_RejectsForeignSignature(t *testing.T) {
	token, _, err := NewTokenManager("one", time.Hour).GenerateToken("user-1", "user")
	require.NoError(t, err)

	_, err = NewTokenManager("two", time.Hour).ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	m.ttl = -time.Minute

	token, _, err := m.GenerateToken("user-1", "user")
	require.NoError(t, err)

	_, err = m.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMemoryBlacklist(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBlacklist()

	require.NoError(t, b.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))
	require.NoError(t, b.Revoke(ctx, "jti-old", time.Now().Add(-time.Second)))

	revoked, err := b.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = b.IsRevoked(ctx, "jti-old")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestPasswordHelpers(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("password123", hash))
	assert.False(t, CheckPasswordHash("password124", hash))
	assert.False(t, NeedsRehash(hash))
}

func TestPasswordPolicy(t *testing.T) {
	assert.ErrorIs(t, ValidatePassword("short"), ErrPasswordTooShort)
	// 8 символов, но 14 байт
	assert.NoError(t, ValidatePassword("пароль12"))
	assert.ErrorIs(t, ValidatePassword(strings.Repeat("a", 73)), ErrPasswordTooLong)

	_, err := HashPassword(strings.Repeat("a", 73))
	assert.True(t, IsPasswordPolicyError(err))
}

func TestNeedsRehash_LegacyHashes(t *testing.T) {
	cheap, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, NeedsRehash(string(cheap)))
	assert.True(t, NeedsRehash("not-a-hash"))

	// аккаунты, перенесенные с префиксом $2y$
	legacy := "$2y$" + string(cheap)[4:]
	assert.True(t, CheckPasswordHash("password123", legacy))
	assert.False(t, CheckPasswordHash("password124", legacy))
}
