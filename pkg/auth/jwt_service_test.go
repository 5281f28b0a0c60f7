package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	id := uuid.New()

	token, err := svc.GenerateToken(id, "owner")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.AccountID)
	assert.Equal(t, "owner", claims.Username)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
}

func TestRefreshTokenIsNotAnAccessToken(t *testing.T) {
	svc := NewJWTService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	id := uuid.New()

	refresh, err := svc.GenerateRefreshToken(id)
	require.NoError(t, err)

	_, err = svc.ValidateToken(refresh)
	assert.Error(t, err)

	claims, err := svc.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, id, claims.AccountID)
}

func TestSharedSecretStillChecksTokenType(t *testing.T) {
	svc := NewJWTService("same", "", time.Hour, time.Hour)
	access, err := svc.GenerateToken(uuid.New(), "owner")
	require.NoError(t, err)

	_, err = svc.ValidateRefreshToken(access)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestExpiredToken(t *testing.T) {
	svc := NewJWTService("access-secret", "", time.Minute, time.Minute)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := svc.GenerateToken(uuid.New(), "owner")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}
