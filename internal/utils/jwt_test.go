package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("user-123", "secret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "user-123", claims.Subject)
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT("user-123", "secret")
	require.NoError(t, err)

	_, err = ParseJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestJWTGarbage(t *testing.T) {
	_, err := ParseJWT("not.a.token", "secret")
	assert.Error(t, err)
}

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken()
	require.NoError(t, err)
	b, err := GenerateToken()
	require.NoError(t, err)

	assert.Len(t, a, 64) // 32 random bytes, hex encoded
	assert.NotEqual(t, a, b)
}
