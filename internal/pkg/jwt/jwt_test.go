package jwt_test

import (
	"testing"

	"liblend/internal/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	accessSecret  = "test-access-secret"
	refreshSecret = "test-refresh-secret"
)

func TestAccessToken(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		token, err := jwt.GenerateAccessToken(42, "alice", "LIBRARIAN", accessSecret, 15)
		require.NoError(t, err)

		claims, err := jwt.ValidateAccessToken(token, accessSecret)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.UserID)
		assert.Equal(t, "alice", claims.Username)
		assert.Equal(t, "LIBRARIAN", claims.Role)
		assert.Equal(t, "liblend", claims.Issuer)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := jwt.GenerateAccessToken(42, "alice", "LIBRARIAN", accessSecret, 15)
		require.NoError(t, err)

		_, err = jwt.ValidateAccessToken(token, "some-other-secret")
		assert.ErrorIs(t, err, jwt.ErrTokenInvalid)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := jwt.GenerateAccessToken(42, "alice", "LIBRARIAN", accessSecret, -1)
		require.NoError(t, err)

		_, err = jwt.ValidateAccessToken(token, accessSecret)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := jwt.ValidateAccessToken("not-a-jwt", accessSecret)
		assert.ErrorIs(t, err, jwt.ErrTokenInvalid)
	})
}

func TestRefreshToken(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		token, err := jwt.GenerateRefreshToken(42, "token-id-1", refreshSecret, 7)
		require.NoError(t, err)

		claims, err := jwt.ValidateRefreshToken(token, refreshSecret)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.UserID)
		assert.Equal(t, "token-id-1", claims.TokenID)
	})

	t.Run("access secret does not validate refresh tokens", func(t *testing.T) {
		token, err := jwt.GenerateRefreshToken(42, "token-id-1", refreshSecret, 7)
		require.NoError(t, err)

		_, err = jwt.ValidateRefreshToken(token, accessSecret)
		assert.ErrorIs(t, err, jwt.ErrTokenInvalid)
	})
}
