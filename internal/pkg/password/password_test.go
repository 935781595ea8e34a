package password_test

import (
	"testing"

	"liblend/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := password.Hash("supersecret1")
	require.NoError(t, err)
	assert.NotEqual(t, "supersecret1", hash)

	assert.True(t, password.Verify("supersecret1", hash))
	assert.False(t, password.Verify("wrong-password", hash))
}

func TestHashToken(t *testing.T) {
	a := password.HashToken("token-a")
	b := password.HashToken("token-b")

	assert.NotEqual(t, a, b)
	// Deterministic, so the stored hash can be looked up again
	assert.Equal(t, a, password.HashToken("token-a"))
	assert.Len(t, a, 64) // hex-encoded sha256
}

func TestValidatePassword(t *testing.T) {
	assert.True(t, password.ValidatePassword("12345678"))
	assert.False(t, password.ValidatePassword("1234567"))
	assert.False(t, password.ValidatePassword(""))
}
