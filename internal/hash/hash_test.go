package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	digest, err := HashPassword("password123")
	require.NoError(t, err)
	require.NotEmpty(t, digest)
	require.NotEqual(t, "password123", digest)

	require.True(t, CheckPassword(digest, "password123"))
	require.False(t, CheckPassword(digest, "wrong-password"))
}

func TestCheckPasswordGarbageHash(t *testing.T) {
	require.False(t, CheckPassword("not-a-bcrypt-hash", "password123"))
}

func TestSha256Hex(t *testing.T) {
	a := Sha256Hex("token-value")
	b := Sha256Hex("token-value")
	require.Equal(t, a, b)
	require.Len(t, a, 64)
	require.NotEqual(t, a, Sha256Hex("other-value"))
}

func TestRandomToken(t *testing.T) {
	a, err := RandomToken(40)
	require.NoError(t, err)
	require.Len(t, a, 80)

	b, err := RandomToken(40)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
