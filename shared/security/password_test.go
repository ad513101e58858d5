package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret", hash)
	require.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := VerifyPassword("s3cret", hash)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifyPassword("wrong", hash)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHashPasswordIsSalted(t *testing.T) {
	first, err := HashPassword("s3cret")
	require.NoError(t, err)

	second, err := HashPassword("s3cret")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}

func TestGeneratePassword(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		password, err := GeneratePassword(10)
		require.NoError(t, err)
		require.Len(t, password, 10)

		for _, c := range password {
			require.Contains(t, passwordAlphabet, string(c))
		}

		require.False(t, seen[password])
		seen[password] = true
	}
}
