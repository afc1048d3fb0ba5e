package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateTokenLengthAndAlphabet(t *testing.T) {
	t.Parallel()

	for _, length := range []int{1, 25, 30, 40} {
		token, err := GenerateToken(length)
		require.NoError(t, err)
		require.Len(t, token, length)

		for _, r := range token {
			require.True(t, strings.ContainsRune(tokenAlphabet, r), "unexpected char %q", r)
		}
	}
}

func TestGenerateTokenRejectsNonPositiveLength(t *testing.T) {
	t.Parallel()

	_, err := GenerateToken(0)
	require.Error(t, err)
	_, err = GenerateToken(-5)
	require.Error(t, err)
}

func TestGenerateTokenIsUnique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{}, 256)
	for range 256 {
		token := MustGenerateToken(30)
		_, dup := seen[token]
		require.False(t, dup, "duplicate token %q", token)
		seen[token] = struct{}{}
	}
}
