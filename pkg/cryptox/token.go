package cryptox

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// tokenAlphabet is the character set for opaque tokens: alphanumerics plus a
// handful of symbols that survive cookies and query strings unescaped.
const tokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_!*'()"

// GenerateToken creates a cryptographically secure random token of the given
// character length. Returns an error if the random number generator fails.
func GenerateToken(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("cryptox: token length must be positive, got %d", length)
	}

	max := big.NewInt(int64(len(tokenAlphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("cryptox: generate token: %w", err)
		}
		buf[i] = tokenAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// MustGenerateToken is like GenerateToken but panics on error.
// Use this only in contexts where failure is unrecoverable.
func MustGenerateToken(length int) string {
	token, err := GenerateToken(length)
	if err != nil {
		panic(err)
	}
	return token
}
