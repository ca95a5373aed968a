package common

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// TokenBytes is the amount of entropy in a bearer token (256 bits).
const TokenBytes = 32

// MakeRandHexString returns size bytes from crypto/rand, hex encoded.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NewToken returns a fresh 64-character bearer token.
func NewToken() (string, error) {
	return MakeRandHexString(TokenBytes)
}
