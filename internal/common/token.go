package common

import (
	"crypto/rand"
	"encoding/hex"
)

// TokenBytes is the number of random bytes behind an auction token.
// Tokens are hex encoded, so they are twice as long.
const TokenBytes = 8

// MakeRandHexString generates size random bytes and returns them hex encoded.
// The result is 2*size characters long.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// NewToken returns a fresh unguessable auction token.
func NewToken() (string, error) {
	return MakeRandHexString(TokenBytes)
}
