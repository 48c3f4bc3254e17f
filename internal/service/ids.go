package service

import (
	"crypto/rand"
	"encoding/hex"
)

func newID() string {
	return randomHex(16)
}

// newTokenSecret is the random part of a bearer token.
func newTokenSecret() string {
	return randomHex(20)
}

// newResetToken is the plaintext mailed in a password-reset link.
func newResetToken() string {
	return randomHex(32)
}

// newRememberToken matches the 60-character rotation value on the user row.
func newRememberToken() string {
	return randomHex(30)
}

func randomHex(n int) string {
	bytes := make([]byte, n)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
