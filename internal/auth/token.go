package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const tokenBytes = 32

// NewToken returns a fresh random remember token. The raw value goes to the
// client; only its digest is ever persisted.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("auth: generating remember token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Digest maps a raw remember token to the value stored in the database.
// SHA-256 is one-way: the raw token cannot be recovered from a leaked digest,
// and session resolution is an exact-equality lookup on the digest column.
func Digest(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}
