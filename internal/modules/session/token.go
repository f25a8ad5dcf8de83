package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// tokenByteLength yields a 32-character base64url token.
const tokenByteLength = 24

// MintToken generates an opaque, URL-safe check-in token.
func MintToken() (string, error) {
	buf := make([]byte, tokenByteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("mint token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
