package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// newToken returns a 256-bit random session identifier in URL-safe base64.
func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
