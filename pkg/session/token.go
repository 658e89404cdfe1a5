package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const (
	// TokenBytes is the number of random bytes in a session token (128 bits)
	TokenBytes = 16
	// TokenLength is the length of the hex-encoded token string
	TokenLength = TokenBytes * 2
	// displayPrefixLength is how much of a token is shown when listing sessions
	displayPrefixLength = 8
)

// GenerateToken creates a new opaque session token.
// Format: hex(16 random bytes), e.g. 9f86d081884c7d659a2feaa0c55ad015
func GenerateToken() (string, error) {
	randomBytes := make([]byte, TokenBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("session: failed to generate token: %w", err)
	}
	return hex.EncodeToString(randomBytes), nil
}

// DisplayPrefix returns the first characters of a token for identification.
// The full token is never echoed back once issued.
func DisplayPrefix(token string) string {
	if len(token) <= displayPrefixLength {
		return token
	}
	return token[:displayPrefixLength]
}
