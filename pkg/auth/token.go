package auth

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/platinummonkey/bookshelf/pkg/session"
)

// BearerPrefix is the case-sensitive scheme prefix of the Authorization header
const BearerPrefix = "Bearer "

// BearerToken extracts the token from the Authorization header.
// ok is false when the header is missing, uses another scheme, or carries no token.
func BearerToken(r *http.Request) (token string, ok bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}

	token = strings.TrimPrefix(header, BearerPrefix)
	if token == "" {
		return "", false
	}
	return token, true
}

// ValidateTokenFormat checks if a token has the shape of an issued session token
func ValidateTokenFormat(token string) error {
	if len(token) != session.TokenLength {
		return fmt.Errorf("token must be %d characters, got %d", session.TokenLength, len(token))
	}

	if _, err := hex.DecodeString(token); err != nil {
		return fmt.Errorf("invalid token encoding: %w", err)
	}

	return nil
}
