package utils

import (
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// TokenUsable reports whether a stored bearer token is worth sending: non-empty
// and, when it parses as a JWT carrying an exp claim, not yet expired. The
// client has no signing secret, so the signature is not checked here; the
// server stays the authority and stale tokens still surface as 401s.
func TokenUsable(token string) bool {
	token = strings.TrimSpace(token)
	if token == "" {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		// Opaque (non-JWT) tokens count as usable.
		return true
	}
	if exp, ok := claims["exp"].(float64); ok {
		return time.Now().Unix() < int64(exp)
	}
	return true
}
