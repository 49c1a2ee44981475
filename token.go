package portal

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpiry extracts the exp claim from a JWT access token without
// verifying the signature. Verification is the backend's job; the client
// only needs the expiry to decide whether a proactive refresh is due.
//
// The second return is false for opaque (non-JWT) tokens and tokens
// without an exp claim; such tokens are attached as-is.
func tokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}

	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}

	return claims.ExpiresAt.Time, true
}

func tokenExpiresWithin(token string, window time.Duration) bool {
	if window <= 0 {
		return false
	}

	exp, ok := tokenExpiry(token)
	if !ok {
		return false
	}

	return time.Until(exp) <= window
}
