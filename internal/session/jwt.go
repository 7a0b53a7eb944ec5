package session

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// tokenExpiry reads the exp claim without verifying the signature; the
// backend owns the signing key and re-validates on every call.
func tokenExpiry(token string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := new(jwt.Parser).ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// tokenTTL caps the configured TTL at the token's own expiry.
func tokenTTL(token string, fallback time.Duration, now time.Time) time.Duration {
	exp, ok := tokenExpiry(token)
	if !ok {
		return fallback
	}
	ttl := exp.Sub(now)
	if ttl <= 0 {
		return 0
	}
	if fallback > 0 && fallback < ttl {
		return fallback
	}
	return ttl
}
