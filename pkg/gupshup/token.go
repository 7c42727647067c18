package gupshup

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

// partnerToken is the cached partner session. A zero expiry means the expiry could not
// be decoded and the token must not be reused.
type partnerToken struct {
	value  string
	expiry time.Time
}

func (t partnerToken) valid(now time.Time) bool {
	if t.value == "" || t.expiry.IsZero() {
		return false
	}
	return now.UnixMilli() < t.expiry.UnixMilli()
}

// tokenExpiry reads the exp claim without verifying the signature; the token is only
// ever checked by the provider.
func tokenExpiry(value string) (time.Time, error) {
	var claims jwt.StandardClaims
	if _, _, err := new(jwt.Parser).ParseUnverified(value, &claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", errInvalidToken, err)
	}
	if claims.ExpiresAt <= 0 {
		return time.Time{}, fmt.Errorf("%w: missing exp claim", errInvalidToken)
	}
	return time.UnixMilli(claims.ExpiresAt * 1000), nil
}
