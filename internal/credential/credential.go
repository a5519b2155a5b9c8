// ABOUTME: Decodes the payload of bearer credentials without verifying signatures
// ABOUTME: Exposes the exp claim and the identity claims used to hydrate a profile

package credential

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformed is returned when the credential payload cannot be decoded
	ErrMalformed = errors.New("credential payload is not readable")
	// ErrNoExpiry is returned when the credential carries no readable exp claim
	ErrNoExpiry = errors.New("credential has no exp claim")
)

// Claims is the decoded payload of a credential
type Claims jwt.MapClaims

// Parse decodes the payload segment of a dot-delimited credential.
// The signature is never checked; the backend owns verification.
func Parse(raw string) (Claims, error) {
	if raw == "" {
		return nil, ErrMalformed
	}

	token, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	// An unknown alg only makes the token unverifiable, the payload is still usable.
	if err != nil && (token == nil || !errors.Is(err, jwt.ErrTokenUnverifiable)) {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrMalformed
	}
	return Claims(claims), nil
}

// Expiry returns the exp claim as a time, false when absent or unreadable
func (c Claims) Expiry() (time.Time, bool) {
	exp, err := jwt.MapClaims(c).GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// String returns a string claim, empty when absent or not a string
func (c Claims) String(name string) string {
	s, _ := c[name].(string)
	return s
}

// UntilExpiry returns exp*1000 - now as a duration.
// A credential without exp yields ErrNoExpiry and must not be trusted.
func UntilExpiry(raw string, now time.Time) (time.Duration, error) {
	claims, err := Parse(raw)
	if err != nil {
		return 0, err
	}
	exp, ok := claims.Expiry()
	if !ok {
		return 0, ErrNoExpiry
	}
	return exp.Sub(now), nil
}
