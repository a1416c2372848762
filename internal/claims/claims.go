// Package claims peeks inside JWTs without verifying them. The backend is
// the only party that validates signatures; the client just wants to know
// whether a stored token is already past its expiry before bothering the
// network with it.
package claims

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var parser = jwt.NewParser()

// Expiry returns the exp claim of token. ok is false when the token is not
// a parseable JWT or carries no expiry; opaque tokens are treated as
// never-expiring by callers.
func Expiry(token string) (time.Time, bool) {
	reg := &jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(token, reg); err != nil {
		return time.Time{}, false
	}
	if reg.ExpiresAt == nil {
		return time.Time{}, false
	}
	return reg.ExpiresAt.Time, true
}

// Expired reports whether token is a JWT whose expiry is in the past.
// Opaque or exp-less tokens report false.
func Expired(token string, now time.Time) bool {
	exp, ok := Expiry(token)
	if !ok {
		return false
	}
	return exp.Before(now)
}

// Subject returns the sub claim of token, if present.
func Subject(token string) (string, bool) {
	reg := &jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(token, reg); err != nil {
		return "", false
	}
	if reg.Subject == "" {
		return "", false
	}
	return reg.Subject, true
}
