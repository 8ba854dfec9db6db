// Package domain holds the revocation entry recorded for every blacklisted token.
package domain

import "time"

// Entry marks a single token jti as revoked. The expiry is copied from the
// token itself so the entry can be dropped once the token would have expired
// anyway; until then any verification of the jti fails.
type Entry struct {
	JTI       string
	AccountID string
	TokenType string // access or refresh
	ExpiresAt time.Time
	RevokedAt time.Time
	Reason    string // free text, e.g. logout, compromised
}

// Expired reports whether the underlying token is past its expiry at the given
// time, making the entry safe to drop.
func (e *Entry) Expired(now time.Time) bool {
	return e.ExpiresAt.Before(now)
}
