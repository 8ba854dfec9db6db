// Package domain holds the session record persisted for every issued refresh token.
package domain

import "time"

// Session is one device's refresh-token lineage. A row is created atomically
// with refresh-token issuance and keyed by the token's jti; it is deactivated
// on logout or revocation and physically removed by the sweeper once expired.
type Session struct {
	ID             string
	AccountID      string
	RefreshJTI     string // unique; primary lookup key for verification and revocation
	Device         string // free-text device descriptor supplied at login
	IPAddress      string // originating network address; empty when unknown
	Active         bool
	LastActivityAt *time.Time // nil until the refresh token is first verified
	ExpiresAt      time.Time
	CreatedAt      time.Time
}

// Expired reports whether the session is past its stored expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}
