// Package domain holds the security event record written for credential operations.
package domain

import "time"

// AuthEvent is one security-relevant credential event: a rejected token, a
// revocation, a logout. Events are append-only and consulted only by operators.
type AuthEvent struct {
	ID        string
	AccountID string
	SessionID string
	Action    string // e.g. token_rejected, token_revoked, logout
	Reason    string // e.g. expired, bad_signature, malformed
	IP        string
	CreatedAt time.Time
}
