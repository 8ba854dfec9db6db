// Package service implements the credential core: token issuance, verification,
// refresh, revocation, and per-device session management.
package service

import (
	"context"
	"errors"
	"time"

	revocationdomain "guestlens/backend/internal/revocation/domain"
	sessiondomain "guestlens/backend/internal/session/domain"
)

var (
	// ErrTTLOrder is returned when the access token lifetime is not strictly
	// shorter than the refresh token lifetime.
	ErrTTLOrder = errors.New("access TTL must be shorter than refresh TTL")
	// ErrNilDependency is returned by constructors when a required
	// collaborator is missing.
	ErrNilDependency = errors.New("missing dependency")
)

// Account is the identity slice this package needs: a stable id and the email
// stamped into issued tokens. The rest of the account record lives elsewhere.
type Account struct {
	ID    string
	Email string
}

// AccountDirectory resolves accounts for token issuance and refresh. Lookups
// return (nil, nil) when the account does not exist and an error only for
// directory failures.
type AccountDirectory interface {
	FindByID(ctx context.Context, id string) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
}

// SessionStore is the slice of session persistence the credential core uses.
type SessionStore interface {
	Create(ctx context.Context, s *sessiondomain.Session) error
	GetByRefreshJTI(ctx context.Context, jti string) (*sessiondomain.Session, error)
	ListActiveByAccount(ctx context.Context, accountID string) ([]*sessiondomain.Session, error)
	Touch(ctx context.Context, jti string, at time.Time) error
	Deactivate(ctx context.Context, jti string) error
}

// RevocationStore is the slice of blacklist persistence the credential core uses.
type RevocationStore interface {
	Add(ctx context.Context, e *revocationdomain.Entry) error
	Contains(ctx context.Context, jti string) (bool, error)
}

// TokenPair is the result of a full issuance: one short-lived access token and
// one refresh token bound to a durable session.
type TokenPair struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	TokenType        string `json:"token_type"` // always "Bearer"
	ExpiresIn        int64  `json:"expires_in"` // access token lifetime in seconds
	RefreshExpiresIn int64  `json:"refresh_expires_in"`
	SessionID        string `json:"session_id"`
}
