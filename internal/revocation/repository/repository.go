// Package repository defines persistence for the revocation blacklist and
// provides the Postgres and Redis implementations.
package repository

import (
	"context"
	"time"

	"guestlens/backend/internal/revocation/domain"
)

// Repository defines persistence for revocation entries. Implementations must
// be safe for concurrent use; Add is idempotent so revoking the same jti twice
// is not an error.
type Repository interface {
	Add(ctx context.Context, e *domain.Entry) error
	Contains(ctx context.Context, jti string) (bool, error)
	// DeleteExpired removes entries whose token expiry is strictly before the
	// given time and returns how many were removed.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
