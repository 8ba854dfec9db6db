// Package repository defines persistence for sessions and provides the
// Postgres and Redis implementations.
package repository

import (
	"context"
	"time"

	"guestlens/backend/internal/session/domain"
)

// Repository defines persistence for sessions. Implementations must be safe
// for concurrent use and back onto a store shared by all processes; lookups
// return (nil, nil) for missing rows and errors only for store failures.
type Repository interface {
	Create(ctx context.Context, s *domain.Session) error
	GetByRefreshJTI(ctx context.Context, jti string) (*domain.Session, error)
	ListActiveByAccount(ctx context.Context, accountID string) ([]*domain.Session, error)
	// Touch updates the session's last-activity timestamp. Concurrent touches
	// race last-write-wins; that is acceptable.
	Touch(ctx context.Context, jti string, at time.Time) error
	Deactivate(ctx context.Context, jti string) error
	// DeleteExpired removes sessions whose expiry is strictly before the given
	// time and returns how many were removed.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
