// Package repository defines persistence for security events.
package repository

import (
	"context"

	"guestlens/backend/internal/audit/domain"
)

// Repository persists security events.
type Repository interface {
	Create(ctx context.Context, e *domain.AuthEvent) error
}
