package repository

import (
	"context"
	"database/sql"
	"fmt"

	"guestlens/backend/internal/audit/domain"
)

// PostgresRepository persists security events in the auth_events table.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an event repository that uses the given db for
// persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create appends the event.
func (r *PostgresRepository) Create(ctx context.Context, e *domain.AuthEvent) error {
	const q = `INSERT INTO auth_events (id, account_id, session_id, action, reason, ip, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, q,
		e.ID,
		sql.NullString{String: e.AccountID, Valid: e.AccountID != ""},
		sql.NullString{String: e.SessionID, Valid: e.SessionID != ""},
		e.Action,
		sql.NullString{String: e.Reason, Valid: e.Reason != ""},
		e.IP,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create auth event: %w", err)
	}
	return nil
}
