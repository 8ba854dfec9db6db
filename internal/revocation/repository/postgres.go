package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"guestlens/backend/internal/revocation/domain"
)

// PostgresRepository persists revocation entries in the revocations table.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a revocation repository that uses the given db
// for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Add records the entry. Re-adding an already revoked jti keeps the original
// entry and succeeds.
func (r *PostgresRepository) Add(ctx context.Context, e *domain.Entry) error {
	const q = `INSERT INTO revocations (jti, account_id, token_type, expires_at, revoked_at, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (jti) DO NOTHING`
	_, err := r.db.ExecContext(ctx, q,
		e.JTI,
		e.AccountID,
		e.TokenType,
		e.ExpiresAt,
		e.RevokedAt,
		sql.NullString{String: e.Reason, Valid: e.Reason != ""},
	)
	if err != nil {
		return fmt.Errorf("add revocation: %w", err)
	}
	return nil
}

// Contains reports whether the given jti has been revoked.
func (r *PostgresRepository) Contains(ctx context.Context, jti string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM revocations WHERE jti = $1)`
	var found bool
	if err := r.db.QueryRowContext(ctx, q, jti).Scan(&found); err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return found, nil
}

// DeleteExpired removes entries whose token expiry is strictly before the
// given time.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	const q = `DELETE FROM revocations WHERE expires_at < $1`
	res, err := r.db.ExecContext(ctx, q, before)
	if err != nil {
		return 0, fmt.Errorf("delete expired revocations: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired revocations: %w", err)
	}
	return n, nil
}
