package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"guestlens/backend/internal/session/domain"
)

const sessionColumns = "id, account_id, refresh_jti, device, ip_address, active, last_activity_at, expires_at, created_at"

// PostgresRepository persists sessions in the sessions table.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the session. The session must have ID and RefreshJTI set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	const q = `INSERT INTO sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, q,
		s.ID,
		s.AccountID,
		s.RefreshJTI,
		s.Device,
		sql.NullString{String: s.IPAddress, Valid: s.IPAddress != ""},
		s.Active,
		timeToNullTime(s.LastActivityAt),
		s.ExpiresAt,
		s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetByRefreshJTI returns the session owning the given refresh jti, or nil if
// not found. It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByRefreshJTI(ctx context.Context, jti string) (*domain.Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM sessions WHERE refresh_jti = $1`
	s, err := scanSession(r.db.QueryRowContext(ctx, q, jti))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

// ListActiveByAccount returns the account's active sessions, newest first.
func (r *PostgresRepository) ListActiveByAccount(ctx context.Context, accountID string) ([]*domain.Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM sessions
		WHERE account_id = $1 AND active ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, accountID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []*domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return out, nil
}

// Touch sets the session's last-activity timestamp. Updating a missing row is
// a no-op, not an error.
func (r *PostgresRepository) Touch(ctx context.Context, jti string, at time.Time) error {
	const q = `UPDATE sessions SET last_activity_at = $2 WHERE refresh_jti = $1`
	if _, err := r.db.ExecContext(ctx, q, jti, at); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

// Deactivate flips the session's active flag off. Idempotent.
func (r *PostgresRepository) Deactivate(ctx context.Context, jti string) error {
	const q = `UPDATE sessions SET active = FALSE WHERE refresh_jti = $1`
	if _, err := r.db.ExecContext(ctx, q, jti); err != nil {
		return fmt.Errorf("deactivate session: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions whose expiry is strictly before the given time.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	const q = `DELETE FROM sessions WHERE expires_at < $1`
	res, err := r.db.ExecContext(ctx, q, before)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var (
		s            domain.Session
		ip           sql.NullString
		lastActivity sql.NullTime
	)
	err := row.Scan(&s.ID, &s.AccountID, &s.RefreshJTI, &s.Device, &ip, &s.Active, &lastActivity, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	if ip.Valid {
		s.IPAddress = ip.String
	}
	s.LastActivityAt = nullTimeToPtr(lastActivity)
	return &s, nil
}

func timeToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullTimeToPtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	return &n.Time
}
