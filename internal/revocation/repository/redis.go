package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"guestlens/backend/internal/revocation/domain"
	"guestlens/backend/internal/storekey"
)

// RedisRepository keeps revocation entries in Redis. Each entry is a JSON blob
// keyed by jti with a TTL matching the token expiry, so Redis itself drops the
// entry once the token would have expired anyway.
type RedisRepository struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisRepository returns a revocation repository backed by the given
// client. A nil now falls back to time.Now.
func NewRedisRepository(client *redis.Client, now func() time.Time) *RedisRepository {
	if now == nil {
		now = time.Now
	}
	return &RedisRepository{client: client, now: now}
}

type revocationRecord struct {
	JTI       string    `json:"jti"`
	AccountID string    `json:"account_id"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
	RevokedAt time.Time `json:"revoked_at"`
	Reason    string    `json:"reason,omitempty"`
}

// Add records the entry with a TTL until the token expiry. Re-adding an
// already revoked jti keeps the original entry and succeeds. An entry for an
// already expired token is still held briefly so callers observe the
// revocation.
func (r *RedisRepository) Add(ctx context.Context, e *domain.Entry) error {
	key, err := storekey.Revocation(e.JTI)
	if err != nil {
		return fmt.Errorf("add revocation: %w", err)
	}
	ttl := e.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		ttl = time.Second
	}
	raw, err := json.Marshal(&revocationRecord{
		JTI:       e.JTI,
		AccountID: e.AccountID,
		TokenType: e.TokenType,
		ExpiresAt: e.ExpiresAt,
		RevokedAt: e.RevokedAt,
		Reason:    e.Reason,
	})
	if err != nil {
		return fmt.Errorf("add revocation: %w", err)
	}
	if err := r.client.SetNX(ctx, string(key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("add revocation: %w", err)
	}
	return nil
}

// Contains reports whether the given jti has been revoked. A malformed jti
// reads as not revoked since no valid key could match it.
func (r *RedisRepository) Contains(ctx context.Context, jti string) (bool, error) {
	key, err := storekey.Revocation(jti)
	if err != nil {
		return false, nil
	}
	n, err := r.client.Exists(ctx, string(key)).Result()
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return n > 0, nil
}

// DeleteExpired is a no-op for the Redis backend; entries expire via TTL.
func (r *RedisRepository) DeleteExpired(ctx context.Context, _ time.Time) (int64, error) {
	return 0, nil
}
