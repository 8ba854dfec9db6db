package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"guestlens/backend/internal/session/domain"
	"guestlens/backend/internal/storekey"
)

// RedisRepository keeps sessions in Redis. Each session is a JSON blob keyed
// by its refresh jti with a TTL matching the session expiry, plus a per-account
// set of jtis for listing. Expired sessions drop out via TTL; DeleteExpired
// only reconciles the account indexes against vanished blobs.
type RedisRepository struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisRepository returns a session repository backed by the given client.
// A nil now falls back to time.Now.
func NewRedisRepository(client *redis.Client, now func() time.Time) *RedisRepository {
	if now == nil {
		now = time.Now
	}
	return &RedisRepository{client: client, now: now}
}

type sessionRecord struct {
	ID             string     `json:"id"`
	AccountID      string     `json:"account_id"`
	RefreshJTI     string     `json:"refresh_jti"`
	Device         string     `json:"device,omitempty"`
	IPAddress      string     `json:"ip_address,omitempty"`
	Active         bool       `json:"active"`
	LastActivityAt *time.Time `json:"last_activity_at,omitempty"`
	ExpiresAt      time.Time  `json:"expires_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

func toRecord(s *domain.Session) *sessionRecord {
	return &sessionRecord{
		ID:             s.ID,
		AccountID:      s.AccountID,
		RefreshJTI:     s.RefreshJTI,
		Device:         s.Device,
		IPAddress:      s.IPAddress,
		Active:         s.Active,
		LastActivityAt: s.LastActivityAt,
		ExpiresAt:      s.ExpiresAt,
		CreatedAt:      s.CreatedAt,
	}
}

func (rec *sessionRecord) toDomain() *domain.Session {
	return &domain.Session{
		ID:             rec.ID,
		AccountID:      rec.AccountID,
		RefreshJTI:     rec.RefreshJTI,
		Device:         rec.Device,
		IPAddress:      rec.IPAddress,
		Active:         rec.Active,
		LastActivityAt: rec.LastActivityAt,
		ExpiresAt:      rec.ExpiresAt,
		CreatedAt:      rec.CreatedAt,
	}
}

// Create stores the session blob with a TTL until its expiry and adds the jti
// to the account index.
func (r *RedisRepository) Create(ctx context.Context, s *domain.Session) error {
	key, err := storekey.Session(s.RefreshJTI)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	idx, err := storekey.AccountIndex(s.AccountID)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	ttl := s.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		ttl = time.Second
	}
	raw, err := json.Marshal(toRecord(s))
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, string(key), raw, ttl)
	pipe.SAdd(ctx, string(idx), s.RefreshJTI)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetByRefreshJTI returns the session for the given jti, or nil if the blob is
// gone. A malformed jti also reads as not found since no valid key could match.
func (r *RedisRepository) GetByRefreshJTI(ctx context.Context, jti string) (*domain.Session, error) {
	key, err := storekey.Session(jti)
	if err != nil {
		return nil, nil
	}
	raw, err := r.client.Get(ctx, string(key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	var rec sessionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return rec.toDomain(), nil
}

// ListActiveByAccount walks the account index and loads each surviving session.
// Index members whose blob has expired are pruned as a side effect.
func (r *RedisRepository) ListActiveByAccount(ctx context.Context, accountID string) ([]*domain.Session, error) {
	idx, err := storekey.AccountIndex(accountID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	jtis, err := r.client.SMembers(ctx, string(idx)).Result()
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	var out []*domain.Session
	for _, jti := range jtis {
		s, err := r.GetByRefreshJTI(ctx, jti)
		if err != nil {
			return nil, err
		}
		if s == nil {
			r.client.SRem(ctx, string(idx), jti)
			continue
		}
		if s.Active {
			out = append(out, s)
		}
	}
	return out, nil
}

// Touch updates the session's last-activity timestamp in place. Missing
// sessions are a no-op. Concurrent touches race last-write-wins.
func (r *RedisRepository) Touch(ctx context.Context, jti string, at time.Time) error {
	return r.mutate(ctx, jti, func(rec *sessionRecord) {
		rec.LastActivityAt = &at
	})
}

// Deactivate flips the session's active flag off. Idempotent; missing sessions
// are a no-op.
func (r *RedisRepository) Deactivate(ctx context.Context, jti string) error {
	return r.mutate(ctx, jti, func(rec *sessionRecord) {
		rec.Active = false
	})
}

func (r *RedisRepository) mutate(ctx context.Context, jti string, fn func(*sessionRecord)) error {
	key, err := storekey.Session(jti)
	if err != nil {
		return nil
	}
	raw, err := r.client.Get(ctx, string(key)).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	var rec sessionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	fn(&rec)
	out, err := json.Marshal(&rec)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	ttl := rec.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		ttl = time.Second
	}
	if err := r.client.Set(ctx, string(key), out, ttl).Err(); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// DeleteExpired reconciles the account indexes: the session blobs themselves
// expire via TTL, so this scans the indexes and removes members whose blob no
// longer exists. The count is how many index entries were pruned.
func (r *RedisRepository) DeleteExpired(ctx context.Context, _ time.Time) (int64, error) {
	var removed int64
	iter := r.client.Scan(ctx, 0, storekey.AccountIndexPattern(), 100).Iterator()
	for iter.Next(ctx) {
		idx := iter.Val()
		jtis, err := r.client.SMembers(ctx, idx).Result()
		if err != nil {
			return removed, fmt.Errorf("sweep sessions: %w", err)
		}
		for _, jti := range jtis {
			key, err := storekey.Session(jti)
			if err != nil {
				continue
			}
			exists, err := r.client.Exists(ctx, string(key)).Result()
			if err != nil {
				return removed, fmt.Errorf("sweep sessions: %w", err)
			}
			if exists == 0 {
				n, err := r.client.SRem(ctx, idx, jti).Result()
				if err != nil {
					return removed, fmt.Errorf("sweep sessions: %w", err)
				}
				removed += n
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("sweep sessions: %w", err)
	}
	return removed, nil
}
