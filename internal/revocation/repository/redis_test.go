package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"guestlens/backend/internal/revocation/domain"
)

func newTestRedisRepository(t *testing.T) (*RedisRepository, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisRepository(client, nil), mr
}

func testEntry(jti string, expiresAt time.Time) *domain.Entry {
	return &domain.Entry{
		JTI:       jti,
		AccountID: "acct-1",
		TokenType: "refresh",
		ExpiresAt: expiresAt,
		RevokedAt: time.Now().UTC(),
		Reason:    "logout",
	}
}

func TestRedisRepository_AddAndContains(t *testing.T) {
	repo, _ := newTestRedisRepository(t)
	ctx := context.Background()

	found, err := repo.Contains(ctx, "jti-1")
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if found {
		t.Error("Contains true before Add")
	}

	if err := repo.Add(ctx, testEntry("jti-1", time.Now().UTC().Add(time.Hour))); err != nil {
		t.Fatalf("Add: %v", err)
	}
	found, err = repo.Contains(ctx, "jti-1")
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if !found {
		t.Error("Contains false after Add")
	}

	// Revoking the same jti again succeeds and keeps it blacklisted.
	if err := repo.Add(ctx, testEntry("jti-1", time.Now().UTC().Add(time.Hour))); err != nil {
		t.Fatalf("Add twice: %v", err)
	}
	found, err = repo.Contains(ctx, "jti-1")
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if !found {
		t.Error("Contains false after second Add")
	}
}

func TestRedisRepository_EntryExpiresWithToken(t *testing.T) {
	repo, mr := newTestRedisRepository(t)
	ctx := context.Background()

	if err := repo.Add(ctx, testEntry("jti-short", time.Now().UTC().Add(30*time.Second))); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := repo.Add(ctx, testEntry("jti-long", time.Now().UTC().Add(time.Hour))); err != nil {
		t.Fatalf("Add: %v", err)
	}

	mr.FastForward(time.Minute)

	found, err := repo.Contains(ctx, "jti-short")
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if found {
		t.Error("entry outlived its token expiry")
	}
	found, err = repo.Contains(ctx, "jti-long")
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if !found {
		t.Error("live entry dropped early")
	}
}

func TestRedisRepository_AddAlreadyExpiredToken(t *testing.T) {
	repo, _ := newTestRedisRepository(t)
	ctx := context.Background()

	// The token is already past expiry; the entry is still written so the
	// revocation is observable immediately after the call.
	if err := repo.Add(ctx, testEntry("jti-old", time.Now().UTC().Add(-time.Hour))); err != nil {
		t.Fatalf("Add: %v", err)
	}
	found, err := repo.Contains(ctx, "jti-old")
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if !found {
		t.Error("Contains false right after Add")
	}
}

func TestRedisRepository_DeleteExpiredIsNoOp(t *testing.T) {
	repo, _ := newTestRedisRepository(t)
	n, err := repo.DeleteExpired(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if n != 0 {
		t.Errorf("DeleteExpired = %d, want 0", n)
	}
}
