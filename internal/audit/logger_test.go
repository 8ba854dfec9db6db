package audit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"guestlens/backend/internal/audit/domain"
)

type mockRepo struct {
	mu        sync.Mutex
	events    []*domain.AuthEvent
	createErr error
}

func (m *mockRepo) Create(_ context.Context, e *domain.AuthEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.events = append(m.events, e)
	return nil
}

func TestLogger_Record(t *testing.T) {
	repo := &mockRepo{}
	l := NewLogger(repo, func(context.Context) string { return "203.0.113.7" })

	l.Record(context.Background(), "acct-1", "sess-1", "token_rejected", "expired")

	if len(repo.events) != 1 {
		t.Fatalf("got %d events, want 1", len(repo.events))
	}
	e := repo.events[0]
	if e.ID == "" {
		t.Error("event ID not generated")
	}
	if e.AccountID != "acct-1" || e.SessionID != "sess-1" {
		t.Errorf("got account=%q session=%q", e.AccountID, e.SessionID)
	}
	if e.Action != "token_rejected" || e.Reason != "expired" {
		t.Errorf("got action=%q reason=%q", e.Action, e.Reason)
	}
	if e.IP != "203.0.113.7" {
		t.Errorf("IP = %q", e.IP)
	}
	if e.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestLogger_RecordNilExtractor(t *testing.T) {
	repo := &mockRepo{}
	l := NewLogger(repo, nil)

	l.Record(context.Background(), "acct-1", "", "logout", "")

	if len(repo.events) != 1 {
		t.Fatalf("got %d events, want 1", len(repo.events))
	}
	if repo.events[0].IP != "unknown" {
		t.Errorf("IP = %q, want unknown", repo.events[0].IP)
	}
}

func TestLogger_RecordBestEffort(t *testing.T) {
	repo := &mockRepo{createErr: errors.New("db down")}
	l := NewLogger(repo, nil)

	// Must not panic or surface the repository failure.
	l.Record(context.Background(), "acct-1", "", "token_revoked", "compromised")
}
