// Package audit records security events for credential operations.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"guestlens/backend/internal/audit/domain"
	auditrepo "guestlens/backend/internal/audit/repository"
)

// IPExtractor returns the client IP from the request context.
type IPExtractor func(context.Context) string

// Recorder writes a single security event. Record is best-effort: failures are
// logged and do not affect the caller, so a broken event store never blocks
// token verification.
type Recorder interface {
	Record(ctx context.Context, accountID, sessionID, action, reason string)
}

// Logger implements Recorder using the event repository and an optional IP extractor.
type Logger struct {
	repo        auditrepo.Repository
	ipExtractor IPExtractor
}

// NewLogger returns a Recorder that persists to repo and uses ipExtractor for
// the client IP. ipExtractor may be nil; then IP is recorded as "unknown".
func NewLogger(repo auditrepo.Repository, ipExtractor IPExtractor) *Logger {
	return &Logger{repo: repo, ipExtractor: ipExtractor}
}

// Record writes one security event. Best-effort: errors are logged and not returned.
func (l *Logger) Record(ctx context.Context, accountID, sessionID, action, reason string) {
	if l.repo == nil {
		return
	}
	ip := "unknown"
	if l.ipExtractor != nil {
		ip = l.ipExtractor(ctx)
	}
	event := &domain.AuthEvent{
		ID:        uuid.New().String(),
		AccountID: accountID,
		SessionID: sessionID,
		Action:    action,
		Reason:    reason,
		IP:        ip,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, event); err != nil {
		log.Printf("audit: failed to record event %s/%s: %v", action, reason, err)
	}
}
