package service

import (
	"context"
	"errors"
	"fmt"

	"guestlens/backend/internal/audit"
	"guestlens/backend/internal/clock"
	revocationdomain "guestlens/backend/internal/revocation/domain"
	sessiondomain "guestlens/backend/internal/session/domain"
	"guestlens/backend/internal/token"
)

// Audit actions and rejection reasons recorded by the gateway.
const (
	actionTokenRejected = "token_rejected"
	actionTokenRevoked  = "token_revoked"
	actionLogout        = "logout"

	reasonExpired         = "expired"
	reasonBadSignature    = "bad_signature"
	reasonMalformed       = "malformed"
	reasonWrongType       = "wrong_type"
	reasonRevoked         = "revoked"
	reasonSessionInactive = "session_inactive"
	reasonAccountMissing  = "account_missing"
)

// Gateway is the verification and revocation surface of the credential core.
// Invalid credentials come back as (nil, nil) so callers can treat them as an
// ordinary authentication failure; errors are reserved for store faults.
type Gateway struct {
	codec       *token.Codec
	sessions    SessionStore
	revocations RevocationStore
	accounts    AccountDirectory
	clk         clock.Clock
	issuer      *Issuer
	events      audit.Recorder
}

// NewGateway wires the gateway. events may be nil to disable security events.
func NewGateway(codec *token.Codec, sessions SessionStore, revocations RevocationStore, accounts AccountDirectory, clk clock.Clock, issuer *Issuer, events audit.Recorder) (*Gateway, error) {
	if codec == nil || sessions == nil || revocations == nil || accounts == nil || clk == nil || issuer == nil {
		return nil, ErrNilDependency
	}
	return &Gateway{
		codec:       codec,
		sessions:    sessions,
		revocations: revocations,
		accounts:    accounts,
		clk:         clk,
		issuer:      issuer,
		events:      events,
	}, nil
}

func (g *Gateway) record(ctx context.Context, accountID, sessionID, action, reason string) {
	if g.events == nil {
		return
	}
	g.events.Record(ctx, accountID, sessionID, action, reason)
}

// Verify checks a token of the given kind (token.TypeAccess or
// token.TypeRefresh) and returns its claims, or (nil, nil) when the token is
// invalid for any reason: bad signature, malformed, expired, wrong kind,
// revoked, or (for refresh tokens) no active session. Refresh verification
// also stamps the session's last-activity time; a failure to do so is a store
// fault and is returned as an error.
func (g *Gateway) Verify(ctx context.Context, tokenStr, kind string) (*token.Claims, error) {
	claims, err := g.codec.Decode(tokenStr)
	if err != nil {
		reason := reasonMalformed
		switch {
		case errors.Is(err, token.ErrExpired):
			reason = reasonExpired
		case errors.Is(err, token.ErrBadSignature):
			reason = reasonBadSignature
		}
		accountID := ""
		if unsafe, uErr := g.codec.DecodeUnsafe(tokenStr); uErr == nil {
			accountID = unsafe.AccountID
		}
		g.record(ctx, accountID, "", actionTokenRejected, reason)
		return nil, nil
	}
	if claims.TokenType != kind {
		g.record(ctx, claims.AccountID, "", actionTokenRejected, reasonWrongType)
		return nil, nil
	}

	revoked, err := g.revocations.Contains(ctx, claims.JTI())
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	if revoked {
		g.record(ctx, claims.AccountID, "", actionTokenRejected, reasonRevoked)
		return nil, nil
	}

	if kind == token.TypeRefresh {
		s, err := g.sessions.GetByRefreshJTI(ctx, claims.JTI())
		if err != nil {
			return nil, fmt.Errorf("verify token: %w", err)
		}
		if s == nil || !s.Active {
			g.record(ctx, claims.AccountID, "", actionTokenRejected, reasonSessionInactive)
			return nil, nil
		}
		if err := g.sessions.Touch(ctx, claims.JTI(), g.clk.Now()); err != nil {
			return nil, fmt.Errorf("verify token: %w", err)
		}
	}
	return claims, nil
}

// RefreshAccessToken verifies the refresh token and mints a fresh access token
// for its account. An invalid refresh token or a vanished account yields
// ("", nil); the refresh token itself is untouched and stays usable.
func (g *Gateway) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := g.Verify(ctx, refreshToken, token.TypeRefresh)
	if err != nil {
		return "", err
	}
	if claims == nil {
		return "", nil
	}
	acct, err := g.accounts.FindByID(ctx, claims.AccountID)
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}
	if acct == nil {
		g.record(ctx, claims.AccountID, "", actionTokenRejected, reasonAccountMissing)
		return "", nil
	}
	access, _, err := g.issuer.CreateAccessToken(ctx, acct)
	if err != nil {
		return "", err
	}
	return access, nil
}

// Revoke blacklists the token's jti so it fails verification for the rest of
// its lifetime. The signature and expiry are deliberately not checked: an
// expired or stolen-and-resigned token can still be blacklisted. Returns false
// only when no usable jti can be extracted. Revoking a refresh token also
// deactivates its session; revoking twice is a no-op.
func (g *Gateway) Revoke(ctx context.Context, tokenStr, reason string) (bool, error) {
	claims, err := g.codec.DecodeUnsafe(tokenStr)
	if err != nil {
		return false, nil
	}
	if claims.JTI() == "" || claims.AccountID == "" || claims.TokenType == "" || claims.ExpiresAt == nil {
		return false, nil
	}

	entry := &revocationdomain.Entry{
		JTI:       claims.JTI(),
		AccountID: claims.AccountID,
		TokenType: claims.TokenType,
		ExpiresAt: claims.ExpiresAt.Time,
		RevokedAt: g.clk.Now(),
		Reason:    reason,
	}
	if err := g.revocations.Add(ctx, entry); err != nil {
		return false, fmt.Errorf("revoke token: %w", err)
	}

	sessionID := ""
	if claims.TokenType == token.TypeRefresh {
		s, err := g.sessions.GetByRefreshJTI(ctx, claims.JTI())
		if err != nil {
			return false, fmt.Errorf("revoke token: %w", err)
		}
		if s != nil {
			sessionID = s.ID
			if s.Active {
				if err := g.sessions.Deactivate(ctx, claims.JTI()); err != nil {
					return false, fmt.Errorf("revoke token: %w", err)
				}
			}
		}
	}
	g.record(ctx, claims.AccountID, sessionID, actionTokenRevoked, reason)
	return true, nil
}

// Logout ends the account's sessions. With a sessionID only that session is
// ended; with an empty sessionID every active session is. Each ended session
// has its refresh jti blacklisted and its row deactivated. Logging out a
// session that is already gone succeeds.
func (g *Gateway) Logout(ctx context.Context, accountID, sessionID string) (bool, error) {
	active, err := g.sessions.ListActiveByAccount(ctx, accountID)
	if err != nil {
		return false, fmt.Errorf("logout: %w", err)
	}
	reason := "logout_all"
	if sessionID != "" {
		reason = "logout"
	}
	now := g.clk.Now()
	for _, s := range active {
		if sessionID != "" && s.ID != sessionID {
			continue
		}
		entry := &revocationdomain.Entry{
			JTI:       s.RefreshJTI,
			AccountID: s.AccountID,
			TokenType: token.TypeRefresh,
			ExpiresAt: s.ExpiresAt,
			RevokedAt: now,
			Reason:    reason,
		}
		if err := g.revocations.Add(ctx, entry); err != nil {
			return false, fmt.Errorf("logout: %w", err)
		}
		if err := g.sessions.Deactivate(ctx, s.RefreshJTI); err != nil {
			return false, fmt.Errorf("logout: %w", err)
		}
		g.record(ctx, accountID, s.ID, actionLogout, reason)
	}
	return true, nil
}

// ListSessions returns the account's active sessions.
func (g *Gateway) ListSessions(ctx context.Context, accountID string) ([]*sessiondomain.Session, error) {
	return g.sessions.ListActiveByAccount(ctx, accountID)
}
