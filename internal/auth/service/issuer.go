package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"guestlens/backend/internal/clock"
	sessiondomain "guestlens/backend/internal/session/domain"
	"guestlens/backend/internal/token"
)

// Issuer mints access and refresh tokens. Every refresh token is backed by a
// session row written before the token string is handed out, so a refresh
// token the caller holds always has a session behind it.
type Issuer struct {
	codec      *token.Codec
	sessions   SessionStore
	clk        clock.Clock
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewIssuer validates the TTL configuration and returns an Issuer.
func NewIssuer(codec *token.Codec, sessions SessionStore, clk clock.Clock, accessTTL, refreshTTL time.Duration) (*Issuer, error) {
	if codec == nil || sessions == nil || clk == nil {
		return nil, ErrNilDependency
	}
	if accessTTL <= 0 || refreshTTL <= 0 || accessTTL >= refreshTTL {
		return nil, fmt.Errorf("%w: access=%s refresh=%s", ErrTTLOrder, accessTTL, refreshTTL)
	}
	return &Issuer{
		codec:      codec,
		sessions:   sessions,
		clk:        clk,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

func (i *Issuer) newClaims(acct *Account, kind string, ttl time.Duration) *token.Claims {
	now := i.clk.Now()
	return &token.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   acct.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		AccountID: acct.ID,
		Email:     acct.Email,
		TokenType: kind,
	}
}

// CreateAccessToken mints a short-lived access token for the account.
func (i *Issuer) CreateAccessToken(_ context.Context, acct *Account) (string, *token.Claims, error) {
	claims := i.newClaims(acct, token.TypeAccess, i.accessTTL)
	signed, err := i.codec.Encode(claims)
	if err != nil {
		return "", nil, fmt.Errorf("create access token: %w", err)
	}
	return signed, claims, nil
}

// CreateRefreshToken mints a refresh token and durably records its session.
// The session write happens before the token string is returned; if the write
// fails no token is handed out.
func (i *Issuer) CreateRefreshToken(ctx context.Context, acct *Account, device, ip string) (string, *sessiondomain.Session, error) {
	claims := i.newClaims(acct, token.TypeRefresh, i.refreshTTL)
	signed, err := i.codec.Encode(claims)
	if err != nil {
		return "", nil, fmt.Errorf("create refresh token: %w", err)
	}
	s := &sessiondomain.Session{
		ID:         uuid.New().String(),
		AccountID:  acct.ID,
		RefreshJTI: claims.JTI(),
		Device:     device,
		IPAddress:  ip,
		Active:     true,
		ExpiresAt:  claims.ExpiresAt.Time,
		CreatedAt:  i.clk.Now(),
	}
	if err := i.sessions.Create(ctx, s); err != nil {
		return "", nil, fmt.Errorf("create refresh token: %w", err)
	}
	return signed, s, nil
}

// CreateTokenPair mints an access and refresh token for the account, recording
// a new session for the device.
func (i *Issuer) CreateTokenPair(ctx context.Context, acct *Account, device, ip string) (*TokenPair, error) {
	access, _, err := i.CreateAccessToken(ctx, acct)
	if err != nil {
		return nil, err
	}
	refresh, s, err := i.CreateRefreshToken(ctx, acct, device, ip)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        "Bearer",
		ExpiresIn:        int64(i.accessTTL.Seconds()),
		RefreshExpiresIn: int64(i.refreshTTL.Seconds()),
		SessionID:        s.ID,
	}, nil
}
