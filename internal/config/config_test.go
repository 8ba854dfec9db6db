package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.JWTIssuer != "guestlens-auth" {
		t.Errorf("JWTIssuer = %q", cfg.JWTIssuer)
	}
	if got := cfg.AccessTTL(); got != 15*time.Minute {
		t.Errorf("AccessTTL = %v, want 15m", got)
	}
	if got := cfg.RefreshTTL(); got != 168*time.Hour {
		t.Errorf("RefreshTTL = %v, want 168h", got)
	}
	if got := cfg.SweepInterval(); got != 10*time.Minute {
		t.Errorf("SweepInterval = %v, want 10m", got)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_ISSUER", "other-issuer")
	t.Setenv("ACCESS_TTL", "5m")
	t.Setenv("REFRESH_TTL", "24h")
	t.Setenv("SWEEP_INTERVAL", "1m")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.JWTIssuer != "other-issuer" {
		t.Errorf("JWTIssuer = %q", cfg.JWTIssuer)
	}
	if got := cfg.AccessTTL(); got != 5*time.Minute {
		t.Errorf("AccessTTL = %v, want 5m", got)
	}
	if got := cfg.RefreshTTL(); got != 24*time.Hour {
		t.Errorf("RefreshTTL = %v, want 24h", got)
	}
	if got := cfg.SweepInterval(); got != time.Minute {
		t.Errorf("SweepInterval = %v, want 1m", got)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q", cfg.RedisAddr)
	}
}

func TestLoad_RequiresSigningMaterial(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_PRIVATE_KEY", "")
	t.Setenv("JWT_PUBLIC_KEY", "")

	if _, err := Load(); err == nil {
		t.Error("Load succeeded with no signing material")
	}

	// A private key without its public half is not enough.
	t.Setenv("JWT_PRIVATE_KEY", "some-pem")
	if _, err := Load(); err == nil {
		t.Error("Load succeeded with only a private key")
	}
}

func TestLoad_RejectsTTLInversion(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ACCESS_TTL", "48h")
	t.Setenv("REFRESH_TTL", "24h")

	if _, err := Load(); err == nil {
		t.Error("Load succeeded with ACCESS_TTL >= REFRESH_TTL")
	}
}

func TestTTLFallbacks(t *testing.T) {
	cfg := &Config{JWTAccessTTL: "bogus", JWTRefreshTTL: "-5m", SweepIntervalRaw: ""}
	if got := cfg.AccessTTL(); got != 15*time.Minute {
		t.Errorf("AccessTTL = %v, want 15m fallback", got)
	}
	if got := cfg.RefreshTTL(); got != 168*time.Hour {
		t.Errorf("RefreshTTL = %v, want 168h fallback", got)
	}
	if got := cfg.SweepInterval(); got != 10*time.Minute {
		t.Errorf("SweepInterval = %v, want 10m fallback", got)
	}
}
