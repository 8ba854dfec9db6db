// sweeper periodically removes expired sessions and revocation entries.
// Set DATABASE_URL (or REDIS_ADDR for the Redis backend) and optionally
// SWEEP_INTERVAL and OTLP_ENDPOINT.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"guestlens/backend/internal/clock"
	"guestlens/backend/internal/config"
	"guestlens/backend/internal/db"
	"guestlens/backend/internal/maintenance"
	revocationrepo "guestlens/backend/internal/revocation/repository"
	sessionrepo "guestlens/backend/internal/session/repository"
	otelsetup "guestlens/backend/internal/telemetry/otel"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("sweeper: shutting down...")
		cancel()
	}()

	providers, err := otelsetup.NewProviders(ctx, cfg.OTLPEndpoint, "guestlens-sweeper", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	var sessions, revocations maintenance.ExpiryStore
	switch {
	case cfg.RedisAddr != "":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatalf("redis: %v", err)
		}
		sessions = sessionrepo.NewRedisRepository(client, nil)
		revocations = revocationrepo.NewRedisRepository(client, nil)
		log.Printf("sweeper: using redis at %s", cfg.RedisAddr)
	case cfg.DatabaseURL != "":
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer conn.Close()
		sessions = sessionrepo.NewPostgresRepository(conn)
		revocations = revocationrepo.NewPostgresRepository(conn)
		log.Println("sweeper: using postgres")
	default:
		log.Fatal("sweeper: set DATABASE_URL or REDIS_ADDR")
	}

	meter := providers.MeterProvider.Meter("guestlens.sweeper")
	reporter := otelsetup.NewSweepReporter(providers.LoggerProvider)
	sweeper, err := maintenance.NewSweeper(sessions, revocations, clock.System{}, meter, reporter)
	if err != nil {
		log.Fatalf("sweeper: %v", err)
	}

	interval := cfg.SweepInterval()
	log.Printf("sweeper: sweeping every %s", interval)
	sweeper.Run(ctx, interval)
	log.Println("sweeper: stopped")
}
