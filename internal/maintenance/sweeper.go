// Package maintenance implements the periodic sweep that drops expired
// sessions and revocation entries.
package maintenance

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel/metric"

	"guestlens/backend/internal/clock"
	"guestlens/backend/internal/telemetry"
)

// ExpiryStore is the slice of store behavior the sweeper needs.
type ExpiryStore interface {
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// Result holds the removal counts of one sweep pass.
type Result struct {
	SessionsRemoved    int64
	RevocationsRemoved int64
}

// Sweeper removes expired sessions and revocation entries. Sweeps only touch
// rows whose expiry is strictly before the current time, so a sweep never
// invalidates anything a verifier would still accept. Running it twice in a
// row is safe: the second pass finds nothing.
type Sweeper struct {
	sessions    ExpiryStore
	revocations ExpiryStore
	clk         clock.Clock
	reporter    telemetry.Reporter

	sessionsRemoved    metric.Int64Counter
	revocationsRemoved metric.Int64Counter
	sweepErrors        metric.Int64Counter
}

// NewSweeper wires the sweeper. meter and reporter may be nil to disable
// metrics and sweep reports.
func NewSweeper(sessions, revocations ExpiryStore, clk clock.Clock, meter metric.Meter, reporter telemetry.Reporter) (*Sweeper, error) {
	if sessions == nil || revocations == nil || clk == nil {
		return nil, fmt.Errorf("maintenance: missing store or clock")
	}
	s := &Sweeper{
		sessions:    sessions,
		revocations: revocations,
		clk:         clk,
		reporter:    reporter,
	}
	if meter != nil {
		var err error
		if s.sessionsRemoved, err = meter.Int64Counter("sweeper.sessions.removed"); err != nil {
			return nil, err
		}
		if s.revocationsRemoved, err = meter.Int64Counter("sweeper.revocations.removed"); err != nil {
			return nil, err
		}
		if s.sweepErrors, err = meter.Int64Counter("sweeper.errors"); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Sweep runs one pass and returns how much was removed. A partial failure
// still reports the counts removed before the failure.
func (s *Sweeper) Sweep(ctx context.Context) (Result, error) {
	started := s.clk.Now()
	var res Result
	var err error

	res.RevocationsRemoved, err = s.revocations.DeleteExpired(ctx, started)
	if err == nil {
		res.SessionsRemoved, err = s.sessions.DeleteExpired(ctx, started)
	}

	if s.sessionsRemoved != nil {
		s.sessionsRemoved.Add(ctx, res.SessionsRemoved)
		s.revocationsRemoved.Add(ctx, res.RevocationsRemoved)
		if err != nil {
			s.sweepErrors.Add(ctx, 1)
		}
	}
	if s.reporter != nil {
		report := telemetry.SweepReport{
			At:                 started,
			SessionsRemoved:    res.SessionsRemoved,
			RevocationsRemoved: res.RevocationsRemoved,
			Duration:           s.clk.Now().Sub(started),
		}
		if err != nil {
			report.Err = err.Error()
		}
		s.reporter.ReportSweep(ctx, report)
	}
	if err != nil {
		return res, fmt.Errorf("sweep: %w", err)
	}
	return res, nil
}

// Run sweeps immediately and then on every tick until the context is
// cancelled. Sweep failures are logged and the loop keeps going.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		res, err := s.Sweep(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("sweeper: %v", err)
		} else if res.SessionsRemoved > 0 || res.RevocationsRemoved > 0 {
			log.Printf("sweeper: removed %d sessions, %d revocations", res.SessionsRemoved, res.RevocationsRemoved)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
