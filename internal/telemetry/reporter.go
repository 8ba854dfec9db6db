// Package telemetry defines the reporting surface the sweeper emits through.
package telemetry

import (
	"context"
	"time"
)

// SweepReport summarizes one sweep pass.
type SweepReport struct {
	At                 time.Time
	SessionsRemoved    int64
	RevocationsRemoved int64
	Duration           time.Duration
	Err                string // empty on success
}

// Reporter emits sweep reports to an observability backend. Implementations
// must be best-effort; a failing backend never blocks the sweep loop.
type Reporter interface {
	ReportSweep(ctx context.Context, r SweepReport)
}
