package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"guestlens/backend/internal/telemetry"
)

// NewSweepReporter returns a Reporter that sends sweep reports as OTel log
// records via the given LoggerProvider. If provider is nil, returns a no-op reporter.
func NewSweepReporter(provider *sdklog.LoggerProvider) telemetry.Reporter {
	if provider == nil {
		return noopReporter{}
	}
	return &otelReporter{logger: provider.Logger("guestlens.sweeper")}
}

type noopReporter struct{}

func (noopReporter) ReportSweep(context.Context, telemetry.SweepReport) {}

type otelReporter struct {
	logger otellog.Logger
}

// ReportSweep converts the report to an OTel log record and emits it. Best-effort.
func (r *otelReporter) ReportSweep(ctx context.Context, report telemetry.SweepReport) {
	rec := otellog.Record{}
	at := report.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	rec.SetTimestamp(at)
	rec.SetBody(otellog.StringValue("credential sweep"))
	rec.AddAttributes(
		otellog.Int64("sessions_removed", report.SessionsRemoved),
		otellog.Int64("revocations_removed", report.RevocationsRemoved),
		otellog.Int64("duration_ms", report.Duration.Milliseconds()),
	)
	if report.Err != "" {
		rec.SetSeverity(otellog.SeverityError)
		rec.AddAttributes(otellog.String("error", report.Err))
	} else {
		rec.SetSeverity(otellog.SeverityInfo)
	}
	r.logger.Emit(ctx, rec)
}
