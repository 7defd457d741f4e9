// Package telemetry implements ports.FailureReporter: a log line, a counter
// and an optional audit trail, fanned out from one report.
package telemetry

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/99minutos/admin-console/internal/core/domain"
	"github.com/99minutos/admin-console/internal/core/ports"
	"github.com/99minutos/admin-console/internal/pkg/metrics"
)

// LogReporter writes one structured log line per failure.
type LogReporter struct {
	log zerolog.Logger
}

func NewLogReporter(log zerolog.Logger) *LogReporter {
	return &LogReporter{log: log}
}

func (r *LogReporter) Report(_ context.Context, report domain.FailureReport) {
	ev := r.log.Error().Err(report.Err).
		Str("op", report.Op).
		Str("kind", report.Kind())
	if report.Target != "" {
		ev = ev.Str("target", report.Target)
	}
	if report.Actor != "" {
		ev = ev.Str("actor", report.Actor)
	}
	var netErr *domain.NetworkError
	if errors.As(report.Err, &netErr) && netErr.Status != 0 {
		ev = ev.Int("status", netErr.Status)
	}
	ev.Time("at", report.At).Msg("directory operation failed")
}

// MetricsReporter counts failures by operation and kind.
type MetricsReporter struct{}

func (MetricsReporter) Report(_ context.Context, report domain.FailureReport) {
	metrics.FailuresReportedTotal.WithLabelValues(report.Op, report.Kind()).Inc()
}

// Enqueuer accepts reports for asynchronous delivery.
type Enqueuer interface {
	Enqueue(report domain.FailureReport) bool
}

// AuditReporter hands reports to the audit dispatcher without waiting for
// them to be stored.
type AuditReporter struct {
	queue Enqueuer
}

func NewAuditReporter(queue Enqueuer) *AuditReporter {
	return &AuditReporter{queue: queue}
}

func (r *AuditReporter) Report(_ context.Context, report domain.FailureReport) {
	r.queue.Enqueue(report)
}

// Multi fans one report out to every reporter in order. A panicking reporter
// is contained so the rest still run.
type Multi []ports.FailureReporter

func (m Multi) Report(ctx context.Context, report domain.FailureReport) {
	for _, r := range m {
		if r == nil {
			continue
		}
		safeReport(ctx, r, report)
	}
}

func safeReport(ctx context.Context, r ports.FailureReporter, report domain.FailureReport) {
	defer func() { _ = recover() }()
	r.Report(ctx, report)
}
