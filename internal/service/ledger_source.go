package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/codeladder/dashboard/internal/domain"
	"github.com/codeladder/dashboard/internal/infrastructure"
	"github.com/codeladder/dashboard/internal/ledger"
)

// LedgerSource fetches the tracked problemset from the remote ledger and
// keeps a local mirror as a fallback for ledger outages. Every successful
// fetch replaces the mirror wholesale; a failed fetch serves the mirror
// instead, flagged as stale.
type LedgerSource struct {
	client  *ledger.Client
	mirror  domain.LedgerMirror
	metrics *infrastructure.TelemetryMetrics
	logger  *zap.Logger
}

func NewLedgerSource(
	client *ledger.Client,
	mirror domain.LedgerMirror,
	metrics *infrastructure.TelemetryMetrics,
	logger *zap.Logger,
) *LedgerSource {
	return &LedgerSource{
		client:  client,
		mirror:  mirror,
		metrics: metrics,
		logger:  logger,
	}
}

// entries returns the tracked problemset, preferring the live ledger. The
// stale flag is true when the result came from the mirror. Credential errors
// are never papered over with mirror data.
func (ls *LedgerSource) entries(ctx context.Context, session domain.Session) ([]domain.LedgerEntry, bool, error) {
	start := time.Now()
	entries, err := ls.client.FetchProblemset(ctx, session)
	ls.recordRequest(ctx, "problemset", start, err)

	if err == nil {
		if mirrorErr := ls.mirror.ReplaceAll(entries, time.Now()); mirrorErr != nil {
			ls.logger.Warn("Failed to refresh ledger mirror", zap.Error(mirrorErr))
		}
		return entries, false, nil
	}

	if errors.Is(err, domain.ErrInvalidCredentials) {
		return nil, false, err
	}

	ls.logger.Warn("Ledger unreachable, serving mirror", zap.Error(err))
	cached, cErr := ls.mirror.FindAll()
	if cErr != nil || len(cached) == 0 {
		return nil, false, domain.ErrLedgerUnavailable
	}
	return cached, true, nil
}

// recordRequest records one ledger round trip duration
func (ls *LedgerSource) recordRequest(ctx context.Context, operation string, start time.Time, err error) {
	if ls.metrics == nil || ls.metrics.LedgerRequestDuration == nil {
		return
	}
	ls.metrics.LedgerRequestDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(
			attribute.String("ledger.operation", operation),
			attribute.Bool("ledger.error", err != nil),
		),
	)
}
