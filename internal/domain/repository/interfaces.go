package repository

import (
	"context"

	"FinSight/internal/domain/models"
)

// Source is the uniform provider contract. An empty ticker slice asks the
// provider for its default screening universe. Failures are reported as
// *models.SourceError and are never fatal for a request.
type Source interface {
	ID() string
	Class() models.SourceClass
	Fetch(ctx context.Context, tickers []string) ([]models.SourceResult, error)
}

// Metrics abstracts operational metrics recording.
type Metrics interface {
	RecordSourceFetch(source, outcome string)
	RecordCache(source string, hit bool)
	RecordRetry()
	RecordLatency(op string, seconds float64)
}

// AuditPublisher publishes per-request audit events. Implementations must be
// safe for concurrent use; publishing is best-effort.
type AuditPublisher interface {
	Publish(ctx context.Context, ev *models.AuditEvent) error
	Close() error
}
