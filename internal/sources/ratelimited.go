package sources

import (
	"context"
	"fmt"

	"FinSight/internal/domain/models"
	"FinSight/internal/domain/repository"
	"FinSight/internal/service/ratelimit"
)

// RateLimited decorates a Source with a token-bucket guard on upstream
// calls. A denied token is a RateLimited soft failure, absorbed by the
// orchestrator like any other source error.
type RateLimited struct {
	src          repository.Source
	limiter      *ratelimit.Limiter
	capacity     float64
	refillPerSec float64
}

func WithRateLimit(src repository.Source, limiter *ratelimit.Limiter, capacity, refillPerSec float64) *RateLimited {
	return &RateLimited{src: src, limiter: limiter, capacity: capacity, refillPerSec: refillPerSec}
}

func (r *RateLimited) ID() string                { return r.src.ID() }
func (r *RateLimited) Class() models.SourceClass { return r.src.Class() }

func (r *RateLimited) Fetch(ctx context.Context, tickers []string) ([]models.SourceResult, error) {
	if !r.limiter.Allow(r.src.ID(), r.capacity, r.refillPerSec) {
		return nil, models.NewSourceError(r.src.ID(), models.SourceErrRateLimited, fmt.Errorf("local limiter exhausted"))
	}
	return r.src.Fetch(ctx, tickers)
}

var _ repository.Source = (*RateLimited)(nil)
