package usecase

import (
	"context"
	"time"

	"FinSight/internal/domain/models"
	"FinSight/internal/domain/repository"
	"FinSight/internal/service/cache"
	applogger "FinSight/pkg/logger"
)

// deadlineBuffer pads the overall fan-out deadline beyond the per-source
// timeout. Calls run in parallel, so the bound is not the sum of timeouts.
const deadlineBuffer = 2 * time.Second

// Retriever fans out one cache-or-fetch operation per required source
// concurrently. A timed-out or erroring source is recorded as unavailable
// and excluded from fusion; it never aborts the request.
type Retriever struct {
	sources map[string]repository.Source
	cache   *cache.SourceCache
	metrics repository.Metrics
	timeout time.Duration
	log     *applogger.Logger
}

func NewRetriever(sources []repository.Source, c *cache.SourceCache, metrics repository.Metrics, timeout time.Duration, log *applogger.Logger) *Retriever {
	byID := make(map[string]repository.Source, len(sources))
	for _, s := range sources {
		byID[s.ID()] = s
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Retriever{sources: byID, cache: c, metrics: metrics, timeout: timeout, log: log}
}

// Retrieve executes the fan-out for q. It returns per-source results and a
// parallel map of per-source errors. models.ErrNoData is returned only when
// every required source failed or produced nothing.
func (r *Retriever) Retrieve(ctx context.Context, q *models.Query) (map[string][]models.SourceResult, map[string]error, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout+deadlineBuffer)
	defer cancel()

	type item struct {
		id      string
		results []models.SourceResult
		err     error
	}
	ch := make(chan item, len(q.RequiredSources))
	launched := 0

	for _, id := range q.RequiredSources {
		src, ok := r.sources[id]
		if !ok {
			continue
		}
		launched++
		go func(id string, src repository.Source) {
			callCtx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()

			start := time.Now()
			rs, err := r.cache.GetOrFetch(callCtx, src, q.Tickers)
			if err == nil && callCtx.Err() == context.DeadlineExceeded {
				err = models.NewSourceError(id, models.SourceErrTimeout, callCtx.Err())
			}
			if r.metrics != nil {
				outcome := "ok"
				if err != nil {
					outcome = "error"
				}
				r.metrics.RecordSourceFetch(id, outcome)
				r.metrics.RecordLatency("source_fetch", time.Since(start).Seconds())
			}
			ch <- item{id: id, results: rs, err: err}
		}(id, src)
	}

	results := make(map[string][]models.SourceResult, launched)
	errs := make(map[string]error)
	for i := 0; i < launched; i++ {
		it := <-ch
		if it.err != nil {
			errs[it.id] = it.err
			if r.log != nil {
				r.log.Warn("source unavailable",
					applogger.String("source", it.id),
					applogger.Error(it.err),
				)
			}
			continue
		}
		if len(it.results) > 0 {
			results[it.id] = it.results
		}
	}

	if len(results) == 0 {
		return nil, errs, models.ErrNoData
	}
	return results, errs, nil
}
