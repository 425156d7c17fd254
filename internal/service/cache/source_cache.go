package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"FinSight/internal/domain/models"
	"FinSight/internal/domain/repository"
)

// universeTicker keys cached screening results (fetches with no tickers).
const universeTicker = "__universe__"

type entry struct {
	results []models.SourceResult
	exp     time.Time
}

type counters struct {
	hits   atomic.Int64
	misses atomic.Int64
}

// TTLPolicy maps a source class to its cache TTL.
type TTLPolicy struct {
	Quote       time.Duration
	Sentiment   time.Duration
	Prediction  time.Duration
	Fundamental time.Duration
}

// For returns the TTL for a source class.
func (p TTLPolicy) For(class models.SourceClass) time.Duration {
	switch class {
	case models.ClassQuote:
		return p.Quote
	case models.ClassSentiment:
		return p.Sentiment
	case models.ClassPrediction:
		return p.Prediction
	default:
		return p.Fundamental
	}
}

// SourceCache caches SourceResults keyed by (source, ticker) with per-class
// TTLs. Concurrent callers for the same missing key share one in-flight
// upstream fetch. Expired entries are purged lazily on access. This is the
// only cross-request shared mutable state in the service.
type SourceCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	flight  singleflight.Group
	ttl     TTLPolicy
	l2      *RedisCache // optional second level, nil when disabled
	stats   map[string]*counters
	statsMu sync.Mutex
	metrics repository.Metrics
}

// Option configures the SourceCache.
type Option func(*SourceCache)

// WithRedisL2 attaches a Redis second level.
func WithRedisL2(l2 *RedisCache) Option {
	return func(c *SourceCache) { c.l2 = l2 }
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m repository.Metrics) Option {
	return func(c *SourceCache) { c.metrics = m }
}

func NewSourceCache(ttl TTLPolicy, opts ...Option) *SourceCache {
	c := &SourceCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		stats:   make(map[string]*counters),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func key(source, ticker string) string { return source + ":" + ticker }

// GetOrFetch returns cached results for the requested tickers, fetching
// misses from the source. An empty ticker slice requests the source's
// screening universe. A fetch error is returned as-is so the orchestrator
// can record the source as unavailable; nothing is cached on error.
func (c *SourceCache) GetOrFetch(ctx context.Context, src repository.Source, tickers []string) ([]models.SourceResult, error) {
	if len(tickers) == 0 {
		return c.getOne(ctx, src, universeTicker)
	}

	var out []models.SourceResult
	var firstErr error
	for _, t := range tickers {
		rs, err := c.getOne(ctx, src, t)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		out = append(out, rs...)
	}
	if len(out) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

func (c *SourceCache) getOne(ctx context.Context, src repository.Source, ticker string) ([]models.SourceResult, error) {
	k := key(src.ID(), ticker)

	if rs, ok := c.lookup(k); ok {
		c.record(src.ID(), true)
		return rs, nil
	}
	if c.l2 != nil {
		if rs, ok := c.l2.Lookup(ctx, k); ok {
			c.record(src.ID(), true)
			c.store(src, k, rs)
			return rs, nil
		}
	}
	c.record(src.ID(), false)

	// Single-flight: concurrent callers for the same key await the first
	// caller's fetch instead of issuing duplicate upstream calls.
	v, err, _ := c.flight.Do(k, func() (any, error) {
		var fetch []string
		if ticker != universeTicker {
			fetch = []string{ticker}
		}
		rs, err := src.Fetch(ctx, fetch)
		if err != nil {
			return nil, err
		}
		if len(rs) > 0 {
			c.store(src, k, rs)
			if c.l2 != nil {
				c.l2.Store(ctx, k, rs, c.ttl.For(src.Class()))
			}
		}
		return rs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.SourceResult), nil
}

func (c *SourceCache) lookup(k string) ([]models.SourceResult, bool) {
	c.mu.RLock()
	e, ok := c.entries[k]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(e.exp) {
		c.mu.Lock()
		delete(c.entries, k)
		c.mu.Unlock()
		return nil, false
	}
	return e.results, true
}

func (c *SourceCache) store(src repository.Source, k string, rs []models.SourceResult) {
	c.mu.Lock()
	c.entries[k] = entry{results: rs, exp: time.Now().Add(c.ttl.For(src.Class()))}
	c.mu.Unlock()
}

// Put inserts results directly, bypassing fetch. Used by the quote stream
// pre-warmer.
func (c *SourceCache) Put(sourceID string, class models.SourceClass, ticker string, rs []models.SourceResult) {
	c.mu.Lock()
	c.entries[key(sourceID, ticker)] = entry{results: rs, exp: time.Now().Add(c.ttl.For(class))}
	c.mu.Unlock()
}

func (c *SourceCache) record(source string, hit bool) {
	c.statsMu.Lock()
	ct, ok := c.stats[source]
	if !ok {
		ct = &counters{}
		c.stats[source] = ct
	}
	c.statsMu.Unlock()
	if hit {
		ct.hits.Add(1)
	} else {
		ct.misses.Add(1)
	}
	if c.metrics != nil {
		c.metrics.RecordCache(source, hit)
	}
}

// Stats reports per-source entry counts, TTLs and hit/miss counters for the
// /cache-stats endpoint.
func (c *SourceCache) Stats(classes map[string]models.SourceClass) map[string]models.SourceCacheStats {
	sizes := make(map[string]int)
	now := time.Now()
	c.mu.RLock()
	for k, e := range c.entries {
		if now.After(e.exp) {
			continue
		}
		for id := range classes {
			if len(k) > len(id) && k[:len(id)] == id && k[len(id)] == ':' {
				sizes[id]++
			}
		}
	}
	c.mu.RUnlock()

	out := make(map[string]models.SourceCacheStats, len(classes))
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	for id, class := range classes {
		s := models.SourceCacheStats{
			Entries: sizes[id],
			TTL:     c.ttl.For(class).String(),
		}
		if ct, ok := c.stats[id]; ok {
			s.Hits = ct.hits.Load()
			s.Misses = ct.misses.Load()
		}
		out[id] = s
	}
	return out
}
