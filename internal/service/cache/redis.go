package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"FinSight/internal/domain/models"
)

// RedisCache is the optional L2 behind SourceCache. Failures are soft: a
// Redis error behaves like a miss and never fails a request.
type RedisCache struct {
	cli    *redis.Client
	prefix string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

func NewRedisCache(cfg RedisConfig) *RedisCache {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "finsight:src:"
	}
	return &RedisCache{cli: rdb, prefix: prefix}
}

// Lookup fetches and decodes cached results for key; a miss or any error
// returns false.
func (r *RedisCache) Lookup(ctx context.Context, key string) ([]models.SourceResult, bool) {
	b, err := r.cli.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	var rs []models.SourceResult
	if err := json.Unmarshal(b, &rs); err != nil {
		return nil, false
	}
	return rs, true
}

// Store writes results with the given TTL; errors are dropped.
func (r *RedisCache) Store(ctx context.Context, key string, rs []models.SourceResult, ttl time.Duration) {
	b, err := json.Marshal(rs)
	if err != nil {
		return
	}
	_ = r.cli.Set(ctx, r.prefix+key, b, ttl).Err()
}

// Close releases the underlying client.
func (r *RedisCache) Close() error { return r.cli.Close() }
