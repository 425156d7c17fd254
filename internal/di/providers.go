package di

import (
	"context"
	"fmt"
	"time"

	"FinSight/internal/analyzer"
	"FinSight/internal/domain/models"
	"FinSight/internal/domain/repository"
	"FinSight/internal/handler/api"
	internalrepo "FinSight/internal/repository"
	icache "FinSight/internal/service/cache"
	"FinSight/internal/service/quotestream"
	"FinSight/internal/service/ratelimit"
	"FinSight/internal/sources"
	"FinSight/internal/usecase"
	pkgch "FinSight/pkg/clickhouse"
	"FinSight/pkg/config"
	xhttp "FinSight/pkg/http"
	pkgkafka "FinSight/pkg/kafka"
	applogger "FinSight/pkg/logger"
	"FinSight/pkg/metrics"
	"FinSight/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := "info"
	format := "json"
	if cfg.Environment == "development" {
		level = "debug"
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: level, Format: format, Output: "stdout"})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates the fundamentals database client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	fc := cfg.Sources.Fundamentals
	client, err := pkgch.NewClient(
		pkgch.WithHost(fc.Host),
		pkgch.WithPort(fc.Port),
		pkgch.WithDatabase(fc.Database),
		pkgch.WithCredentials(fc.User, fc.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(fc.DialTimeout, fc.ReadTimeout, fc.ReadTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + fc.Database,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            ticker String,
            dividend_yield Float64,
            payout_ratio Float64,
            safety_score Float64,
            value_score Float64,
            growth_rate Float64,
            ex_dividend_date Date,
            updated_at DateTime DEFAULT now()
        ) ENGINE=ReplacingMergeTree(updated_at) ORDER BY ticker`, fc.Table),
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideRedisL2 creates the optional Redis cache level. Returns nil when
// disabled.
func ProvideRedisL2(cfg *config.Config) *icache.RedisCache {
	rc := cfg.Cache.Redis
	if !rc.Enabled {
		return nil
	}
	return icache.NewRedisCache(icache.RedisConfig{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
		Prefix:   rc.Prefix,
	})
}

// ProvideSourceCache creates the shared source cache.
func ProvideSourceCache(cfg *config.Config, l2 *icache.RedisCache, m repository.Metrics) *icache.SourceCache {
	ttl := icache.TTLPolicy{
		Quote:       cfg.Cache.QuoteTTL,
		Sentiment:   cfg.Cache.SentimentTTL,
		Prediction:  cfg.Cache.PredictionTTL,
		Fundamental: cfg.Cache.FundamentalTTL,
	}
	opts := []icache.Option{icache.WithMetrics(m)}
	if l2 != nil {
		opts = append(opts, icache.WithRedisL2(l2))
	}
	return icache.NewSourceCache(ttl, opts...)
}

// ProvideSources builds all four adapters with the shared rate limiter.
func ProvideSources(cfg *config.Config, chClient *pkgch.Client, l *applogger.Logger) []repository.Source {
	timeout := cfg.Sources.Timeout
	limiter := ratelimit.New()
	capacity := cfg.Sources.RateLimit.Capacity
	refill := cfg.Sources.RateLimit.RefillPerSec

	fund := sources.NewFundamentalsDB(chClient, cfg.Sources.Fundamentals.Database+"."+cfg.Sources.Fundamentals.Table)
	fund.SetLogger(l)

	raw := []repository.Source{
		fund,
		sources.NewQuoteProvider(cfg.Sources.Quotes.BaseURL, cfg.Sources.Quotes.APIKey, timeout),
		sources.NewSentimentProvider(cfg.Sources.Sentiment.BaseURL, cfg.Sources.Sentiment.APIKey, timeout),
		sources.NewPredictionService(cfg.Sources.Prediction.BaseURL, timeout),
	}

	out := make([]repository.Source, 0, len(raw))
	for _, s := range raw {
		out = append(out, sources.WithRateLimit(s, limiter, capacity, refill))
	}
	return out
}

// ProvideEvaluator assembles the self-evaluation loop around one pass of
// retrieve, fuse, rank and comply.
func ProvideEvaluator(cfg *config.Config, srcs []repository.Source, c *icache.SourceCache, m repository.Metrics, l *applogger.Logger) *usecase.Evaluator {
	retriever := usecase.NewRetriever(srcs, c, m, cfg.Sources.Timeout, l)
	fuser := usecase.NewFuser(cfg.Sources.Priority)
	reranker := usecase.NewReranker(fuser)
	compliance := usecase.NewCompliance()
	return usecase.NewEvaluator(retriever, fuser, reranker, compliance, usecase.EvaluatorConfig{
		ConfidenceFloor:   cfg.Advisor.ConfidenceFloor,
		MinCompositeScore: cfg.Advisor.MinCompositeScore,
		MaxRetries:        cfg.Advisor.MaxRetries,
		FreshnessWindow:   cfg.Advisor.FreshnessWindow,
	}, m, l)
}

// ProvideAuditPublisher creates the Kafka audit publisher. Returns nil when
// audit is disabled.
func ProvideAuditPublisher(cfg *config.Config) (repository.AuditPublisher, error) {
	if !cfg.Audit.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Audit.Brokers),
		pkgkafka.WithCompression("gzip"),
		pkgkafka.WithRequiredAcks(1),
		pkgkafka.WithAsync(true),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaAudit(producer, cfg.Audit.Topic), nil
}

// ProvideAdvisor creates the request-scoped entry point.
func ProvideAdvisor(cfg *config.Config, loop *usecase.Evaluator, audit repository.AuditPublisher, m repository.Metrics, l *applogger.Logger) *usecase.Advisor {
	return usecase.NewAdvisor(analyzer.New(), loop, audit, m, l)
}

// ProvideHTTPHandler creates the Echo route handler.
func ProvideHTTPHandler(adv *usecase.Advisor, c *icache.SourceCache, srcs []repository.Source, l *applogger.Logger) xhttp.Handler {
	classes := make(map[string]models.SourceClass, len(srcs))
	for _, s := range srcs {
		classes[s.ID()] = s.Class()
	}
	return api.NewAdvisorEchoHandler(l, adv, c, classes)
}

// ProvideQuoteStream creates the optional cache pre-warmer. Returns nil when
// disabled.
func ProvideQuoteStream(cfg *config.Config, c *icache.SourceCache, l *applogger.Logger) *quotestream.Stream {
	qs := cfg.QuoteStream
	if !qs.Enabled {
		return nil
	}
	return quotestream.New(qs.WebSocketURL, qs.APIKey, qs.Symbols, qs.ReconnectDelay, qs.PingInterval, c, l)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	stream *quotestream.Stream,
	audit repository.AuditPublisher,
	chClient *pkgch.Client,
	redisL2 *icache.RedisCache,
) *server.App {
	return server.New(cfg, l, handler, stream, audit, chClient, redisL2)
}
