package usecase

import (
	"context"
	"time"

	"FinSight/internal/analyzer"
	"FinSight/internal/domain/models"
	"FinSight/internal/domain/repository"
	applogger "FinSight/pkg/logger"
)

// Advisor is the request-scoped entry point: it analyzes the raw query,
// drives the self-evaluation loop and shapes the structured response. The
// system always returns a well-formed response; the worst case is a partial
// answer annotated with the unavailable sources and a lowered confidence.
type Advisor struct {
	analyzer *analyzer.Analyzer
	loop     *Evaluator
	audit    repository.AuditPublisher // nil when audit is disabled
	metrics  repository.Metrics
	log      *applogger.Logger
}

func NewAdvisor(an *analyzer.Analyzer, loop *Evaluator, audit repository.AuditPublisher, metrics repository.Metrics, log *applogger.Logger) *Advisor {
	return &Advisor{analyzer: an, loop: loop, audit: audit, metrics: metrics, log: log}
}

// Analyze serves one request end to end. models.ErrInvalidQuery is the only
// error returned; everything else surfaces inside the response.
func (a *Advisor) Analyze(ctx context.Context, req *models.AnalyzeRequest) (*models.AnalyzeResponse, error) {
	start := time.Now()

	q, err := a.analyzer.Analyze(req.Query)
	if err != nil {
		return nil, err
	}
	if a.log != nil {
		a.log.Info("query analyzed",
			applogger.String("intent", string(q.Intent)),
			applogger.Strings("tickers", q.Tickers),
			applogger.Float64("confidence", q.Confidence),
		)
	}

	outcome := a.loop.Run(ctx, q)
	resp := a.buildResponse(req, q, outcome)

	if a.metrics != nil {
		a.metrics.RecordLatency("analyze", time.Since(start).Seconds())
	}
	a.publishAudit(req, q, outcome, resp, time.Since(start))
	return resp, nil
}

func (a *Advisor) buildResponse(req *models.AnalyzeRequest, q *models.Query, outcome *Outcome) *models.AnalyzeResponse {
	resp := &models.AnalyzeResponse{
		RetriesUsed: outcome.RetriesUsed,
	}

	if outcome.State == models.StateFailedNoData {
		resp.Success = false
		resp.Reason = models.ReasonNoDataFound
		resp.Confidence = 0
		rec := &models.Recommendation{
			Intent:      q.Intent,
			Unavailable: outcome.Unavailable,
		}
		// the BUY/SELL disclaimer is owed even when no source returned data
		NewCompliance().Annotate(rec, nil)
		resp.Recommendation = rec
		resp.Disclaimer = rec.Disclaimer
		resp.Sources = []string{}
		return resp
	}

	rec := outcome.Recommendation
	if req.Limit > 0 && len(rec.Entries) > req.Limit {
		rec.Entries = rec.Entries[:req.Limit]
	}

	confidence := outcome.Query.Confidence
	if rec.LowConfidence {
		// annotate rather than fail: halve the analyzer's estimate
		confidence = confidence / 2
		resp.Reason = models.ReasonLowConfidence
	}

	resp.Success = !rec.LowConfidence
	resp.Recommendation = rec
	resp.Confidence = confidence
	resp.Sources = rec.Attribution.Sources
	resp.Disclaimer = rec.Disclaimer

	if req.IncludeRawData {
		resp.RawResults = outcome.BySource
	}
	return resp
}

// publishAudit emits the best-effort audit event. It never blocks the
// response path.
func (a *Advisor) publishAudit(req *models.AnalyzeRequest, q *models.Query, outcome *Outcome, resp *models.AnalyzeResponse, took time.Duration) {
	if a.audit == nil {
		return
	}
	ev := &models.AuditEvent{
		Query:       req.Query,
		Intent:      q.Intent,
		Tickers:     q.Tickers,
		Confidence:  resp.Confidence,
		RetriesUsed: resp.RetriesUsed,
		Success:     resp.Success,
		Reason:      resp.Reason,
		DurationMS:  took.Milliseconds(),
	}
	if resp.Recommendation != nil && len(resp.Recommendation.Entries) > 0 {
		ev.TopTicker = resp.Recommendation.Entries[0].Record.Ticker
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := a.audit.Publish(ctx, ev); err != nil && a.log != nil {
			a.log.Warn("audit publish failed", applogger.Error(err))
		}
	}()
}
