package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"FinSight/internal/domain/models"
	"FinSight/internal/domain/repository"
	applogger "FinSight/pkg/logger"
)

// EvaluatorConfig holds the validation thresholds of the self-evaluation
// loop.
type EvaluatorConfig struct {
	ConfidenceFloor   float64
	MinCompositeScore float64
	MaxRetries        int
	FreshnessWindow   time.Duration
}

// Outcome is the terminal result of the loop.
type Outcome struct {
	State          models.LoopState
	Recommendation *models.Recommendation
	Query          *models.Query
	BySource       map[string][]models.SourceResult
	Unavailable    []string
	RetriesUsed    int
}

type passResult struct {
	rec      *models.Recommendation
	bySource map[string][]models.SourceResult
	srcErrs  map[string]error
	records  []*models.FusedRecord
}

// Evaluator wraps retrieve → fuse → rank → comply as one pass and validates
// the result, re-entering retrieval with a mutated Query on failure.
//
// The loop is an explicit bounded state machine:
//
//	INIT → RETRIEVING → EVALUATING → {DONE | RETRY→RETRIEVING (≤MaxRetries) | FAILED_NO_DATA}
//
// Retries run sequentially, never concurrently, since each depends on the
// prior verdict. FAILED_NO_DATA is reached only when zero sources ever
// returned data across all attempts.
type Evaluator struct {
	retriever  *Retriever
	fuser      *Fuser
	reranker   *Reranker
	compliance *Compliance
	cfg        EvaluatorConfig
	metrics    repository.Metrics
	log        *applogger.Logger
}

func NewEvaluator(retriever *Retriever, fuser *Fuser, reranker *Reranker, compliance *Compliance, cfg EvaluatorConfig, metrics repository.Metrics, log *applogger.Logger) *Evaluator {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 2
	}
	if cfg.ConfidenceFloor <= 0 {
		cfg.ConfidenceFloor = 0.6
	}
	if cfg.MinCompositeScore <= 0 {
		cfg.MinCompositeScore = 0.25
	}
	if cfg.FreshnessWindow <= 0 {
		cfg.FreshnessWindow = 24 * time.Hour
	}
	return &Evaluator{
		retriever:  retriever,
		fuser:      fuser,
		reranker:   reranker,
		compliance: compliance,
		cfg:        cfg,
		metrics:    metrics,
		log:        log,
	}
}

// Run drives the loop to a terminal state. It never hard-fails on partial
// data: after exhausting retries it returns the best available result with
// the lowered-confidence flag set.
func (e *Evaluator) Run(ctx context.Context, q *models.Query) *Outcome {
	cur := q
	retries := 0
	anyData := false
	var best *passResult
	var bestQuery *models.Query
	var lastErrs map[string]error

	for attempt := 0; attempt <= e.cfg.MaxRetries; attempt++ {
		// RETRIEVING
		pr, err := e.pass(ctx, cur)
		lastErrs = pr.srcErrs

		// EVALUATING
		if err != nil {
			if errors.Is(err, models.ErrNoData) {
				if e.log != nil {
					e.log.Warn("pass returned no data",
						applogger.Int("attempt", attempt),
						applogger.Strings("sources", cur.RequiredSources),
					)
				}
				if attempt < e.cfg.MaxRetries {
					cur = e.mutateForRetry(cur, pr.srcErrs, nil)
					retries++
					e.recordRetry()
					continue
				}
			}
			break
		}
		anyData = true

		verdict := e.evaluate(cur, pr)
		if verdict.Passed {
			return &Outcome{
				State:          models.StateDone,
				Recommendation: pr.rec,
				Query:          cur,
				BySource:       pr.bySource,
				Unavailable:    unavailableList(pr.srcErrs),
				RetriesUsed:    retries,
			}
		}

		if best == nil || topScore(pr.rec) > topScore(best.rec) {
			best = pr
			bestQuery = cur
		}

		if attempt < e.cfg.MaxRetries {
			if e.log != nil {
				e.log.Warn("validation failed, retrying",
					applogger.Int("attempt", attempt),
					applogger.Strings("reasons", verdict.Reasons),
				)
			}
			cur = verdict.NextQuery
			retries++
			e.recordRetry()
			continue
		}
		break
	}

	if !anyData {
		return &Outcome{
			State:       models.StateFailedNoData,
			Query:       cur,
			Unavailable: unavailableList(lastErrs),
			RetriesUsed: retries,
		}
	}

	// Retries exhausted: annotate the best available result instead of failing.
	best.rec.LowConfidence = true
	return &Outcome{
		State:          models.StateDone,
		Recommendation: best.rec,
		Query:          bestQuery,
		BySource:       best.bySource,
		Unavailable:    unavailableList(best.srcErrs),
		RetriesUsed:    retries,
	}
}

// pass executes retrieve → fuse → rank → comply once.
func (e *Evaluator) pass(ctx context.Context, q *models.Query) (*passResult, error) {
	bySource, srcErrs, err := e.retriever.Retrieve(ctx, q)
	if err != nil {
		return &passResult{srcErrs: srcErrs}, err
	}

	records := e.fuser.Fuse(bySource)
	entries := e.reranker.Rank(records, q.Intent)

	rec := &models.Recommendation{
		Intent:      q.Intent,
		Entries:     entries,
		Unavailable: unavailableList(srcErrs),
	}
	e.compliance.Annotate(rec, bySource)

	return &passResult{rec: rec, bySource: bySource, srcErrs: srcErrs, records: records}, nil
}

// evaluate validates one pass against the four acceptance checks.
func (e *Evaluator) evaluate(q *models.Query, pr *passResult) *models.EvaluationVerdict {
	var reasons []string

	if len(pr.rec.Entries) == 0 {
		reasons = append(reasons, "result set is empty")
	}

	if !e.anyFreshPrimary(pr.records) {
		reasons = append(reasons, fmt.Sprintf("no record has primary-source data fresher than %s", e.cfg.FreshnessWindow))
	}

	needsDisclaimer := q.Intent == models.IntentBuy || q.Intent == models.IntentSell
	if needsDisclaimer && pr.rec.Disclaimer == nil {
		reasons = append(reasons, "required disclaimer missing")
	}

	if q.Confidence < e.cfg.ConfidenceFloor && topScore(pr.rec) < e.cfg.MinCompositeScore {
		reasons = append(reasons, fmt.Sprintf("confidence %.2f below floor and top score %.2f below minimum", q.Confidence, topScore(pr.rec)))
	}

	if len(reasons) == 0 {
		return &models.EvaluationVerdict{Passed: true}
	}
	return &models.EvaluationVerdict{
		Passed:    false,
		Reasons:   reasons,
		NextQuery: e.mutateForRetry(q, pr.srcErrs, reasons),
	}
}

// anyFreshPrimary reports whether at least one record carries data from its
// primary source fetched within the freshness window.
func (e *Evaluator) anyFreshPrimary(records []*models.FusedRecord) bool {
	cutoff := time.Now().Add(-e.cfg.FreshnessWindow)
	for _, rec := range records {
		primary := e.fuser.PrimarySource(rec)
		if primary == "" {
			continue
		}
		for _, o := range rec.Provenance {
			if o.Source == primary && o.FetchedAt.After(cutoff) {
				return true
			}
		}
	}
	return false
}

// mutateForRetry derives the next attempt's Query: unavailable sources are
// dropped from the required set (at least one must remain), and when the
// pass produced nothing for a ticker-specific query, matching is broadened
// to the full screening universe.
func (e *Evaluator) mutateForRetry(q *models.Query, srcErrs map[string]error, reasons []string) *models.Query {
	next := q.Clone()

	for id := range srcErrs {
		if len(next.RequiredSources) <= 1 {
			break
		}
		next = next.WithoutSource(id)
	}

	if len(srcErrs) == 0 && len(next.Tickers) > 0 {
		// nothing to drop; broaden instead
		next.Tickers = nil
		next.RequiredSources = []string{
			models.SourceFundamentals,
			models.SourceQuotes,
			models.SourceSentiment,
			models.SourcePrediction,
		}
	}
	return next
}

func (e *Evaluator) recordRetry() {
	if e.metrics != nil {
		e.metrics.RecordRetry()
	}
}

func topScore(rec *models.Recommendation) float64 {
	if rec == nil || len(rec.Entries) == 0 {
		return 0
	}
	return rec.Entries[0].Record.CompositeScore
}

func unavailableList(srcErrs map[string]error) []string {
	if len(srcErrs) == 0 {
		return nil
	}
	out := make([]string, 0, len(srcErrs))
	for id := range srcErrs {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
