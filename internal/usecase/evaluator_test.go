package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"FinSight/internal/domain/models"
	"FinSight/internal/domain/repository"
)

func newLoop(cfg EvaluatorConfig, srcs ...repository.Source) *Evaluator {
	retriever := NewRetriever(srcs, testCache(), nil, time.Second, nil)
	fuser := NewFuser(nil)
	return NewEvaluator(retriever, fuser, NewReranker(fuser), NewCompliance(), cfg, nil, nil)
}

func TestLoopPassesFirstAttempt(t *testing.T) {
	src := &fakeSource{
		id:    models.SourceFundamentals,
		class: models.ClassFundamental,
		fields: map[string]any{
			models.FieldYield:        3.1,
			models.FieldSafetyRating: 0.9,
		},
	}
	loop := newLoop(EvaluatorConfig{}, src)

	out := loop.Run(context.Background(), queryFor(models.IntentAnalyze, []string{"JNJ"}, src.id))
	if out.State != models.StateDone {
		t.Fatalf("expected DONE, got %s", out.State)
	}
	if out.RetriesUsed != 0 {
		t.Fatalf("expected no retries, got %d", out.RetriesUsed)
	}
	if out.Recommendation.LowConfidence {
		t.Fatalf("passing verdict must not be marked low confidence")
	}
	if len(out.Recommendation.Entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(out.Recommendation.Entries))
	}
}

func TestLoopBoundedRetriesOnNoData(t *testing.T) {
	src := &fakeSource{
		id:  models.SourceFundamentals,
		err: models.NewSourceError(models.SourceFundamentals, models.SourceErrNetwork, errors.New("down")),
	}
	loop := newLoop(EvaluatorConfig{MaxRetries: 2}, src)

	out := loop.Run(context.Background(), queryFor(models.IntentAnalyze, []string{"JNJ"}, src.id))
	if out.State != models.StateFailedNoData {
		t.Fatalf("expected FAILED_NO_DATA, got %s", out.State)
	}
	if out.RetriesUsed != 2 {
		t.Fatalf("expected exactly 2 retries, got %d", out.RetriesUsed)
	}
	// initial attempt plus two retries, never more
	if got := src.calls.Load(); got != 3 {
		t.Fatalf("expected 3 fetch attempts, got %d", got)
	}
	if len(out.Unavailable) != 1 || out.Unavailable[0] != src.id {
		t.Fatalf("unexpected unavailable list %v", out.Unavailable)
	}
}

func TestLoopNeverExceedsRetryBudget(t *testing.T) {
	// hammer the loop to show the bound holds under repetition
	for i := 0; i < 100; i++ {
		src := &fakeSource{
			id:  models.SourceQuotes,
			err: models.NewSourceError(models.SourceQuotes, models.SourceErrTimeout, errors.New("slow")),
		}
		loop := newLoop(EvaluatorConfig{MaxRetries: 2}, src)
		out := loop.Run(context.Background(), queryFor(models.IntentBuy, []string{"KO"}, src.id))
		if out.RetriesUsed > 2 {
			t.Fatalf("run %d exceeded retry budget: %d", i, out.RetriesUsed)
		}
		if src.calls.Load() > 3 {
			t.Fatalf("run %d made %d fetches", i, src.calls.Load())
		}
	}
}

func TestLoopReportsUnavailableSources(t *testing.T) {
	good := &fakeSource{
		id:    models.SourceFundamentals,
		class: models.ClassFundamental,
		fields: map[string]any{
			models.FieldYield:        3.1,
			models.FieldSafetyRating: 0.9,
		},
	}
	bad := &fakeSource{
		id:  models.SourceSentiment,
		err: models.NewSourceError(models.SourceSentiment, models.SourceErrNetwork, errors.New("down")),
	}
	loop := newLoop(EvaluatorConfig{}, good, bad)

	out := loop.Run(context.Background(), queryFor(models.IntentAnalyze, []string{"JNJ"}, good.id, bad.id))
	if out.State != models.StateDone {
		t.Fatalf("expected DONE, got %s", out.State)
	}
	if len(out.Unavailable) != 1 || out.Unavailable[0] != bad.id {
		t.Fatalf("failed source must be reported unavailable, got %v", out.Unavailable)
	}
}

func TestLoopExhaustedReturnsAnnotatedBest(t *testing.T) {
	// data exists but is never scorable, so every verdict fails on the
	// confidence check and the loop exhausts its budget
	src := &fakeSource{
		id:     models.SourceQuotes,
		fields: map[string]any{models.FieldPrice: 100.0},
	}
	loop := newLoop(EvaluatorConfig{MaxRetries: 2}, src)

	q := queryFor(models.IntentAnalyze, []string{"JNJ"}, src.id)
	q.Confidence = 0.2

	out := loop.Run(context.Background(), q)
	if out.State != models.StateDone {
		t.Fatalf("expected DONE with annotation, got %s", out.State)
	}
	if !out.Recommendation.LowConfidence {
		t.Fatalf("exhausted loop must mark the recommendation low confidence")
	}
	if out.RetriesUsed != 2 {
		t.Fatalf("expected 2 retries, got %d", out.RetriesUsed)
	}
	if len(out.Recommendation.Entries) == 0 {
		t.Fatalf("best-effort result must still carry entries")
	}
}

func TestMutateBroadensTickerQuery(t *testing.T) {
	loop := newLoop(EvaluatorConfig{})
	q := queryFor(models.IntentAnalyze, []string{"JNJ"}, models.SourceFundamentals, models.SourceQuotes)

	next := loop.mutateForRetry(q, nil, []string{"result set is empty"})
	if len(next.Tickers) != 0 {
		t.Fatalf("retry should broaden to the universe, got %v", next.Tickers)
	}
	if len(next.RequiredSources) != 4 {
		t.Fatalf("broadened query needs all sources, got %v", next.RequiredSources)
	}
	// the original query must be untouched
	if len(q.Tickers) != 1 || len(q.RequiredSources) != 2 {
		t.Fatalf("input query mutated: %v %v", q.Tickers, q.RequiredSources)
	}
}

func TestMutateKeepsAtLeastOneSource(t *testing.T) {
	loop := newLoop(EvaluatorConfig{})
	q := queryFor(models.IntentAnalyze, []string{"JNJ"}, models.SourceQuotes)

	next := loop.mutateForRetry(q, map[string]error{models.SourceQuotes: errors.New("down")}, nil)
	if len(next.RequiredSources) != 1 {
		t.Fatalf("mutation must keep at least one source, got %v", next.RequiredSources)
	}
}
