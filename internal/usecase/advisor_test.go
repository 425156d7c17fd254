package usecase

import (
	"context"
	"errors"
	"testing"

	"FinSight/internal/analyzer"
	"FinSight/internal/domain/models"
	"FinSight/internal/domain/repository"
)

func newAdvisor(srcs ...repository.Source) *Advisor {
	return NewAdvisor(analyzer.New(), newLoop(EvaluatorConfig{}, srcs...), nil, nil, nil)
}

func screeningSources() []repository.Source {
	return []repository.Source{
		&fakeSource{
			id:    models.SourceFundamentals,
			class: models.ClassFundamental,
			fields: map[string]any{
				models.FieldYield:        3.1,
				models.FieldSafetyRating: 0.9,
			},
		},
		&fakeSource{
			id:     models.SourceQuotes,
			fields: map[string]any{models.FieldPrice: 150.0, models.FieldMomentum: 0.4},
		},
		&fakeSource{
			id:     models.SourceSentiment,
			class:  models.ClassSentiment,
			fields: map[string]any{models.FieldSentimentScore: 0.7},
		},
		&fakeSource{
			id:     models.SourcePrediction,
			class:  models.ClassPrediction,
			fields: map[string]any{models.FieldGrowthRate: 0.05},
		},
	}
}

func TestAnalyzeScreeningBuyQuery(t *testing.T) {
	adv := newAdvisor(screeningSources()...)

	resp, err := adv.Analyze(context.Background(), &models.AnalyzeRequest{
		Query: "Best high-yield dividend stocks to buy",
		Limit: 10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success, got reason %q", resp.Reason)
	}
	if resp.Recommendation == nil || len(resp.Recommendation.Entries) == 0 {
		t.Fatalf("expected ranked entries")
	}
	if resp.Disclaimer == nil {
		t.Fatalf("BUY response must carry a disclaimer")
	}
	if len(resp.Sources) != 4 {
		t.Fatalf("expected all sources attributed, got %v", resp.Sources)
	}
	for i, e := range resp.Recommendation.Entries {
		if e.Rank != i+1 {
			t.Fatalf("ranks not sequential at %d", i)
		}
		if e.Explanation == "" {
			t.Fatalf("entry %d missing explanation", i)
		}
	}
}

func TestAnalyzeUnknownTickerNoData(t *testing.T) {
	down := errors.New("no rows")
	srcs := []repository.Source{
		&fakeSource{id: models.SourceFundamentals, err: models.NewSourceError(models.SourceFundamentals, models.SourceErrNetwork, down)},
		&fakeSource{id: models.SourceQuotes, err: models.NewSourceError(models.SourceQuotes, models.SourceErrNetwork, down)},
	}
	adv := newAdvisor(srcs...)

	resp, err := adv.Analyze(context.Background(), &models.AnalyzeRequest{Query: "What is the outlook for ZZZZ?", Limit: 10})
	if err != nil {
		t.Fatalf("no-data must be a structured response, not an error: %v", err)
	}
	if resp.Success {
		t.Fatalf("expected failure response")
	}
	if resp.Reason != models.ReasonNoDataFound {
		t.Fatalf("expected %s, got %q", models.ReasonNoDataFound, resp.Reason)
	}
	if resp.Recommendation == nil {
		t.Fatalf("response must stay well-formed")
	}
	if resp.RetriesUsed != 2 {
		t.Fatalf("expected exhausted retries, got %d", resp.RetriesUsed)
	}
}

func TestAnalyzeBuyNoDataKeepsDisclaimer(t *testing.T) {
	down := errors.New("upstream down")
	srcs := []repository.Source{
		&fakeSource{id: models.SourceFundamentals, err: models.NewSourceError(models.SourceFundamentals, models.SourceErrNetwork, down)},
		&fakeSource{id: models.SourceQuotes, err: models.NewSourceError(models.SourceQuotes, models.SourceErrNetwork, down)},
		&fakeSource{id: models.SourceSentiment, err: models.NewSourceError(models.SourceSentiment, models.SourceErrNetwork, down)},
		&fakeSource{id: models.SourcePrediction, err: models.NewSourceError(models.SourcePrediction, models.SourceErrNetwork, down)},
	}
	adv := newAdvisor(srcs...)

	resp, err := adv.Analyze(context.Background(), &models.AnalyzeRequest{Query: "Should I buy JNJ?", Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Reason != models.ReasonNoDataFound {
		t.Fatalf("expected %s, got %q", models.ReasonNoDataFound, resp.Reason)
	}
	if resp.Disclaimer == nil || *resp.Disclaimer == "" {
		t.Fatalf("BUY response must carry a disclaimer even without data")
	}
	if resp.Recommendation == nil || resp.Recommendation.Disclaimer == nil {
		t.Fatalf("recommendation must carry the disclaimer too")
	}
}

func TestAnalyzeInvalidQuery(t *testing.T) {
	adv := newAdvisor(screeningSources()...)
	if _, err := adv.Analyze(context.Background(), &models.AnalyzeRequest{Query: "   "}); !errors.Is(err, models.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestAnalyzeLimitTruncatesEntries(t *testing.T) {
	adv := newAdvisor(screeningSources()...)

	resp, err := adv.Analyze(context.Background(), &models.AnalyzeRequest{
		Query: "Best high-yield dividend stocks to buy",
		Limit: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Recommendation.Entries) != 1 {
		t.Fatalf("expected 1 entry after limit, got %d", len(resp.Recommendation.Entries))
	}
}

func TestAnalyzeIncludeRawData(t *testing.T) {
	adv := newAdvisor(screeningSources()...)

	resp, err := adv.Analyze(context.Background(), &models.AnalyzeRequest{
		Query:          "How is JNJ doing",
		IncludeRawData: true,
		Limit:          10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.RawResults) == 0 {
		t.Fatalf("expected raw per-source results")
	}

	resp, err = adv.Analyze(context.Background(), &models.AnalyzeRequest{Query: "How is JNJ doing", Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.RawResults != nil {
		t.Fatalf("raw results must be omitted by default")
	}
}
