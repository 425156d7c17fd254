package usecase

import (
	"testing"

	"FinSight/internal/domain/models"
)

func TestDisclaimerOnTradeIntents(t *testing.T) {
	c := NewCompliance()
	bySource := map[string][]models.SourceResult{
		models.SourceQuotes: {sr(models.SourceQuotes, "KO", 0, map[string]any{models.FieldPrice: 60.0})},
	}

	for _, intent := range []models.Intent{models.IntentBuy, models.IntentSell} {
		rec := &models.Recommendation{Intent: intent}
		c.Annotate(rec, bySource)
		if rec.Disclaimer == nil || *rec.Disclaimer == "" {
			t.Fatalf("%s recommendation must carry a disclaimer", intent)
		}
	}

	for _, intent := range []models.Intent{models.IntentAnalyze, models.IntentScreen} {
		rec := &models.Recommendation{Intent: intent}
		c.Annotate(rec, bySource)
		if rec.Disclaimer != nil {
			t.Fatalf("%s recommendation must not carry a disclaimer", intent)
		}
	}
}

func TestAttributionSortedAndAlwaysSet(t *testing.T) {
	c := NewCompliance()
	rec := &models.Recommendation{Intent: models.IntentAnalyze}
	c.Annotate(rec, map[string][]models.SourceResult{
		models.SourceSentiment:    nil,
		models.SourceFundamentals: nil,
		models.SourceQuotes:       nil,
	})

	want := []string{models.SourceFundamentals, models.SourceQuotes, models.SourceSentiment}
	if len(rec.Attribution.Sources) != len(want) {
		t.Fatalf("unexpected attribution %v", rec.Attribution.Sources)
	}
	for i, s := range want {
		if rec.Attribution.Sources[i] != s {
			t.Fatalf("attribution not sorted: %v", rec.Attribution.Sources)
		}
	}
	if rec.Attribution.GeneratedAt.IsZero() {
		t.Fatalf("generated_at must be set")
	}
}
