package usecase

import (
	"testing"

	"FinSight/internal/domain/models"
)

func fused(ticker string, fields map[string]any) *models.FusedRecord {
	return &models.FusedRecord{
		Ticker:     ticker,
		Fields:     fields,
		Provenance: map[string]models.FieldOrigin{},
	}
}

func TestRankBuyFavorsSafety(t *testing.T) {
	r := NewReranker(NewFuser(nil))
	records := []*models.FusedRecord{
		fused("RISKY", map[string]any{
			models.FieldSafetyRating: 0.2,
			models.FieldYield:        6.0,
		}),
		fused("SAFE", map[string]any{
			models.FieldSafetyRating: 0.9,
			models.FieldYield:        3.0,
		}),
	}

	entries := r.Rank(records, models.IntentBuy)
	if entries[0].Record.Ticker != "SAFE" {
		t.Fatalf("BUY weighting should favor safety, got %s first", entries[0].Record.Ticker)
	}
	if entries[0].Rank != 1 || entries[1].Rank != 2 {
		t.Fatalf("ranks not assigned: %d, %d", entries[0].Rank, entries[1].Rank)
	}
}

func TestRankScoresStayInUnitRange(t *testing.T) {
	r := NewReranker(NewFuser(nil))
	records := []*models.FusedRecord{
		fused("A1", map[string]any{models.FieldYield: 8.0, models.FieldMomentum: -3.0}),
		fused("B2", map[string]any{models.FieldYield: 2.0, models.FieldMomentum: 5.0}),
		fused("C3", map[string]any{models.FieldYield: 4.0}),
	}
	for _, e := range r.Rank(records, models.IntentAnalyze) {
		s := e.Record.CompositeScore
		if s < 0 || s > 1 {
			t.Fatalf("composite score %v out of [0,1] for %s", s, e.Record.Ticker)
		}
	}
}

func TestMissingFeatureWeightRedistributed(t *testing.T) {
	r := NewReranker(NewFuser(nil))
	// only one scorable feature present, normalized to the max of the set
	records := []*models.FusedRecord{
		fused("HI", map[string]any{models.FieldYield: 6.0}),
		fused("LO", map[string]any{models.FieldYield: 2.0}),
	}
	entries := r.Rank(records, models.IntentBuy)
	// with a single feature the redistributed weight makes the composite
	// equal the normalized feature itself
	if entries[0].Record.Ticker != "HI" || entries[0].Record.CompositeScore != 1.0 {
		t.Fatalf("expected HI at 1.0, got %s at %v", entries[0].Record.Ticker, entries[0].Record.CompositeScore)
	}
	if entries[1].Record.CompositeScore != 0.0 {
		t.Fatalf("expected LO at 0.0, got %v", entries[1].Record.CompositeScore)
	}
}

func TestDegenerateRangeScoresNeutral(t *testing.T) {
	r := NewReranker(NewFuser(nil))
	records := []*models.FusedRecord{
		fused("ONLY", map[string]any{models.FieldYield: 4.2, models.FieldSafetyRating: 0.8}),
	}
	entries := r.Rank(records, models.IntentBuy)
	if entries[0].Record.CompositeScore != 0.5 {
		t.Fatalf("single candidate should score neutral 0.5, got %v", entries[0].Record.CompositeScore)
	}
}

func TestTieBreakAlphabetical(t *testing.T) {
	r := NewReranker(NewFuser(nil))
	records := []*models.FusedRecord{
		fused("ZZ", map[string]any{models.FieldYield: 3.0}),
		fused("AA", map[string]any{models.FieldYield: 3.0}),
	}
	entries := r.Rank(records, models.IntentScreen)
	if entries[0].Record.Ticker != "AA" {
		t.Fatalf("equal scores must tie-break alphabetically, got %s first", entries[0].Record.Ticker)
	}
}

func TestRankDeterministic(t *testing.T) {
	r := NewReranker(NewFuser(nil))
	build := func() []*models.FusedRecord {
		return []*models.FusedRecord{
			fused("AAPL", map[string]any{models.FieldYield: 0.5, models.FieldMomentum: 2.0}),
			fused("JNJ", map[string]any{models.FieldYield: 3.1, models.FieldMomentum: 0.4}),
			fused("KO", map[string]any{models.FieldYield: 3.0, models.FieldMomentum: 0.2}),
		}
	}
	first := r.Rank(build(), models.IntentBuy)
	for i := 0; i < 5; i++ {
		again := r.Rank(build(), models.IntentBuy)
		for j := range first {
			if first[j].Record.Ticker != again[j].Record.Ticker {
				t.Fatalf("ordering not deterministic at run %d position %d", i, j)
			}
		}
	}
}

func TestNamespacedFallbackScored(t *testing.T) {
	r := NewReranker(NewFuser(nil))
	// yield only survives as a shadowed copy from quotes
	rec := fused("JNJ", map[string]any{
		models.SourceQuotes + "." + models.FieldYield: 2.9,
	})
	other := fused("KO", map[string]any{
		models.SourceQuotes + "." + models.FieldYield: 1.0,
	})
	entries := r.Rank([]*models.FusedRecord{rec, other}, models.IntentBuy)
	if entries[0].Record.Ticker != "JNJ" {
		t.Fatalf("namespaced fallback should still be scorable, got %s first", entries[0].Record.Ticker)
	}
}

func TestWeightProfilesNormalized(t *testing.T) {
	for _, intent := range []models.Intent{models.IntentBuy, models.IntentSell, models.IntentAnalyze, models.IntentScreen, models.IntentUnknown} {
		var sum float64
		for _, w := range WeightsFor(intent) {
			sum += w
		}
		if sum < 0.999 || sum > 1.001 {
			t.Fatalf("weights for %s sum to %v", intent, sum)
		}
	}
}
