package usecase

import (
	"testing"
	"time"

	"FinSight/internal/domain/models"
)

func sr(source, ticker string, age time.Duration, fields map[string]any) models.SourceResult {
	return models.SourceResult{
		Source:    source,
		Ticker:    ticker,
		Fields:    fields,
		FetchedAt: time.Now().Add(-age),
	}
}

func TestFusePriorityWinsConflicts(t *testing.T) {
	f := NewFuser(nil)
	bySource := map[string][]models.SourceResult{
		models.SourceFundamentals: {sr(models.SourceFundamentals, "JNJ", 0, map[string]any{
			models.FieldYield: 3.1,
		})},
		models.SourceQuotes: {sr(models.SourceQuotes, "JNJ", 0, map[string]any{
			models.FieldYield: 2.9,
			models.FieldPrice: 150.0,
		})},
	}

	records := f.Fuse(bySource)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]

	if v, _ := rec.Numeric(models.FieldYield); v != 3.1 {
		t.Fatalf("fundamentals yield must win, got %v", v)
	}
	if rec.Provenance[models.FieldYield].Source != models.SourceFundamentals {
		t.Fatalf("wrong provenance %v", rec.Provenance[models.FieldYield])
	}
	// the shadowed value survives under a namespaced key
	if v, ok := rec.Numeric(models.SourceQuotes + "." + models.FieldYield); !ok || v != 2.9 {
		t.Fatalf("shadowed quotes yield missing, got %v ok=%v", v, ok)
	}
	if v, _ := rec.Numeric(models.FieldPrice); v != 150.0 {
		t.Fatalf("non-conflicting field lost, got %v", v)
	}
}

func TestFuseRecordsSortedAndUnique(t *testing.T) {
	f := NewFuser(nil)
	bySource := map[string][]models.SourceResult{
		models.SourceQuotes: {
			sr(models.SourceQuotes, "MSFT", 0, map[string]any{models.FieldPrice: 410.0}),
			sr(models.SourceQuotes, "AAPL", 0, map[string]any{models.FieldPrice: 190.0}),
		},
		models.SourceSentiment: {
			sr(models.SourceSentiment, "AAPL", 0, map[string]any{models.FieldSentimentScore: 0.7}),
		},
	}

	records := f.Fuse(bySource)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Ticker != "AAPL" || records[1].Ticker != "MSFT" {
		t.Fatalf("records not in ticker order: %s, %s", records[0].Ticker, records[1].Ticker)
	}
	if _, ok := records[0].Numeric(models.FieldSentimentScore); !ok {
		t.Fatalf("AAPL should carry sentiment from the second source")
	}
}

func TestFuseSingleSource(t *testing.T) {
	f := NewFuser(nil)
	records := f.Fuse(map[string][]models.SourceResult{
		models.SourceSentiment: {sr(models.SourceSentiment, "KO", 0, map[string]any{models.FieldSentimentScore: 0.4})},
	})
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if f.PrimarySource(records[0]) != models.SourceSentiment {
		t.Fatalf("primary source should be the only contributor")
	}
}

func TestCustomPriorityOrder(t *testing.T) {
	f := NewFuser([]string{models.SourceQuotes, models.SourceFundamentals})
	bySource := map[string][]models.SourceResult{
		models.SourceFundamentals: {sr(models.SourceFundamentals, "JNJ", 0, map[string]any{models.FieldYield: 3.1})},
		models.SourceQuotes:       {sr(models.SourceQuotes, "JNJ", 0, map[string]any{models.FieldYield: 2.9})},
	}
	rec := f.Fuse(bySource)[0]
	if v, _ := rec.Numeric(models.FieldYield); v != 2.9 {
		t.Fatalf("configured priority should let quotes win, got %v", v)
	}
}
