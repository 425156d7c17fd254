package analyzer

import (
	"errors"
	"testing"

	"FinSight/internal/domain/models"
)

func TestScreeningBuyQuery(t *testing.T) {
	a := New()
	q, err := a.Analyze("Best high-yield dividend stocks to buy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Intent != models.IntentBuy {
		t.Fatalf("expected BUY, got %s", q.Intent)
	}
	if len(q.Tickers) != 0 {
		t.Fatalf("expected no tickers, got %v", q.Tickers)
	}
	if len(q.RequiredSources) != 4 {
		t.Fatalf("expected all 4 sources for a universe query, got %v", q.RequiredSources)
	}
	// intent matched (1.0) and no ticker (0.8): 0.6 + 0.32
	if q.Confidence < 0.91 || q.Confidence > 0.93 {
		t.Fatalf("unexpected confidence %v", q.Confidence)
	}
}

func TestSellWinsOverBuy(t *testing.T) {
	a := New()
	q, err := a.Analyze("Should I sell AAPL and buy MSFT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Intent != models.IntentSell {
		t.Fatalf("expected SELL, got %s", q.Intent)
	}
	if len(q.Tickers) != 2 || q.Tickers[0] != "AAPL" || q.Tickers[1] != "MSFT" {
		t.Fatalf("unexpected tickers %v", q.Tickers)
	}
	if q.Confidence != 1.0 {
		t.Fatalf("expected full confidence, got %v", q.Confidence)
	}
	if len(q.RequiredSources) != 4 {
		t.Fatalf("SELL with tickers needs sentiment and prediction too, got %v", q.RequiredSources)
	}
}

func TestUnknownTickerShapedTokenKept(t *testing.T) {
	a := New()
	q, err := a.Analyze("What is the outlook for ZZZZ?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Intent != models.IntentAnalyze {
		t.Fatalf("expected ANALYZE, got %s", q.Intent)
	}
	if len(q.Tickers) != 1 || q.Tickers[0] != "ZZZZ" {
		t.Fatalf("expected ZZZZ kept, got %v", q.Tickers)
	}
	// unknown symbol lowers ticker certainty to 0.5
	if q.Confidence < 0.79 || q.Confidence > 0.81 {
		t.Fatalf("unexpected confidence %v", q.Confidence)
	}
	if len(q.RequiredSources) != 2 {
		t.Fatalf("ANALYZE with tickers needs fundamentals and quotes only, got %v", q.RequiredSources)
	}
}

func TestStopwordsNotTickers(t *testing.T) {
	a := New()
	q, err := a.Analyze("BEST TOP HIGH YIELD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.Tickers) != 0 {
		t.Fatalf("stopwords must not become tickers, got %v", q.Tickers)
	}
}

func TestBlankQueryRejected(t *testing.T) {
	a := New()
	if _, err := a.Analyze("   "); !errors.Is(err, models.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestRewriteExpandsAbbreviations(t *testing.T) {
	a := New()
	q, err := a.Analyze("JNJ div yld?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.RewrittenText != "jnj dividend yield" {
		t.Fatalf("unexpected rewrite %q", q.RewrittenText)
	}
	if q.RawText != "JNJ div yld?" {
		t.Fatalf("raw text must be preserved, got %q", q.RawText)
	}
}

func TestCustomSymbolList(t *testing.T) {
	a := New(WithKnownSymbols([]string{"ABCD"}))
	q, err := a.Analyze("buy ABCD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.Tickers) != 1 || q.Tickers[0] != "ABCD" {
		t.Fatalf("unexpected tickers %v", q.Tickers)
	}
	if q.Confidence != 1.0 {
		t.Fatalf("allow-listed symbol should be fully certain, got %v", q.Confidence)
	}
}
