package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"FinSight/internal/domain/models"
)

func TestQuoteFetchUsesProviderTimestamp(t *testing.T) {
	asOf := time.Date(2026, 8, 27, 15, 4, 5, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbols"); got != "JNJ" {
			t.Errorf("unexpected symbols param %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"symbol":"jnj","price":150.5,"change_pct":0.4,"as_of":"2026-08-27T15:04:05Z"}]`))
	}))
	defer srv.Close()

	p := NewQuoteProvider(srv.URL, "key", time.Second)
	rs, err := p.Fetch(context.Background(), []string{"JNJ"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rs) != 1 {
		t.Fatalf("expected one result, got %v", rs)
	}
	if rs[0].Ticker != "JNJ" {
		t.Fatalf("ticker not canonicalized: %q", rs[0].Ticker)
	}
	if !rs[0].FetchedAt.Equal(asOf) {
		t.Fatalf("expected provider timestamp %v, got %v", asOf, rs[0].FetchedAt)
	}
	if v, _ := rs[0].Numeric(models.FieldPrice); v != 150.5 {
		t.Fatalf("unexpected price %v", v)
	}
}

func TestQuoteFetchDefaultsTimestampToNow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"symbol":"KO","price":60.0}]`))
	}))
	defer srv.Close()

	before := time.Now()
	p := NewQuoteProvider(srv.URL, "", time.Second)
	rs, err := p.Fetch(context.Background(), []string{"KO"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rs) != 1 {
		t.Fatalf("expected one result, got %v", rs)
	}
	if rs[0].FetchedAt.Before(before) {
		t.Fatalf("missing as_of must fall back to fetch time, got %v", rs[0].FetchedAt)
	}
}

func TestQuoteFetchRateLimitedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewQuoteProvider(srv.URL, "", time.Second)
	_, err := p.Fetch(context.Background(), []string{"JNJ"})
	var serr *models.SourceError
	if !errors.As(err, &serr) || serr.Kind != models.SourceErrRateLimited {
		t.Fatalf("expected rate-limited source error, got %v", err)
	}
}
