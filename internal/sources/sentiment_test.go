package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"FinSight/internal/domain/models"
)

func TestSentimentFetchUnixTimestampAndLabel(t *testing.T) {
	asOf := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"symbol":"JNJ","label":"Positive","as_of":"1787832000"}]`))
	}))
	defer srv.Close()

	p := NewSentimentProvider(srv.URL, "key", time.Second)
	rs, err := p.Fetch(context.Background(), []string{"JNJ"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rs) != 1 {
		t.Fatalf("expected one result, got %v", rs)
	}
	if !rs[0].FetchedAt.Equal(asOf) {
		t.Fatalf("expected provider timestamp %v, got %v", asOf, rs[0].FetchedAt)
	}
	if v, _ := rs[0].Numeric(models.FieldSentimentScore); v != 0.7 {
		t.Fatalf("label not mapped to score, got %v", v)
	}
	if rs[0].Fields[models.FieldSentimentLabel] != "positive" {
		t.Fatalf("label not lowercased: %v", rs[0].Fields[models.FieldSentimentLabel])
	}
}
