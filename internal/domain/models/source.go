package models

import (
	"fmt"
	"time"
)

// SourceClass groups providers by data volatility; the cache derives TTLs
// from it.
type SourceClass string

const (
	ClassQuote       SourceClass = "quote"
	ClassSentiment   SourceClass = "sentiment"
	ClassPrediction  SourceClass = "prediction"
	ClassFundamental SourceClass = "fundamental"
)

// Canonical field vocabulary shared by all adapters. Providers map their
// payloads onto these names; fields a provider cannot supply are omitted,
// never zero-filled.
const (
	FieldPrice          = "price"
	FieldYield          = "yield"
	FieldSafetyRating   = "safety_rating"
	FieldSentimentScore = "sentiment_score"
	FieldSentimentLabel = "sentiment_label"
	FieldGrowthRate     = "growth_rate"
	FieldValueMetric    = "value_metric"
	FieldMomentum       = "momentum"
	FieldPayoutRatio    = "payout_ratio"
	FieldExDividendDate = "ex_dividend_date"
)

// SourceErrorKind classifies soft provider failures.
type SourceErrorKind string

const (
	SourceErrNetwork     SourceErrorKind = "network"
	SourceErrParse       SourceErrorKind = "parse"
	SourceErrRateLimited SourceErrorKind = "rate_limited"
	SourceErrTimeout     SourceErrorKind = "timeout"
)

// SourceError wraps a provider failure. The orchestrator treats every kind as
// "no data from this source", never as a request-level failure.
type SourceError struct {
	Source string
	Kind   SourceErrorKind
	Err    error
}

func (e *SourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("source %s: %s: %v", e.Source, e.Kind, e.Err)
	}
	return fmt.Sprintf("source %s: %s", e.Source, e.Kind)
}

func (e *SourceError) Unwrap() error { return e.Err }

// NewSourceError builds a SourceError for source id.
func NewSourceError(source string, kind SourceErrorKind, err error) *SourceError {
	return &SourceError{Source: source, Kind: kind, Err: err}
}

// SourceResult is one provider's canonicalized payload for one ticker.
type SourceResult struct {
	Source    string         `json:"source"`
	Ticker    string         `json:"ticker"`
	Fields    map[string]any `json:"fields"`
	FetchedAt time.Time      `json:"fetched_at"`
}

// Numeric returns the named field as float64 when it is numeric.
func (r *SourceResult) Numeric(name string) (float64, bool) {
	v, ok := r.Fields[name]
	if !ok {
		return 0, false
	}
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	return 0, false
}
