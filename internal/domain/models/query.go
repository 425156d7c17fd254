package models

// Intent is the classified purpose of a user query.
type Intent string

const (
	IntentBuy     Intent = "BUY"
	IntentSell    Intent = "SELL"
	IntentAnalyze Intent = "ANALYZE"
	IntentScreen  Intent = "SCREEN"
	IntentUnknown Intent = "UNKNOWN"
)

// Source identifiers shared across the system.
const (
	SourceFundamentals = "fundamentals"
	SourceQuotes       = "quotes"
	SourceSentiment    = "sentiment"
	SourcePrediction   = "prediction"
)

// Query is the analyzed form of a raw user request. It is immutable for the
// duration of a pass; retries derive a new Query via Clone.
type Query struct {
	RawText         string
	Intent          Intent
	Tickers         []string
	RewrittenText   string
	RequiredSources []string
	Confidence      float64
}

// HasSource reports whether id is in RequiredSources.
func (q *Query) HasSource(id string) bool {
	for _, s := range q.RequiredSources {
		if s == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy suitable for retry mutation.
func (q *Query) Clone() *Query {
	cp := *q
	cp.Tickers = append([]string(nil), q.Tickers...)
	cp.RequiredSources = append([]string(nil), q.RequiredSources...)
	return &cp
}

// WithoutSource returns a copy with id removed from RequiredSources.
func (q *Query) WithoutSource(id string) *Query {
	cp := q.Clone()
	keep := cp.RequiredSources[:0]
	for _, s := range cp.RequiredSources {
		if s != id {
			keep = append(keep, s)
		}
	}
	cp.RequiredSources = keep
	return cp
}
