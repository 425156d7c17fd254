package models

import "errors"

var (
	// ErrNoData is returned when every required source failed or returned
	// nothing across all attempts.
	ErrNoData = errors.New("no data found from any source")

	// ErrInvalidQuery is returned for empty or unparseable input, before any
	// orchestration begins.
	ErrInvalidQuery = errors.New("invalid query")
)

// Reason strings surfaced in structured responses.
const (
	ReasonNoDataFound   = "NO_DATA_FOUND"
	ReasonLowConfidence = "LOW_CONFIDENCE"
	ReasonInvalidQuery  = "INVALID_QUERY"
)
