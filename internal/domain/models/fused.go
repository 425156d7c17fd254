package models

import "time"

// FieldOrigin records which source supplied a fused field and when.
type FieldOrigin struct {
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
}

// FusedRecord is the per-ticker merge of all source results for one pass.
// Built fresh per request and discarded after the response.
type FusedRecord struct {
	Ticker          string                 `json:"ticker"`
	Fields          map[string]any         `json:"fields"`
	Provenance      map[string]FieldOrigin `json:"provenance,omitempty"`
	CompositeScore  float64                `json:"composite_score"`
	ComponentScores map[string]float64     `json:"component_scores,omitempty"`
}

// Numeric returns the named merged field as float64 when it is numeric.
func (r *FusedRecord) Numeric(name string) (float64, bool) {
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

// FreshestOrigin returns the most recent provenance timestamp among the
// record's fields, or the zero time when no provenance exists.
func (r *FusedRecord) FreshestOrigin() time.Time {
	var t time.Time
	for _, o := range r.Provenance {
		if o.FetchedAt.After(t) {
			t = o.FetchedAt
		}
	}
	return t
}

// RankedEntry is one position in a recommendation.
type RankedEntry struct {
	Rank        int          `json:"rank"`
	Record      *FusedRecord `json:"record"`
	Explanation string       `json:"explanation"`
}

// Attribution lists the sources that contributed to a response.
type Attribution struct {
	Sources     []string  `json:"sources"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Recommendation is the ranked, compliance-annotated result of one request.
type Recommendation struct {
	Intent        Intent       `json:"intent"`
	Entries       []RankedEntry `json:"entries"`
	Attribution   Attribution  `json:"attribution"`
	Disclaimer    *string      `json:"disclaimer,omitempty"`
	Unavailable   []string     `json:"unavailable_sources,omitempty"`
	LowConfidence bool         `json:"low_confidence"`
}
