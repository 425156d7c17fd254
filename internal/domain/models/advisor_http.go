package models

// Requests and responses for the advisor HTTP endpoints. Defined in domain
// for consistency and reuse.

type AnalyzeRequest struct {
	Query          string `json:"query" validate:"required,min=1,max=500"`
	IncludeRawData bool   `json:"include_raw_data"`
	Limit          int    `json:"limit" default:"10" validate:"gte=1,lte=50"`
}

type AnalyzeResponse struct {
	Success        bool            `json:"success"`
	Reason         string          `json:"reason,omitempty"`
	Recommendation *Recommendation `json:"recommendation"`
	Confidence     float64         `json:"confidence"`
	Sources        []string        `json:"sources"`
	Disclaimer     *string         `json:"disclaimer"`
	RetriesUsed    int             `json:"retries_used"`
	RawResults     map[string][]SourceResult `json:"raw_results,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// SourceCacheStats is one source's slice of the /cache-stats payload.
type SourceCacheStats struct {
	Entries int    `json:"entries"`
	TTL     string `json:"ttl"`
	Hits    int64  `json:"hits"`
	Misses  int64  `json:"misses"`
}

type CacheStatsResponse struct {
	Sources map[string]SourceCacheStats `json:"sources"`
}
