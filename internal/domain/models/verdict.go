package models

// LoopState tracks the self-evaluation state machine.
type LoopState string

const (
	StateInit         LoopState = "INIT"
	StateRetrieving   LoopState = "RETRIEVING"
	StateEvaluating   LoopState = "EVALUATING"
	StateRetry        LoopState = "RETRY"
	StateDone         LoopState = "DONE"
	StateFailedNoData LoopState = "FAILED_NO_DATA"
)

// EvaluationVerdict is the outcome of validating one retrieval pass.
// NextQuery is populated only when the verdict fails and a retry is possible.
type EvaluationVerdict struct {
	Passed    bool
	Reasons   []string
	NextQuery *Query
}

// AuditEvent is the compact record published per completed analysis.
type AuditEvent struct {
	Query       string  `json:"query"`
	Intent      Intent  `json:"intent"`
	Tickers     []string `json:"tickers,omitempty"`
	TopTicker   string  `json:"top_ticker,omitempty"`
	Confidence  float64 `json:"confidence"`
	RetriesUsed int     `json:"retries_used"`
	Success     bool    `json:"success"`
	Reason      string  `json:"reason,omitempty"`
	DurationMS  int64   `json:"duration_ms"`
}
