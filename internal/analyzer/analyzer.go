package analyzer

import (
	"regexp"
	"strings"

	"FinSight/internal/domain/models"
)

// Analyzer turns raw user text into a structured Query: intent, tickers,
// rewritten text, required sources and a confidence estimate.
type Analyzer struct {
	known map[string]bool
	stop  map[string]bool
}

// Option configures the Analyzer.
type Option func(*Analyzer)

// WithKnownSymbols replaces the default symbol allow-list.
func WithKnownSymbols(symbols []string) Option {
	return func(a *Analyzer) {
		a.known = make(map[string]bool, len(symbols))
		for _, s := range symbols {
			a.known[strings.ToUpper(s)] = true
		}
	}
}

// defaultSymbols is the built-in allow-list of widely held tickers.
var defaultSymbols = []string{
	"AAPL", "MSFT", "GOOG", "GOOGL", "AMZN", "META", "NVDA", "TSLA",
	"JNJ", "PG", "KO", "PEP", "XOM", "CVX", "T", "VZ", "O", "MO",
	"JPM", "BAC", "WFC", "V", "MA", "HD", "WMT", "COST", "MCD",
	"ABBV", "MRK", "PFE", "LLY", "UNH", "IBM", "INTC", "CSCO", "ORCL",
}

// stopwords are upper-case tokens that look like tickers but are common
// words or abbreviations, never symbols.
var stopwords = []string{
	"A", "I", "AN", "THE", "AND", "OR", "FOR", "TO", "IN", "ON", "OF",
	"IS", "ARE", "MY", "ME", "WHAT", "BEST", "TOP", "HIGH", "LOW",
	"BUY", "SELL", "HOLD", "STOCK", "YIELD", "CEO", "CFO", "IPO",
	"ETF", "USA", "USD", "AI", "API", "FAQ", "NYSE", "DOW", "GDP",
}

var tickerPattern = regexp.MustCompile(`\b[A-Z][A-Z0-9]{0,4}\b`)

func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		known: make(map[string]bool, len(defaultSymbols)),
		stop:  make(map[string]bool, len(stopwords)),
	}
	for _, s := range defaultSymbols {
		a.known[s] = true
	}
	for _, s := range stopwords {
		a.stop[s] = true
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze classifies raw text into a Query. Empty or blank input returns
// models.ErrInvalidQuery before any orchestration happens.
func (a *Analyzer) Analyze(raw string) (*models.Query, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, models.ErrInvalidQuery
	}

	intent, intentStrength := classifyIntent(trimmed)
	tickers, tickerCertainty := a.extractTickers(trimmed)

	q := &models.Query{
		RawText:       raw,
		Intent:        intent,
		Tickers:       tickers,
		RewrittenText: rewrite(trimmed),
	}
	q.RequiredSources = selectSources(intent, tickers)
	q.Confidence = clamp01(0.6*intentStrength + 0.4*tickerCertainty)
	return q, nil
}

// intentRules maps keyword sets to intents; order matters, first match wins.
// Unmatched text defaults to ANALYZE.
var intentRules = []struct {
	intent   models.Intent
	keywords []string
}{
	{models.IntentSell, []string{"sell", "dump", "exit", "unload", "get rid of", "take profit", "liquidate"}},
	{models.IntentBuy, []string{"buy", "purchase", "invest in", "accumulate", "add to my", "worth buying", "should i get"}},
	{models.IntentScreen, []string{"screen", "find stocks", "list stocks", "which stocks", "best stocks", "top stocks", "recommend", "looking for stocks"}},
	{models.IntentAnalyze, []string{"analyze", "analysis", "how is", "what about", "tell me about", "review", "outlook"}},
}

func classifyIntent(text string) (models.Intent, float64) {
	lower := strings.ToLower(text)
	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.intent, 1.0
			}
		}
	}
	return models.IntentAnalyze, 0.5
}

// extractTickers matches short upper-case alphanumeric tokens and filters
// them against the allow-list and the stopword list. Tokens that are
// ticker-shaped but unknown are kept with reduced certainty so that
// lookups for unlisted symbols still reach the sources.
func (a *Analyzer) extractTickers(text string) ([]string, float64) {
	seen := map[string]bool{}
	var tickers []string
	knownHit := false
	for _, tok := range tickerPattern.FindAllString(text, -1) {
		if seen[tok] || a.stop[tok] {
			continue
		}
		if a.known[tok] {
			knownHit = true
		} else if len(tok) < 2 {
			// single unknown letters are almost always words, not symbols
			continue
		}
		seen[tok] = true
		tickers = append(tickers, tok)
	}

	switch {
	case knownHit:
		return tickers, 1.0
	case len(tickers) > 0:
		return tickers, 0.5
	default:
		// no ticker at all: a universe/screening query, moderately certain
		return nil, 0.8
	}
}

// abbreviations expanded during rewrite. Rewrite never changes intent or
// tickers, only downstream text matching.
var abbreviations = map[string]string{
	"div":  "dividend",
	"divs": "dividends",
	"yld":  "yield",
	"stks": "stocks",
	"rec":  "recommendation",
	"recs": "recommendations",
	"pe":   "price-earnings",
	"eps":  "earnings-per-share",
}

var punct = regexp.MustCompile(`[?!.,;:]+`)

func rewrite(text string) string {
	s := punct.ReplaceAllString(strings.ToLower(text), " ")
	words := strings.Fields(s)
	for i, w := range words {
		if exp, ok := abbreviations[w]; ok {
			words[i] = exp
		}
	}
	return strings.Join(words, " ")
}

// selectSources applies the source-selection policy: queries without tickers
// need the full source set; ticker-specific queries always need fundamentals
// and quotes, plus sentiment and prediction for BUY/SELL.
func selectSources(intent models.Intent, tickers []string) []string {
	if len(tickers) == 0 {
		return []string{
			models.SourceFundamentals,
			models.SourceQuotes,
			models.SourceSentiment,
			models.SourcePrediction,
		}
	}
	required := []string{models.SourceFundamentals, models.SourceQuotes}
	if intent == models.IntentBuy || intent == models.IntentSell {
		required = append(required, models.SourceSentiment, models.SourcePrediction)
	}
	return required
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
