package sources

import (
	"context"
	"strings"
	"time"

	"FinSight/internal/domain/models"
	"FinSight/internal/domain/repository"
	xhttp "FinSight/pkg/http"
	xutil "FinSight/pkg/util"
)

// SentimentProvider adapts the social-sentiment feed. Label-only payloads
// are mapped onto a numeric score so the reranker can use them.
type SentimentProvider struct {
	httpBase
}

func NewSentimentProvider(baseURL, apiKey string, timeout time.Duration) *SentimentProvider {
	return &SentimentProvider{httpBase: newHTTPBase(models.SourceSentiment, baseURL, apiKey, timeout)}
}

func (p *SentimentProvider) ID() string                { return models.SourceSentiment }
func (p *SentimentProvider) Class() models.SourceClass { return models.ClassSentiment }

type sentimentPayload struct {
	Symbol string   `json:"symbol"`
	Score  *float64 `json:"score"`
	Label  string   `json:"label"`
	Trend  *float64 `json:"trend"`
	AsOf   string   `json:"as_of"` // RFC3339 or unix seconds
}

// labelScores maps provider labels to scores in [0,1].
var labelScores = map[string]float64{
	"very_negative": 0.1,
	"negative":      0.3,
	"neutral":       0.5,
	"positive":      0.7,
	"very_positive": 0.9,
}

func (p *SentimentProvider) Fetch(ctx context.Context, tickers []string) ([]models.SourceResult, error) {
	params := map[string][]string{}
	if len(tickers) > 0 {
		params["symbols"] = []string{strings.Join(tickers, ",")}
	}

	var payload []sentimentPayload
	if err := p.do(ctx, xhttp.MethodGet, "/v1/sentiment", params, nil, &payload); err != nil {
		return nil, err
	}

	now := time.Now()
	out := make([]models.SourceResult, 0, len(payload))
	for _, s := range payload {
		if s.Symbol == "" {
			continue
		}
		fields := map[string]any{}
		switch {
		case s.Score != nil:
			fields[models.FieldSentimentScore] = *s.Score
		case s.Label != "":
			if v, ok := labelScores[strings.ToLower(s.Label)]; ok {
				fields[models.FieldSentimentScore] = v
			}
		}
		if s.Label != "" {
			fields[models.FieldSentimentLabel] = strings.ToLower(s.Label)
		}
		if s.Trend != nil {
			fields[models.FieldMomentum] = *s.Trend
		}
		if len(fields) == 0 {
			continue
		}
		out = append(out, models.SourceResult{
			Source:    models.SourceSentiment,
			Ticker:    strings.ToUpper(s.Symbol),
			Fields:    fields,
			FetchedAt: xutil.ParseTimeDefault(s.AsOf, now),
		})
	}
	return out, nil
}

var _ repository.Source = (*SentimentProvider)(nil)
