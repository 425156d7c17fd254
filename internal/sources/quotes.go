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

// QuoteProvider adapts the live quote feed. It supplies price, current
// yield and day momentum.
type QuoteProvider struct {
	httpBase
}

func NewQuoteProvider(baseURL, apiKey string, timeout time.Duration) *QuoteProvider {
	return &QuoteProvider{httpBase: newHTTPBase(models.SourceQuotes, baseURL, apiKey, timeout)}
}

func (p *QuoteProvider) ID() string                { return models.SourceQuotes }
func (p *QuoteProvider) Class() models.SourceClass { return models.ClassQuote }

type quotePayload struct {
	Symbol        string   `json:"symbol"`
	Price         *float64 `json:"price"`
	DividendYield *float64 `json:"dividend_yield"`
	ChangePct     *float64 `json:"change_pct"`
	AsOf          string   `json:"as_of"` // RFC3339 or unix seconds
}

// Fetch requests quotes for the given tickers; with no tickers it asks the
// provider's most-active list.
func (p *QuoteProvider) Fetch(ctx context.Context, tickers []string) ([]models.SourceResult, error) {
	path := "/v1/quotes"
	params := map[string][]string{}
	if len(tickers) > 0 {
		params["symbols"] = []string{strings.Join(tickers, ",")}
	} else {
		path = "/v1/quotes/active"
	}

	var payload []quotePayload
	if err := p.do(ctx, xhttp.MethodGet, path, params, nil, &payload); err != nil {
		return nil, err
	}

	now := time.Now()
	out := make([]models.SourceResult, 0, len(payload))
	for _, q := range payload {
		if q.Symbol == "" {
			continue
		}
		fields := map[string]any{}
		if q.Price != nil {
			fields[models.FieldPrice] = *q.Price
		}
		if q.DividendYield != nil {
			fields[models.FieldYield] = *q.DividendYield
		}
		if q.ChangePct != nil {
			fields[models.FieldMomentum] = *q.ChangePct
		}
		if len(fields) == 0 {
			continue
		}
		out = append(out, models.SourceResult{
			Source:    models.SourceQuotes,
			Ticker:    strings.ToUpper(q.Symbol),
			Fields:    fields,
			FetchedAt: xutil.ParseTimeDefault(q.AsOf, now),
		})
	}
	return out, nil
}

var _ repository.Source = (*QuoteProvider)(nil)
