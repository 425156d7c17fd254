package sources

import (
	"context"
	"strings"
	"time"

	"FinSight/internal/domain/models"
	"FinSight/internal/domain/repository"
	xhttp "FinSight/pkg/http"
)

// PredictionService adapts the internal prediction service, consumed as a
// black box. It supplies safety ratings and payout/growth forecasts.
type PredictionService struct {
	httpBase
}

func NewPredictionService(baseURL string, timeout time.Duration) *PredictionService {
	return &PredictionService{httpBase: newHTTPBase(models.SourcePrediction, baseURL, "", timeout)}
}

func (p *PredictionService) ID() string                { return models.SourcePrediction }
func (p *PredictionService) Class() models.SourceClass { return models.ClassPrediction }

type predictReq struct {
	Tickers []string `json:"tickers,omitempty"`
}

type predictPayload struct {
	Ticker       string   `json:"ticker"`
	SafetyRating *float64 `json:"safety_rating"`
	GrowthRate   *float64 `json:"growth_rate"`
	PayoutRatio  *float64 `json:"payout_ratio"`
}

func (p *PredictionService) Fetch(ctx context.Context, tickers []string) ([]models.SourceResult, error) {
	var payload []predictPayload
	if err := p.do(ctx, xhttp.MethodPost, "/predict", nil, predictReq{Tickers: tickers}, &payload); err != nil {
		return nil, err
	}

	now := time.Now()
	out := make([]models.SourceResult, 0, len(payload))
	for _, r := range payload {
		if r.Ticker == "" {
			continue
		}
		fields := map[string]any{}
		if r.SafetyRating != nil {
			fields[models.FieldSafetyRating] = *r.SafetyRating
		}
		if r.GrowthRate != nil {
			fields[models.FieldGrowthRate] = *r.GrowthRate
		}
		if r.PayoutRatio != nil {
			fields[models.FieldPayoutRatio] = *r.PayoutRatio
		}
		if len(fields) == 0 {
			continue
		}
		out = append(out, models.SourceResult{
			Source:    models.SourcePrediction,
			Ticker:    strings.ToUpper(r.Ticker),
			Fields:    fields,
			FetchedAt: now,
		})
	}
	return out, nil
}

var _ repository.Source = (*PredictionService)(nil)
