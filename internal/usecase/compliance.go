package usecase

import (
	"sort"
	"time"

	"FinSight/internal/domain/models"
)

// Disclaimer appended to every BUY/SELL response.
const tradeDisclaimer = "This content is for informational purposes only and does not " +
	"constitute financial, investment, or trading advice. Data is aggregated from " +
	"third-party sources and may be delayed or incomplete. Consult a licensed " +
	"financial advisor before making investment decisions."

// Compliance attaches disclaimers and source attribution. It only augments
// a recommendation; it never fails and never removes content.
type Compliance struct{}

func NewCompliance() *Compliance { return &Compliance{} }

// Annotate adds attribution for every intent and the fixed disclaimer block
// when the intent is BUY or SELL.
func (c *Compliance) Annotate(rec *models.Recommendation, bySource map[string][]models.SourceResult) {
	sources := make([]string, 0, len(bySource))
	for id := range bySource {
		sources = append(sources, id)
	}
	sort.Strings(sources)
	rec.Attribution = models.Attribution{
		Sources:     sources,
		GeneratedAt: time.Now(),
	}

	if rec.Intent == models.IntentBuy || rec.Intent == models.IntentSell {
		d := tradeDisclaimer
		rec.Disclaimer = &d
	}
}
