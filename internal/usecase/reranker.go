package usecase

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"FinSight/internal/domain/models"
)

// scoringFeatures is the fixed feature set entering the composite score.
var scoringFeatures = []string{
	models.FieldSafetyRating,
	models.FieldYield,
	models.FieldSentimentScore,
	models.FieldValueMetric,
	models.FieldMomentum,
}

// weightProfiles keys intent to its weight vector. Data-driven on purpose:
// weights are testable independently of the ranking code.
var weightProfiles = map[models.Intent]map[string]float64{
	models.IntentBuy: {
		models.FieldSafetyRating:   0.40,
		models.FieldYield:          0.25,
		models.FieldSentimentScore: 0.15,
		models.FieldValueMetric:    0.10,
		models.FieldMomentum:       0.10,
	},
	models.IntentSell: {
		models.FieldSafetyRating:   0.20,
		models.FieldYield:          0.10,
		models.FieldSentimentScore: 0.25,
		models.FieldValueMetric:    0.10,
		models.FieldMomentum:       0.35,
	},
	models.IntentAnalyze: {
		models.FieldSafetyRating:   0.20,
		models.FieldYield:          0.20,
		models.FieldSentimentScore: 0.20,
		models.FieldValueMetric:    0.20,
		models.FieldMomentum:       0.20,
	},
}

// WeightsFor returns the weight vector for intent. SCREEN and UNKNOWN share
// the balanced ANALYZE profile.
func WeightsFor(intent models.Intent) map[string]float64 {
	if w, ok := weightProfiles[intent]; ok {
		return w
	}
	return weightProfiles[models.IntentAnalyze]
}

// Reranker orders fused records by an intent-weighted composite score.
type Reranker struct {
	fuser *Fuser
}

func NewReranker(fuser *Fuser) *Reranker {
	return &Reranker{fuser: fuser}
}

// Rank scores and orders records in place, descending by composite score
// with ascending-alphabetical ticker tie-breaks. Each feature is min-max
// normalized to [0,1] across the candidate set before weighting; missing
// features have their weight redistributed proportionally among the
// features the ticker does have.
func (r *Reranker) Rank(records []*models.FusedRecord, intent models.Intent) []models.RankedEntry {
	if len(records) == 0 {
		return nil
	}
	weights := WeightsFor(intent)

	// min-max bounds per feature across the candidate set
	type bounds struct{ min, max float64; seen bool }
	limits := make(map[string]*bounds, len(scoringFeatures))
	for _, f := range scoringFeatures {
		limits[f] = &bounds{min: math.Inf(1), max: math.Inf(-1)}
	}
	for _, rec := range records {
		for _, f := range scoringFeatures {
			if v, ok := r.featureValue(rec, f); ok {
				b := limits[f]
				b.seen = true
				b.min = math.Min(b.min, v)
				b.max = math.Max(b.max, v)
			}
		}
	}

	for _, rec := range records {
		rec.ComponentScores = make(map[string]float64)
		var weighted, weightSum float64
		for _, f := range scoringFeatures {
			v, ok := r.featureValue(rec, f)
			if !ok {
				continue
			}
			b := limits[f]
			norm := 0.5 // indistinguishable candidates score neutral
			if b.max > b.min {
				norm = (v - b.min) / (b.max - b.min)
			}
			rec.ComponentScores[f] = norm
			weighted += weights[f] * norm
			weightSum += weights[f]
		}
		if weightSum > 0 {
			rec.CompositeScore = weighted / weightSum
		} else {
			rec.CompositeScore = 0
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].CompositeScore != records[j].CompositeScore {
			return records[i].CompositeScore > records[j].CompositeScore
		}
		return records[i].Ticker < records[j].Ticker
	})

	entries := make([]models.RankedEntry, 0, len(records))
	for i, rec := range records {
		entries = append(entries, models.RankedEntry{
			Rank:        i + 1,
			Record:      rec,
			Explanation: explain(rec, weights),
		})
	}
	return entries
}

// featureValue reads the merged field, falling back to the namespaced copy
// from the highest-priority source that retained one.
func (r *Reranker) featureValue(rec *models.FusedRecord, feature string) (float64, bool) {
	if v, ok := rec.Numeric(feature); ok {
		return v, true
	}
	for _, src := range r.fuser.Priority() {
		if v, ok := rec.Numeric(src + "." + feature); ok {
			return v, true
		}
	}
	return 0, false
}

func explain(rec *models.FusedRecord, weights map[string]float64) string {
	parts := make([]string, 0, len(rec.ComponentScores))
	for _, f := range scoringFeatures {
		if norm, ok := rec.ComponentScores[f]; ok {
			parts = append(parts, fmt.Sprintf("%s=%.2f (w=%.2f)", f, norm, weights[f]))
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%s: no scorable fields", rec.Ticker)
	}
	return fmt.Sprintf("%s scored %.3f from %s", rec.Ticker, rec.CompositeScore, strings.Join(parts, ", "))
}
