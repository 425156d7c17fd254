package usecase

import (
	"sort"

	"FinSight/internal/domain/models"
)

// Fuser merges per-source results into one FusedRecord per ticker.
//
// Field conflicts resolve by the configured priority order. Shadowed fields
// from lower-priority sources are not discarded: they are retained under a
// "<source>.<field>" namespaced key so the reranker can still reach them
// when the winning source is absent in a later pass.
type Fuser struct {
	priority []string
}

func NewFuser(priority []string) *Fuser {
	if len(priority) == 0 {
		priority = []string{
			models.SourceFundamentals,
			models.SourcePrediction,
			models.SourceQuotes,
			models.SourceSentiment,
		}
	}
	return &Fuser{priority: priority}
}

// Priority exposes the resolution order, highest first.
func (f *Fuser) Priority() []string { return f.priority }

// Fuse builds one record per ticker with per-field provenance. Records are
// returned in ascending ticker order; tickers are unique within the set.
func (f *Fuser) Fuse(bySource map[string][]models.SourceResult) []*models.FusedRecord {
	records := make(map[string]*models.FusedRecord)

	for _, sourceID := range f.orderedSources(bySource) {
		for _, sr := range bySource[sourceID] {
			rec, ok := records[sr.Ticker]
			if !ok {
				rec = &models.FusedRecord{
					Ticker:     sr.Ticker,
					Fields:     make(map[string]any),
					Provenance: make(map[string]models.FieldOrigin),
				}
				records[sr.Ticker] = rec
			}
			origin := models.FieldOrigin{Source: sr.Source, FetchedAt: sr.FetchedAt}
			for name, value := range sr.Fields {
				if _, taken := rec.Fields[name]; !taken {
					rec.Fields[name] = value
					rec.Provenance[name] = origin
					continue
				}
				// shadowed by a higher-priority source
				ns := sr.Source + "." + name
				rec.Fields[ns] = value
				rec.Provenance[ns] = origin
			}
		}
	}

	out := make([]*models.FusedRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}

// orderedSources yields the present sources in priority order, with any
// unknown sources appended deterministically at the end.
func (f *Fuser) orderedSources(bySource map[string][]models.SourceResult) []string {
	ordered := make([]string, 0, len(bySource))
	seen := make(map[string]bool, len(bySource))
	for _, id := range f.priority {
		if _, ok := bySource[id]; ok {
			ordered = append(ordered, id)
			seen[id] = true
		}
	}
	var rest []string
	for id := range bySource {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	return append(ordered, rest...)
}

// PrimarySource returns the highest-priority source that contributed any
// field to rec, or "" when the record has no provenance.
func (f *Fuser) PrimarySource(rec *models.FusedRecord) string {
	present := make(map[string]bool)
	for _, o := range rec.Provenance {
		present[o.Source] = true
	}
	for _, id := range f.priority {
		if present[id] {
			return id
		}
	}
	return ""
}
